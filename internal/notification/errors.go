package notification

import (
	"errors"
	"fmt"
)

// ErrNotFound は指定されたIDの通知が存在しないことを表す。
var ErrNotFound = errors.New("notification not found")

// ValidationError は入力が不正であることを表す。ストアへの書き込みは行われていない。
type ValidationError struct {
	// Field は不正だった入力フィールド名。
	Field string
	// Message は利用者向けのメッセージ。
	Message string
}

// Error はエラーメッセージを返す。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation はerrがValidationErrorかを返す。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
