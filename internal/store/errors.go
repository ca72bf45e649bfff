package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
)

// errorf は分類用のセンチネルエラーでラップしたエラーを生成する。
func errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// classify はドライバーから返されたエラーを ErrStoreUnavailable か
// ErrStoreOperationFailed に分類し、元のエラーも保持したままラップする。
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreOperationFailed) {
		return err
	}
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreOperationFailed, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, errClosed) {
		return true
	}
	// database/sqlはクローズ済みのDBに対してセンチネルではないエラーを返す
	if strings.Contains(err.Error(), "database is closed") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// errClosed はクローズ済みのストアを操作したことを表す。
var errClosed = errors.New("store is closed")
