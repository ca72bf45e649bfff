package notification

import "strings"

const (
	// contentSeparator はタイトルと本文を連結する区切り文字。
	contentSeparator = " | "
	// NoContent はタイトルも本文も空だった場合の内容。既存の表示側と互換のため変更しないこと。
	NoContent = "Sem conteúdo"
)

// RawNotification はHTTPフォームから受け取ったままの通知。
type RawNotification struct {
	// AppName は通知元アプリケーション名（必須）。
	AppName string
	// Title は通知のタイトル。
	Title string
	// Text は通知の本文。
	Text string
	// Macro は任意のキーワード。
	Macro string
}

// normalizeContent はタイトルと本文から内容を導出する。
// 前後の空白を除いた上で空でないものをタイトル、本文の順に連結する。
func normalizeContent(title, text string) string {
	parts := make([]string, 0, 2)
	if t := strings.TrimSpace(title); t != "" {
		parts = append(parts, t)
	}
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return NoContent
	}
	return strings.Join(parts, contentSeparator)
}

// normalizeKeyword は空白のみのキーワードを未指定として扱う。
func normalizeKeyword(macro string) *string {
	kw := strings.TrimSpace(macro)
	if kw == "" {
		return nil
	}
	return &kw
}
