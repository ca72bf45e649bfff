// Package middleware は通知サービスのGinルーターで使用する共通ミドルウェアを提供する。
//
// パニックリカバリ、CORS設定、削除系エンドポイントを保護するJWT認証を含む。
package middleware
