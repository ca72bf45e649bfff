// Package store は通知レコードを保持するドキュメントストアへのアダプタを提供する。
//
// 取り込みパイプラインや一覧・削除サービスが必要とするのは、
// IDによるupsert・取得・削除、等価フィルタ + 単一キーの並び替え + 件数上限による検索、
// そしてバッチ削除だけである。この契約を Store インターフェースとして定義し、
// SQLite・PostgreSQL（sqlx経由）とインメモリの実装を提供する。
// 実装はDSNのスキームで選択する（Open を参照）。
package store
