// Package notification は通知取り込みサービスの内部実装を提供する。
//
// 外部アプリケーションから届いた通知（アプリ名・タイトル・本文・任意のキーワード）を
// 検証・正規化し、直近の同一通知と重複していなければストアに保存する。
// 保存済み通知の一覧取得、ID指定の削除、ページ単位の全件削除も提供する。
//
// 重複判定と書き込みの間にロックはない。同一内容の通知が同時に届いた場合は
// 両方が保存されうるが、これは許容している。
package notification
