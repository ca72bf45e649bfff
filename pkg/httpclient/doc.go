// Package httpclient は他サービスのJSON APIを呼び出すHTTPクライアントを提供する。
//
// 通知サービスから外部のイベントストアへイベントを送信する際に使用する。
package httpclient
