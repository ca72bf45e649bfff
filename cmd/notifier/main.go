// 通知モニターのエントリポイント。
// 外部アプリから届いた通知を重複排除して保存し、一覧・削除APIを提供する。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Printf("notifier: %v", err)
		stop()
		os.Exit(1)
	}
}
