package main

import (
	"context"
	"fmt"
	"log"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/config"
	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/notification"
	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/store"
	"github.com/DigitalPlayLoad/monitor-notificacoes/pkg/httpclient"
)

// app は設定から組み立てた通知サービスの構成要素。
type app struct {
	store    store.Store
	checker  *notification.Checker
	pipeline *notification.Pipeline
	service  *notification.Service
}

// newApp はストアを開き、各コンポーネントにストアを注入して組み立てる。
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	st, err := store.Open(ctx, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("ストアのオープンに失敗: %w", err)
	}
	if sqlStore, ok := st.(*store.SQLStore); ok {
		sqlStore.SetTimeout(cfg.Store.Timeout)
	}

	var publisher notification.Publisher
	if cfg.Events.URL != "" {
		client := httpclient.New(cfg.Events.URL,
			httpclient.WithTimeout(cfg.Events.Timeout),
			httpclient.WithBearerToken(cfg.Events.Token),
		)
		publisher = notification.NewEventStorePublisher(client)
		log.Printf("イベントを %s に送信します", cfg.Events.URL)
	}

	checker := notification.NewChecker(st, notification.WithWindow(cfg.Dedup.Window))
	return &app{
		store:    st,
		checker:  checker,
		pipeline: notification.NewPipeline(st, checker, notification.WithPublisher(publisher)),
		service: notification.NewService(st, notification.ServiceConfig{
			ListLimit:     cfg.List.DefaultLimit,
			MaxListLimit:  cfg.List.MaxLimit,
			ClearPageSize: cfg.Clear.PageSize,
			Publisher:     publisher,
		}),
	}, nil
}

// Close はストアを閉じる。
func (a *app) Close() error {
	return a.store.Close()
}
