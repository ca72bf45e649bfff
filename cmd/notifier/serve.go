package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/notification"
)

// newServeCommand はHTTPサーバーを起動するコマンドを生成する。
func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "HTTPサーバーを起動する",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Printf("ストアのクローズに失敗: %v", err)
				}
			}()

			server := notification.NewServer(notification.ServerConfig{
				Port:           cfg.Server.Port,
				JWTSecret:      cfg.Auth.JWTSecret,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			}, a.pipeline, a.service, a.checker)

			log.Printf("通知サービスを起動します: :%s (重複チェック: 直近%d件)", cfg.Server.Port, a.checker.Window())
			if cfg.Auth.JWTSecret == "" {
				log.Println("auth.jwt_secret が未設定のため削除系APIは認証なしで公開されます")
			}
			return server.Run(cmd.Context())
		},
	}
	cmd.Flags().String("port", "", "リッスンポート")
	return cmd
}
