package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DigitalPlayLoad/monitor-notificacoes/pkg/middleware"
)

// newTokenCommand は削除系APIに使うJWTを発行するコマンドを生成する。
func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "削除系APIに使うBearerトークンを発行する",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret が未設定です")
			}

			token, err := middleware.GenerateJWT(cfg.Auth.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "トークンのsubject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "トークンの有効期間")
	return cmd
}
