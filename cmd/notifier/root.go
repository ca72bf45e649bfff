package main

import (
	"github.com/spf13/cobra"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/config"
)

// rootOptions は全サブコマンド共通のフラグ。
type rootOptions struct {
	// configPath はYAML設定ファイルのパス。
	configPath string
}

// newRootCommand はnotifierのルートコマンドを生成する。
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "notifier",
		Short:         "通知モニター",
		Long:          "外部アプリから届いた通知を重複排除して保存し、一覧・削除APIを提供する。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML設定ファイルのパス")
	cmd.PersistentFlags().String("dsn", "", "ストアの接続先（例: sqlite:///data/notifier.db, postgres://..., memory://）")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newClearCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))

	return cmd
}

// loadConfig は設定ファイル・環境変数・フラグから設定を読み込む。
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(o.configPath, cmd.Flags())
}
