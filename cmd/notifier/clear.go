package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// pageClearer は1ページ分の通知を削除する。
type pageClearer interface {
	ClearPage(ctx context.Context) (int, error)
}

// clearAll はページ単位の削除を0件になるまで繰り返し、合計件数を返す。
// 途中で失敗した場合はそれまでの合計とエラーを返す。
func clearAll(ctx context.Context, c pageClearer) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := c.ClearPage(ctx)
		if err != nil {
			return total, err
		}
		total += n
		if n == 0 {
			return total, nil
		}
	}
}

// newClearCommand はストア内の通知をすべて削除するコマンドを生成する。
func newClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "保存済みの通知をすべて削除する",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			total, err := clearAll(cmd.Context(), a.service)
			if err != nil {
				return fmt.Errorf("%d件削除した時点で失敗: %w", total, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d件の通知を削除しました\n", total)
			return nil
		},
	}
}
