package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Open はDSNのスキームに応じたStore実装を生成する。
//
//	memory://                 インメモリ
//	sqlite:///data/notifier.db SQLiteファイル（file: やスキームなしのパスも可）
//	sqlite::memory:           インメモリSQLite
//	postgres://user@host/db   PostgreSQL
func Open(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: DSNが空です", ErrStoreOperationFailed)
	}
	if dsn == "sqlite::memory:" || dsn == ":memory:" {
		return OpenSQLite(ctx, ":memory:")
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: DSNの解析に失敗: %w", ErrStoreOperationFailed, err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "memory", "mem", "inmem":
		return NewMemoryStore(), nil
	case "", "file", "sqlite", "sqlite3":
		path, err := sqlitePath(parsed, dsn)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(ctx, path)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: 未対応のストアスキーム: %s", ErrStoreOperationFailed, parsed.Scheme)
	}
}

// sqlitePath はDSNからSQLiteファイルのパスを取り出す。
func sqlitePath(parsed *url.URL, raw string) (string, error) {
	if parsed.Scheme == "" {
		return raw, nil
	}
	path := parsed.Path
	if parsed.Host != "" {
		// sqlite://relative/path.db のような相対指定
		path = parsed.Host + path
	}
	if path == "" {
		path = parsed.Opaque
	}
	if path == "" {
		return "", fmt.Errorf("%w: SQLiteのパスが空です: %s", ErrStoreOperationFailed, raw)
	}
	return path, nil
}
