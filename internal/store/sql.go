package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/DigitalPlayLoad/monitor-notificacoes/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultOperationTimeout はSQLStoreが1操作ごとに課すタイムアウトの既定値。
const DefaultOperationTimeout = 5 * time.Second

// columns はフィールドとテーブルのカラムの対応。
var columns = map[Field]string{
	FieldID:        "id",
	FieldApp:       "app",
	FieldContent:   "content",
	FieldKeyword:   "keyword",
	FieldTimestamp: "received_at",
}

// row はnotificationsテーブルの1行。
type row struct {
	ID         string         `db:"id"`
	App        string         `db:"app"`
	Content    string         `db:"content"`
	Keyword    sql.NullString `db:"keyword"`
	ReceivedAt int64          `db:"received_at"`
}

func toRow(n Notification) row {
	r := row{
		ID:         n.ID,
		App:        n.App,
		Content:    n.Content,
		ReceivedAt: n.Timestamp.UTC().UnixNano(),
	}
	if n.Keyword != nil {
		r.Keyword = sql.NullString{String: *n.Keyword, Valid: true}
	}
	return r
}

func (r row) notification() Notification {
	n := Notification{
		ID:        r.ID,
		App:       r.App,
		Content:   r.Content,
		Timestamp: time.Unix(0, r.ReceivedAt).UTC(),
	}
	if r.Keyword.Valid {
		kw := r.Keyword.String
		n.Keyword = &kw
	}
	return n
}

// SQLStore はsqlxを介してSQLiteまたはPostgreSQLに通知を保存するStore実装。
type SQLStore struct {
	// db はsqlxのデータベースハンドル。プレースホルダ変換にも使用する。
	db *sqlx.DB
	// timeout は1操作ごとのI/Oタイムアウト。
	timeout time.Duration
	// closed はClose済みかどうか。
	closed atomic.Bool
}

// OpenSQLite はSQLiteデータベースを開いてマイグレーションを適用する。
// pathに ":memory:" を指定するとインメモリDBになる。
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, classify("sqlite接続", err)
	}
	// SQLiteは同時に1つの書き込みしか受け付けず、インメモリDBは接続ごとに別物になる
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return newSQLStore(ctx, db)
}

// OpenPostgres はPostgreSQLに接続してマイグレーションを適用する。
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, classify("postgres接続", err)
	}
	return newSQLStore(ctx, db)
}

func newSQLStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	s := &SQLStore{db: db, timeout: DefaultOperationTimeout}

	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := db.PingContext(opCtx); err != nil {
		_ = db.Close()
		return nil, classify("接続確認", err)
	}
	if err := migration.Run(opCtx, db, migrationsFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, classify("マイグレーション", err)
	}
	return s, nil
}

// SetTimeout は1操作ごとのタイムアウトを変更する。0以下で無効になる。
func (s *SQLStore) SetTimeout(d time.Duration) {
	s.timeout = d
}

func (s *SQLStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SQLStore) ready() error {
	if s.closed.Load() {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, errClosed)
	}
	return nil
}

// Put はレコードをupsertする。
func (s *SQLStore) Put(ctx context.Context, n Notification) error {
	if err := s.ready(); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := s.db.Rebind(`
		INSERT INTO notifications (id, app, content, keyword, received_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			app = excluded.app,
			content = excluded.content,
			keyword = excluded.keyword,
			received_at = excluded.received_at`)
	r := toRow(n)
	if _, err := s.db.ExecContext(ctx, query, r.ID, r.App, r.Content, r.Keyword, r.ReceivedAt); err != nil {
		return classify("通知の保存", err)
	}
	return nil
}

// Get はIDでレコードを取得する。
func (s *SQLStore) Get(ctx context.Context, id string) (Notification, bool, error) {
	if err := s.ready(); err != nil {
		return Notification{}, false, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var r row
	err := s.db.GetContext(ctx, &r, s.db.Rebind(
		"SELECT id, app, content, keyword, received_at FROM notifications WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return Notification{}, false, nil
	}
	if err != nil {
		return Notification{}, false, classify("通知の取得", err)
	}
	return r.notification(), true, nil
}

// Delete はIDでレコードを削除する。
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM notifications WHERE id = ?"), id); err != nil {
		return classify("通知の削除", err)
	}
	return nil
}

// Query は条件に一致する行を1行ずつ読み出すシーケンスを返す。
// 走査を途中で止めた場合もカーソルは閉じられる。
func (s *SQLStore) Query(ctx context.Context, q Query) iter.Seq2[Notification, error] {
	return func(yield func(Notification, error) bool) {
		if err := s.ready(); err != nil {
			yield(Notification{}, err)
			return
		}
		query, args, err := buildSelect(q)
		if err != nil {
			yield(Notification{}, err)
			return
		}

		ctx, cancel := s.withTimeout(ctx)
		defer cancel()

		rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
		if err != nil {
			yield(Notification{}, classify("通知の検索", err))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var r row
			if err := rows.StructScan(&r); err != nil {
				yield(Notification{}, classify("検索結果の読み取り", err))
				return
			}
			if !yield(r.notification(), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Notification{}, classify("通知の検索", err))
		}
	}
}

// buildSelect はQueryからSELECT文を組み立てる。カラム名は既知のものに限定する。
func buildSelect(q Query) (string, []any, error) {
	if err := q.validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT id, app, content, keyword, received_at FROM notifications")

	args := make([]any, 0, len(q.Filters))
	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(columns[f.Field])
		b.WriteString(" = ?")
		args = append(args, f.Value)
	}

	if q.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(columns[q.OrderBy])
		if q.Direction == Descending {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args, nil
}

// BatchDelete はIDの集合を1文で削除する。
func (s *SQLStore) BatchDelete(ctx context.Context, ids []string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query, args, err := sqlx.In("DELETE FROM notifications WHERE id IN (?)", ids)
	if err != nil {
		return 0, classify("バッチ削除の組み立て", err)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, classify("バッチ削除", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify("削除件数の取得", err)
	}
	return int(n), nil
}

// Close はデータベース接続を閉じる。
func (s *SQLStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
