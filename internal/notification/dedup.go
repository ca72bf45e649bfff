package notification

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/store"
)

// DefaultDedupWindow は重複判定で参照する直近の同一通知の件数。
const DefaultDedupWindow = 5

// Verdict は重複判定の結果。
type Verdict int

const (
	// VerdictUnique は重複していないことを表す。
	VerdictUnique Verdict = iota
	// VerdictDuplicate は直近に同一の通知があることを表す。
	VerdictDuplicate
	// VerdictCheckFailed は判定用の検索が失敗したことを表す。
	VerdictCheckFailed
)

// String は判定結果の名前を返す。
func (v Verdict) String() string {
	switch v {
	case VerdictUnique:
		return "unique"
	case VerdictDuplicate:
		return "duplicate"
	case VerdictCheckFailed:
		return "check_failed"
	default:
		return "unknown"
	}
}

// CheckResult は重複判定の結果とエラー。
type CheckResult struct {
	// Verdict は判定結果。
	Verdict Verdict
	// Err はVerdictCheckFailedの場合の原因。
	Err error
}

// Checker は候補の通知が直近の保存済み通知と重複しているかを判定する。
//
// 同じappとcontentを持つ保存済み通知を新しい順に最大Window件取得し、
// 1件でもあれば重複とみなす。時間窓による判定は行わない。
type Checker struct {
	// store は判定用の検索に使用するストア。
	store store.Store
	// window は参照する件数（K）。
	window int
	// onCheckFailed は検索失敗時に呼ばれるフック。
	onCheckFailed func(app string, err error)
	// failures は検索失敗の累計回数。
	failures atomic.Int64
}

// CheckerOption はCheckerの設定を変更する。
type CheckerOption func(*Checker)

// WithWindow は参照する件数を設定する。0以下の場合は既定値を使う。
func WithWindow(k int) CheckerOption {
	return func(c *Checker) {
		if k > 0 {
			c.window = k
		}
	}
}

// WithCheckFailedHook は検索失敗時のフックを設定する。
func WithCheckFailedHook(hook func(app string, err error)) CheckerOption {
	return func(c *Checker) {
		if hook != nil {
			c.onCheckFailed = hook
		}
	}
}

// NewChecker は新しいCheckerを生成する。
func NewChecker(s store.Store, opts ...CheckerOption) *Checker {
	c := &Checker{
		store:  s,
		window: DefaultDedupWindow,
		onCheckFailed: func(app string, err error) {
			log.Printf("重複チェックに失敗したため重複なしとして続行します (app=%q): %v", app, err)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window は参照する件数を返す。
func (c *Checker) Window() int {
	return c.window
}

// Failures は検索失敗の累計回数を返す。
func (c *Checker) Failures() int64 {
	return c.failures.Load()
}

// Check はappとcontentの組が重複しているかを判定する。
// 検索が失敗した場合はエラーを返さずVerdictCheckFailedを返し、フックを呼ぶ。
func (c *Checker) Check(ctx context.Context, app, content string) CheckResult {
	q := store.Query{
		OrderBy:   store.FieldTimestamp,
		Direction: store.Descending,
		Limit:     c.window,
	}.Where(store.FieldApp, app).Where(store.FieldContent, content)

	for _, err := range c.store.Query(ctx, q) {
		if err != nil {
			c.failures.Add(1)
			c.onCheckFailed(app, err)
			return CheckResult{Verdict: VerdictCheckFailed, Err: err}
		}
		return CheckResult{Verdict: VerdictDuplicate}
	}
	return CheckResult{Verdict: VerdictUnique}
}
