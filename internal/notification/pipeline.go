package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/store"
)

// Status は取り込み結果の種類。
type Status string

const (
	// StatusAccepted は通知が保存されたことを表す。
	StatusAccepted Status = "accepted"
	// StatusDuplicateIgnored は重複として保存を見送ったことを表す。エラーではない。
	StatusDuplicateIgnored Status = "duplicate_ignored"
)

// IngestResult は取り込みの結果。
type IngestResult struct {
	// Status は保存したか重複として見送ったか。
	Status Status
	// ID は保存した通知のID。重複の場合は空。
	ID string
	// Notification は保存した通知。重複の場合はゼロ値。
	Notification store.Notification
}

// Pipeline は通知を検証・正規化し、重複でなければ保存する。
// 1回の呼び出しでストアへの書き込みは0回か1回のみ行う。
type Pipeline struct {
	// store は通知の保存先。
	store store.Store
	// checker は重複判定を行う。
	checker *Checker
	// publisher は保存した通知を外部に知らせる。
	publisher Publisher
	// now は取り込み時刻を返す。テストで差し替える。
	now func() time.Time
	// newID は通知IDを生成する。
	newID func() string
}

// PipelineOption はPipelineの設定を変更する。
type PipelineOption func(*Pipeline)

// WithClock は取り込み時刻の取得元を設定する。
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPublisher は保存後に通知するPublisherを設定する。
func WithPublisher(pub Publisher) PipelineOption {
	return func(p *Pipeline) {
		if pub != nil {
			p.publisher = pub
		}
	}
}

// NewPipeline は新しいPipelineを生成する。
func NewPipeline(s store.Store, checker *Checker, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:     s,
		checker:   checker,
		publisher: nopPublisher{},
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest は1件の通知を取り込む。
//
// appNameが空白のみの場合は *ValidationError を返し、ストアには触れない。
// 重複判定の検索が失敗した場合は重複なしとして書き込みを続ける。
// 書き込みの失敗はストアのエラーをラップして返す。
func (p *Pipeline) Ingest(ctx context.Context, raw RawNotification) (IngestResult, error) {
	app := strings.TrimSpace(raw.AppName)
	if app == "" {
		return IngestResult{}, &ValidationError{Field: "appName", Message: "アプリケーション名は必須です"}
	}

	n := store.Notification{
		ID:        p.newID(),
		App:       app,
		Content:   normalizeContent(raw.Title, raw.Text),
		Keyword:   normalizeKeyword(raw.Macro),
		Timestamp: p.now().UTC(),
	}

	// VerdictCheckFailedは重複なしとして扱う（Checker側でログ出力済み）
	if res := p.checker.Check(ctx, n.App, n.Content); res.Verdict == VerdictDuplicate {
		return IngestResult{Status: StatusDuplicateIgnored}, nil
	}

	if err := p.store.Put(ctx, n); err != nil {
		return IngestResult{}, fmt.Errorf("通知の保存に失敗: %w", err)
	}

	p.publisher.Received(ctx, n)
	return IngestResult{Status: StatusAccepted, ID: n.ID, Notification: n}, nil
}
