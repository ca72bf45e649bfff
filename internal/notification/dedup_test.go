package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/DigitalPlayLoad/monitor-notificacoes/internal/store"
)

func putNotification(t *testing.T, s store.Store, id, app, content string, at time.Time) {
	t.Helper()
	err := s.Put(t.Context(), store.Notification{ID: id, App: app, Content: content, Timestamp: at})
	if err != nil {
		t.Fatalf("テスト用通知の保存に失敗: %v", err)
	}
}

// TestChecker は重複判定のテスト。
func TestChecker(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	t.Run("同一の通知がなければUniqueになること", func(t *testing.T) {
		t.Parallel()
		c := NewChecker(store.NewMemoryStore())

		res := c.Check(t.Context(), "Mail", "Hi")
		if res.Verdict != VerdictUnique {
			t.Errorf("verdict: got %v, want %v", res.Verdict, VerdictUnique)
		}
	})

	t.Run("同一の通知があればDuplicateになること", func(t *testing.T) {
		t.Parallel()
		s := store.NewMemoryStore()
		for i := range 5 {
			putNotification(t, s, "n-"+string(rune('a'+i)), "Mail", "Hi", at.Add(time.Duration(i)*time.Minute))
		}
		c := NewChecker(s, WithWindow(5))

		res := c.Check(t.Context(), "Mail", "Hi")
		if res.Verdict != VerdictDuplicate {
			t.Errorf("verdict: got %v, want %v", res.Verdict, VerdictDuplicate)
		}
		if res.Err != nil {
			t.Errorf("err: got %v, want nil", res.Err)
		}
	})

	t.Run("古い同一通知でも時間に関係なくDuplicateになること", func(t *testing.T) {
		t.Parallel()
		s := store.NewMemoryStore()
		putNotification(t, s, "old", "Mail", "Hi", at.AddDate(-1, 0, 0))
		c := NewChecker(s)

		if res := c.Check(t.Context(), "Mail", "Hi"); res.Verdict != VerdictDuplicate {
			t.Errorf("verdict: got %v, want %v", res.Verdict, VerdictDuplicate)
		}
	})

	t.Run("内容が異なればUniqueになること", func(t *testing.T) {
		t.Parallel()
		s := store.NewMemoryStore()
		putNotification(t, s, "n-1", "Mail", "Hi", at)
		c := NewChecker(s)

		if res := c.Check(t.Context(), "Mail", "Hello"); res.Verdict != VerdictUnique {
			t.Errorf("verdict: got %v, want %v", res.Verdict, VerdictUnique)
		}
	})

	t.Run("アプリが異なればUniqueになること", func(t *testing.T) {
		t.Parallel()
		s := store.NewMemoryStore()
		putNotification(t, s, "n-1", "Mail", "Hi", at)
		c := NewChecker(s)

		if res := c.Check(t.Context(), "Chat", "Hi"); res.Verdict != VerdictUnique {
			t.Errorf("verdict: got %v, want %v", res.Verdict, VerdictUnique)
		}
	})

	t.Run("検索失敗時はCheckFailedになりフックと失敗回数が更新されること", func(t *testing.T) {
		t.Parallel()
		s := newFakeStore()
		s.queryErr = errors.Join(store.ErrStoreUnavailable, errors.New("connection refused"))

		var hookApp string
		var hookErr error
		c := NewChecker(s, WithCheckFailedHook(func(app string, err error) {
			hookApp = app
			hookErr = err
		}))

		res := c.Check(t.Context(), "Mail", "Hi")
		if res.Verdict != VerdictCheckFailed {
			t.Errorf("verdict: got %v, want %v", res.Verdict, VerdictCheckFailed)
		}
		if !errors.Is(res.Err, store.ErrStoreUnavailable) {
			t.Errorf("err: got %v, want ErrStoreUnavailable", res.Err)
		}
		if hookApp != "Mail" {
			t.Errorf("フックのapp: got %q, want Mail", hookApp)
		}
		if hookErr == nil {
			t.Error("フックにエラーが渡されていない")
		}
		if got := c.Failures(); got != 1 {
			t.Errorf("失敗回数: got %d, want 1", got)
		}
	})

	t.Run("0以下のWindowは既定値になること", func(t *testing.T) {
		t.Parallel()
		c := NewChecker(store.NewMemoryStore(), WithWindow(0))
		if got := c.Window(); got != DefaultDedupWindow {
			t.Errorf("window: got %d, want %d", got, DefaultDedupWindow)
		}
	})
}

// TestVerdictString は判定結果の文字列表現のテスト。
func TestVerdictString(t *testing.T) {
	t.Parallel()

	tests := map[Verdict]string{
		VerdictUnique:      "unique",
		VerdictDuplicate:   "duplicate",
		VerdictCheckFailed: "check_failed",
		Verdict(99):        "unknown",
	}
	for v, want := range tests {
		if got := v.String(); got != want {
			t.Errorf("Verdict(%d).String() = %q, want %q", int(v), got, want)
		}
	}
}
