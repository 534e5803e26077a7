package retry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mydehq/lrcfetch/internal/types"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func newTestExecutor(s *recordingSleeper, hooks *Hooks) *Executor {
	return New(
		WithSleeper(s.sleep),
		WithHooks(hooks),
		WithLogger(log.New(io.Discard)),
	)
}

func gammaRequest() Request {
	return Request{
		ID:       "req-1",
		Provider: "Gamma",
		URL:      "https://gamma.com/track/1",
		Op:       types.OpFetch,
		Policy:   types.RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Second, RetryableKinds: types.DefaultRetryPolicy().RetryableKinds},
	}
}

func TestRun_RetriesThenSucceeds(t *testing.T) {
	s := &recordingSleeper{}
	e := newTestExecutor(s, NewHooks())

	want := &types.LyricsResponse{Title: "Song", Source: "Gamma"}
	calls := 0
	got, err := e.Run(context.Background(), gammaRequest(), func(context.Context) ([]*types.LyricsResponse, error) {
		calls++
		if calls < 3 {
			return nil, types.ErrRateLimited{Provider: "Gamma"}
		}
		return []*types.LyricsResponse{want}, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if len(got) != 1 || got[0] != want {
		t.Errorf("unexpected responses: %v", got)
	}

	expected := []time.Duration{time.Second, 2 * time.Second}
	if len(s.waits) != len(expected) {
		t.Fatalf("expected waits %v, got %v", expected, s.waits)
	}
	for i := range expected {
		if s.waits[i] != expected[i] {
			t.Errorf("wait %d = %v, want %v", i, s.waits[i], expected[i])
		}
	}
}

func TestRun_NonRetryableFailsImmediately(t *testing.T) {
	s := &recordingSleeper{}
	e := newTestExecutor(s, NewHooks())

	notFound := types.ErrLyricsNotFound{Provider: "Gamma", Track: "x"}
	calls := 0
	_, err := e.Run(context.Background(), gammaRequest(), func(context.Context) ([]*types.LyricsResponse, error) {
		calls++
		return nil, notFound
	})

	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
	if err != notFound {
		t.Errorf("expected error to be returned unchanged, got %v", err)
	}
	if len(s.waits) != 0 {
		t.Errorf("expected no waits, got %v", s.waits)
	}
}

func TestRun_ExhaustsAttempts(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		wantCalls   int
		wantWaits   []time.Duration
	}{
		{"one attempt", 1, 1, nil},
		{"zero treated as one", 0, 1, nil},
		{"three attempts", 3, 3, []time.Duration{time.Second, 2 * time.Second}},
		{"five attempts", 5, 5, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSleeper{}
			e := newTestExecutor(s, NewHooks())
			req := gammaRequest()
			req.Policy.MaxAttempts = tt.maxAttempts

			var last error
			calls := 0
			_, err := e.Run(context.Background(), req, func(context.Context) ([]*types.LyricsResponse, error) {
				calls++
				last = types.ErrRateLimited{Provider: "Gamma", RetryAfter: time.Duration(calls) * time.Second}
				return nil, last
			})

			if calls != tt.wantCalls {
				t.Errorf("expected %d attempts, got %d", tt.wantCalls, calls)
			}
			if err != last {
				t.Errorf("expected last error %v, got %v", last, err)
			}
			if len(s.waits) != len(tt.wantWaits) {
				t.Fatalf("expected waits %v, got %v", tt.wantWaits, s.waits)
			}
			for i := range tt.wantWaits {
				if s.waits[i] != tt.wantWaits[i] {
					t.Errorf("wait %d = %v, want %v", i, s.waits[i], tt.wantWaits[i])
				}
			}
		})
	}
}

func TestRun_RetriesPointerErrors(t *testing.T) {
	s := &recordingSleeper{}
	e := newTestExecutor(s, NewHooks())

	calls := 0
	_, err := e.Run(context.Background(), gammaRequest(), func(context.Context) ([]*types.LyricsResponse, error) {
		calls++
		return nil, &types.ErrRateLimited{Provider: "Gamma", RetryAfter: time.Second}
	})

	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if types.KindOf(err) != types.KindRateLimit {
		t.Errorf("expected rate limit kind, got %v", types.KindOf(err))
	}
	if !types.InTaxonomy(err) {
		t.Error("pointer rate limit error should be in the taxonomy")
	}
	if retryAfter(err) != time.Second {
		t.Errorf("retryAfter = %v, want 1s", retryAfter(err))
	}
}

func TestRun_StopsWhenWaitInterrupted(t *testing.T) {
	e := New(
		WithSleeper(func(context.Context, time.Duration) error { return context.Canceled }),
		WithLogger(log.New(io.Discard)),
	)

	calls := 0
	_, err := e.Run(context.Background(), gammaRequest(), func(context.Context) ([]*types.LyricsResponse, error) {
		calls++
		return nil, context.DeadlineExceeded
	})

	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected last attempt error, got %v", err)
	}
}

func TestRun_Hooks(t *testing.T) {
	s := &recordingSleeper{}
	hooks := NewHooks()

	var before []int
	var after []types.FetchEvent
	hooks.OnBeforeFetch("gamma", func(ev types.FetchEvent) error {
		before = append(before, ev.Attempt)
		return errors.New("before hook broke")
	})
	hooks.OnAfterFetch("Gamma", func(ev types.FetchEvent) error {
		after = append(after, ev)
		panic("after hook broke")
	})

	deltaFired := false
	hooks.OnBeforeFetch("Delta", func(types.FetchEvent) error {
		deltaFired = true
		return nil
	})
	hooks.OnAfterFetch("Delta", func(types.FetchEvent) error {
		deltaFired = true
		return nil
	})

	e := newTestExecutor(s, hooks)
	calls := 0
	resp := &types.LyricsResponse{Title: "Song"}
	got, err := e.Run(context.Background(), gammaRequest(), func(context.Context) ([]*types.LyricsResponse, error) {
		calls++
		if calls == 1 {
			return nil, types.ErrRateLimited{Provider: "Gamma"}
		}
		return []*types.LyricsResponse{resp}, nil
	})

	if err != nil {
		t.Fatalf("hook failures must not reach the caller: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 response, got %d", len(got))
	}
	if len(before) != 2 || before[0] != 1 || before[1] != 2 {
		t.Errorf("expected before hooks for attempts [1 2], got %v", before)
	}
	if len(after) != 1 {
		t.Fatalf("expected after hook to run once, ran %d times", len(after))
	}
	if after[0].Err != nil || len(after[0].Responses) != 1 || after[0].Attempt != 2 {
		t.Errorf("unexpected after event: %+v", after[0])
	}
	if after[0].RequestID != "req-1" || after[0].Op != types.OpFetch {
		t.Errorf("after event lost request identity: %+v", after[0])
	}
	if deltaFired {
		t.Error("hooks registered for another provider fired")
	}
}

func TestRun_AfterHookReceivesError(t *testing.T) {
	hooks := NewHooks()
	var got error
	hooks.OnAfterFetch("Gamma", func(ev types.FetchEvent) error {
		got = ev.Err
		return nil
	})

	e := newTestExecutor(&recordingSleeper{}, hooks)
	authErr := types.ErrAuth{Provider: "Gamma", Reason: "expired"}
	_, _ = e.Run(context.Background(), gammaRequest(), func(context.Context) ([]*types.LyricsResponse, error) {
		return nil, authErr
	})

	if got != authErr {
		t.Errorf("after hook got %v, want %v", got, authErr)
	}
}

func TestClassify(t *testing.T) {
	p := types.DefaultRetryPolicy()

	tests := []struct {
		name string
		err  error
		want Verdict
	}{
		{"success", nil, Success},
		{"rate limit", types.ErrRateLimited{}, RetryableFailure},
		{"timeout", context.DeadlineExceeded, RetryableFailure},
		{"not found", types.ErrLyricsNotFound{}, FatalFailure},
		{"configuration", types.ErrConfiguration{Reason: "x"}, FatalFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(p, nil, tt.err).Verdict; got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSleepWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleepWithContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
