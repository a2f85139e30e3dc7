// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docmind-tui/internal/askapi"
	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/identity"
	"github.com/jeranaias/docmind-tui/internal/mock"
	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/storage"
)

func answering(answer string, citations ...model.Citation) *mock.Asker {
	return &mock.Asker{
		AskFn: func(ctx context.Context, question string) (*askapi.AskResponse, error) {
			return &askapi.AskResponse{Answer: answer, Sources: citations}, nil
		},
	}
}

// =============================================================================
// MOUNT
// =============================================================================

func TestMountSeedsGreeting(t *testing.T) {
	t.Parallel()

	var hooked []model.Turn
	ctrl := conversation.New(conversation.Options{
		Asker:    answering("unused"),
		OnAppend: func(turn model.Turn) { hooked = append(hooked, turn) },
	})

	ctrl.Mount()
	ctrl.Mount()

	turns := ctrl.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, 1, turns[0].ID)
	assert.Equal(t, model.OriginAssistant, turns[0].Origin)
	assert.Equal(t, conversation.Greeting, turns[0].Text)
	require.Len(t, hooked, 1)
	assert.Equal(t, turns[0].ID, hooked[0].ID)
}

func TestMountCustomGreeting(t *testing.T) {
	t.Parallel()

	ctrl := conversation.New(conversation.Options{Asker: answering(""), Greeting: "Hello"})
	ctrl.Mount()

	last, ok := ctrl.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, "Hello", last.Text)
}

// =============================================================================
// GATING
// =============================================================================

func TestSubmitBlankIsNoop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	log := &mock.RecordingQueryLogger{}
	ctrl := conversation.New(conversation.Options{
		Asker: &mock.Asker{AskFn: func(ctx context.Context, q string) (*askapi.AskResponse, error) {
			calls.Add(1)
			return &askapi.AskResponse{Answer: "x"}, nil
		}},
		QueryLog: log,
	})
	ctrl.Mount()

	for _, text := range []string{"", "   ", "\n\t "} {
		_, ok := ctrl.SubmitQuestion(context.Background(), text)
		assert.False(t, ok)
	}
	ctrl.Wait()

	assert.Equal(t, 1, ctrl.Len())
	assert.Equal(t, int32(0), calls.Load())
	assert.Empty(t, log.Entries())
	assert.False(t, ctrl.Pending())
}

func TestSubmitWhilePendingIsNoop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	ctrl := conversation.New(conversation.Options{
		Asker: &mock.Asker{AskFn: func(ctx context.Context, q string) (*askapi.AskResponse, error) {
			calls.Add(1)
			return &askapi.AskResponse{Answer: "first answer"}, nil
		}},
	})
	ctrl.Mount()

	req, ok := ctrl.Begin("first")
	require.True(t, ok)
	assert.True(t, ctrl.Pending())

	_, ok = ctrl.Begin("second")
	assert.False(t, ok)
	_, ok = ctrl.SubmitQuestion(context.Background(), "third")
	assert.False(t, ok)
	assert.Equal(t, 2, ctrl.Len())

	turn := ctrl.Complete(ctrl.Fetch(context.Background(), req))

	assert.Equal(t, "first answer", turn.Text)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, ctrl.Pending())
	assert.Equal(t, 3, ctrl.Len())
}

func TestConcurrentBeginAcceptsOne(t *testing.T) {
	t.Parallel()

	ctrl := conversation.New(conversation.Options{Asker: answering("x")})

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := ctrl.Begin("question"); ok {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, 1, ctrl.Len())
}

// =============================================================================
// ANSWER PATHS
// =============================================================================

func TestSuccessfulAnswer(t *testing.T) {
	t.Parallel()

	var asked string
	ctrl := conversation.New(conversation.Options{
		Asker: &mock.Asker{AskFn: func(ctx context.Context, q string) (*askapi.AskResponse, error) {
			asked = q
			return &askapi.AskResponse{
				Answer: "Use **API keys**.",
				Sources: []model.Citation{
					{Tool: "stripe", Title: "Keys", URL: "https://a"},
					{Tool: "stripe", Title: "Dup", URL: "https://a"},
					{Tool: "stripe", Title: "No URL"},
					{Tool: "react", URL: "https://b"},
				},
			}, nil
		}},
	})
	ctrl.Mount()

	turn, ok := ctrl.SubmitQuestion(context.Background(), "  how do I authenticate?  ")
	require.True(t, ok)

	assert.Equal(t, "how do I authenticate?", asked)
	assert.Equal(t, 3, turn.ID)
	assert.Equal(t, model.OriginAssistant, turn.Origin)
	assert.Equal(t, "Use **API keys**.", turn.Text)
	require.Len(t, turn.Citations, 2)
	assert.Equal(t, "Keys", turn.Citations[0].Title)
	assert.Equal(t, "https://b", turn.Citations[1].URL)

	turns := ctrl.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, model.OriginUser, turns[1].Origin)
	assert.Equal(t, "how do I authenticate?", turns[1].Text)
	assert.Nil(t, turns[1].Citations)
	for i, tr := range turns {
		assert.Equal(t, i+1, tr.ID)
	}
}

func TestMissingAnswerUsesFallback(t *testing.T) {
	t.Parallel()

	responses := map[string]*askapi.AskResponse{
		"empty":      {},
		"whitespace": {Answer: "  \n"},
		"nil":        nil,
	}
	for name, resp := range responses {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctrl := conversation.New(conversation.Options{
				Asker: &mock.Asker{AskFn: func(ctx context.Context, q string) (*askapi.AskResponse, error) {
					return resp, nil
				}},
			})

			turn, ok := ctrl.SubmitQuestion(context.Background(), "q")
			require.True(t, ok)
			assert.Equal(t, conversation.FallbackAnswer, turn.Text)
			assert.Empty(t, turn.Citations)
			assert.False(t, ctrl.Pending())
		})
	}
}

func TestFailureAppendsConnectionMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctrl := conversation.New(conversation.Options{
		Asker: &mock.Asker{AskFn: func(ctx context.Context, q string) (*askapi.AskResponse, error) {
			return nil, &askapi.ClientError{Type: askapi.ErrTypeStatus, Message: "ask failed: 500", StatusCode: 500}
		}},
		Logger: logger,
	})
	ctrl.Mount()

	turn, ok := ctrl.SubmitQuestion(context.Background(), "q")

	require.True(t, ok)
	assert.Equal(t, conversation.ConnectionErrorMessage, turn.Text)
	assert.Nil(t, turn.Citations)
	assert.False(t, ctrl.Pending())
	assert.Equal(t, 3, ctrl.Len())
	assert.Contains(t, buf.String(), "ask failed")
	assert.Contains(t, buf.String(), "error_type=status")

	// The controller accepts the next question after a failure.
	_, ok = ctrl.Begin("again")
	assert.True(t, ok)
}

func TestStaleCompleteIsDropped(t *testing.T) {
	t.Parallel()

	ctrl := conversation.New(conversation.Options{Asker: answering("x")})
	ctrl.Mount()

	turn := ctrl.Complete(conversation.Result{Response: &askapi.AskResponse{Answer: "late"}})

	assert.Zero(t, turn.ID)
	assert.Equal(t, 1, ctrl.Len())
}

// =============================================================================
// TRANSCRIPT INVARIANTS
// =============================================================================

func TestTranscriptIsAppendOnly(t *testing.T) {
	t.Parallel()

	ctrl := conversation.New(conversation.Options{Asker: answering("a", model.Citation{Tool: "x", URL: "u"})})
	ctrl.Mount()

	var snapshots [][]model.Turn
	snapshots = append(snapshots, ctrl.Turns())
	for _, q := range []string{"one", "two", "three"} {
		_, ok := ctrl.SubmitQuestion(context.Background(), q)
		require.True(t, ok)
		snapshots = append(snapshots, ctrl.Turns())
	}

	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		require.Equal(t, len(prev)+2, len(cur))
		assert.Equal(t, prev, cur[:len(prev)])
	}

	// Mutating a snapshot never reaches the controller.
	snap := ctrl.Turns()
	snap[1].Text = "tampered"
	snap[2].Citations[0].URL = "tampered"
	fresh := ctrl.Turns()
	assert.Equal(t, "one", fresh[1].Text)
	assert.Equal(t, "u", fresh[2].Citations[0].URL)
}

func TestHookRunsAfterEveryAppend(t *testing.T) {
	t.Parallel()

	var ctrl *conversation.Controller
	var seen []int
	ctrl = conversation.New(conversation.Options{
		Asker: answering("a"),
		OnAppend: func(turn model.Turn) {
			// The turn is already in the transcript when the hook runs.
			assert.Equal(t, turn.ID, ctrl.Len())
			seen = append(seen, turn.ID)
		},
	})

	ctrl.Mount()
	ctrl.SubmitQuestion(context.Background(), "q1")
	ctrl.SubmitQuestion(context.Background(), "")
	ctrl.SubmitQuestion(context.Background(), "q2")

	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

// =============================================================================
// QUERY LOG
// =============================================================================

func TestQueryLogEntry(t *testing.T) {
	t.Parallel()

	log := &mock.RecordingQueryLogger{}
	ctrl := conversation.New(conversation.Options{
		Asker:    answering("a"),
		QueryLog: log,
		Identity: identity.NewStatic(&identity.Identity{ID: "user-7", Email: "ada@example.com"}),
		Tool:     "docmind",
	})

	before := time.Now()
	_, ok := ctrl.SubmitQuestion(context.Background(), "  webhooks  ")
	require.True(t, ok)
	ctrl.Wait()

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "webhooks", entries[0].Query)
	assert.Equal(t, "user-7", entries[0].IdentityID)
	assert.Equal(t, "docmind", entries[0].Tool)
	assert.False(t, entries[0].Timestamp.Before(before))
}

func TestQueryLogAnonymous(t *testing.T) {
	t.Parallel()

	log := &mock.RecordingQueryLogger{}
	ctrl := conversation.New(conversation.Options{
		Asker:    answering("a"),
		QueryLog: log,
		Identity: &mock.IdentityProvider{CurrentFn: func() *identity.Identity { return nil }},
	})

	ctrl.SubmitQuestion(context.Background(), "q")
	ctrl.Wait()

	require.Len(t, log.Entries(), 1)
	assert.Equal(t, "", log.Entries()[0].IdentityID)
}

func TestQueryLogFailureDoesNotAffectAnswer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))
	ctrl := conversation.New(conversation.Options{
		Asker: answering("fine"),
		QueryLog: &mock.QueryLogger{AppendFn: func(ctx context.Context, e *storage.QueryLogEntry) error {
			return errors.New("disk full")
		}},
		Logger: logger,
	})

	turn, ok := ctrl.SubmitQuestion(context.Background(), "q")
	ctrl.Wait()

	require.True(t, ok)
	assert.Equal(t, "fine", turn.Text)
	mu.Lock()
	assert.Contains(t, buf.String(), "disk full")
	mu.Unlock()
}

func TestQueryLogPanicIsContained(t *testing.T) {
	t.Parallel()

	ctrl := conversation.New(conversation.Options{
		Asker: answering("fine"),
		QueryLog: &mock.QueryLogger{AppendFn: func(ctx context.Context, e *storage.QueryLogEntry) error {
			panic("boom")
		}},
	})

	turn, ok := ctrl.SubmitQuestion(context.Background(), "q")
	ctrl.Wait()

	require.True(t, ok)
	assert.Equal(t, "fine", turn.Text)
}

func TestQueryLogDoesNotBlockAnswer(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	ctrl := conversation.New(conversation.Options{
		Asker: answering("fast"),
		QueryLog: &mock.QueryLogger{AppendFn: func(ctx context.Context, e *storage.QueryLogEntry) error {
			<-release
			return nil
		}},
	})

	done := make(chan model.Turn, 1)
	go func() {
		turn, _ := ctrl.SubmitQuestion(context.Background(), "q")
		done <- turn
	}()

	select {
	case turn := <-done:
		assert.Equal(t, "fast", turn.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("answer waited on the query log")
	}
	close(release)
	ctrl.Wait()
}

func TestQueryLogToSQLite(t *testing.T) {
	t.Parallel()

	db := storage.NewDB(storage.MemoryPath)
	require.NoError(t, db.Open())
	defer db.Close()
	queryLog := storage.NewQueryLog(db)

	ctrl := conversation.New(conversation.Options{Asker: answering("a"), QueryLog: queryLog, Tool: "docmind"})
	ctrl.SubmitQuestion(context.Background(), "first")
	ctrl.SubmitQuestion(context.Background(), "second")
	ctrl.Wait()

	entries, err := queryLog.List(context.Background(), storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Anonymous())
}

// =============================================================================
// NO TIMEOUT
// =============================================================================

// A request that never resolves keeps the controller pending: there is no
// client-side timeout unless one is configured on the ask client.
func TestHungRequestStaysPending(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	ctrl := conversation.New(conversation.Options{
		Asker: &mock.Asker{AskFn: func(ctx context.Context, q string) (*askapi.AskResponse, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}},
	})
	ctrl.Mount()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.SubmitQuestion(ctx, "will hang")
	}()

	<-started
	time.Sleep(50 * time.Millisecond)
	assert.True(t, ctrl.Pending())
	assert.Equal(t, 2, ctrl.Len())
	_, ok := ctrl.Begin("blocked")
	assert.False(t, ok)

	cancel()
	<-done
	assert.False(t, ctrl.Pending())
	last, _ := ctrl.LastAnswer()
	assert.Equal(t, conversation.ConnectionErrorMessage, last.Text)
}

// =============================================================================
// END TO END
// =============================================================================

func TestEndToEndAgainstHTTPBackend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req askapi.AskRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "How do I handle rate limits?", req.Question)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"answer": "Retry with exponential backoff.",
			"sources": [
				{"tool":"stripe","title":"Rate limits","url":"https://stripe.com/docs/rate-limits","snippet":"..."},
				{"tool":"stripe","title":"Rate limits (dup)","url":"https://stripe.com/docs/rate-limits"},
				{"tool":"vercel","title":"","url":"https://vercel.com/docs/limits"}
			]
		}`)
	}))
	defer srv.Close()

	var hooks atomic.Int32
	ctrl := conversation.New(conversation.Options{
		Asker:    askapi.NewClient(&askapi.Config{BaseURL: srv.URL}),
		OnAppend: func(model.Turn) { hooks.Add(1) },
	})
	ctrl.Mount()

	_, ok := ctrl.SubmitQuestion(context.Background(), "How do I handle rate limits?")
	require.True(t, ok)

	turns := ctrl.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, conversation.Greeting, turns[0].Text)
	assert.Equal(t, model.OriginUser, turns[1].Origin)
	assert.Equal(t, "Retry with exponential backoff.", turns[2].Text)
	require.Len(t, turns[2].Citations, 2)
	assert.Equal(t, "stripe", turns[2].Citations[0].Tool)
	assert.Equal(t, "vercel", turns[2].Citations[1].Tool)
	assert.Equal(t, int32(3), hooks.Load())
}

func TestEndToEndBackendDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	ctrl := conversation.New(conversation.Options{Asker: askapi.NewClient(&askapi.Config{BaseURL: url})})
	ctrl.Mount()

	turn, ok := ctrl.SubmitQuestion(context.Background(), "anyone there?")

	require.True(t, ok)
	assert.Equal(t, conversation.ConnectionErrorMessage, turn.Text)
	assert.Equal(t, 3, ctrl.Len())
}

func TestEndToEndNonJSONBodyIsConnectionError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>502 Bad Gateway</html>`)
	}))
	defer srv.Close()

	ctrl := conversation.New(conversation.Options{Asker: askapi.NewClient(&askapi.Config{BaseURL: srv.URL})})
	ctrl.Mount()

	turn, ok := ctrl.SubmitQuestion(context.Background(), "anyone there?")

	require.True(t, ok)
	assert.Equal(t, conversation.ConnectionErrorMessage, turn.Text)
	assert.False(t, ctrl.Pending())
}

type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
