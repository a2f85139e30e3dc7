// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docmind-tui/internal/cli"
	"github.com/jeranaias/docmind-tui/internal/config"
	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/identity"
)

// =============================================================================
// HELPERS
// =============================================================================

const stripeAnswer = `{
	"answer": "Use **API keys** from the dashboard.",
	"sources": [
		{"tool": "stripe", "title": "Authentication", "url": "https://docs.stripe.com/keys", "snippet": "Stripe authenticates requests with API keys."},
		{"tool": "stripe", "title": "Duplicate", "url": "https://docs.stripe.com/keys"}
	]
}`

// backend is a stub documentation service. Every /ask gets code and body.
type backend struct {
	*httptest.Server
	asks    atomic.Int32
	lastAsk atomic.Value
	askCode int
	askBody string
}

func newBackend(t *testing.T) *backend {
	return newBackendWith(t, http.StatusOK, stripeAnswer)
}

func newBackendWith(t *testing.T, code int, body string) *backend {
	t.Helper()
	b := &backend{askCode: code, askBody: body}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask", func(w http.ResponseWriter, r *http.Request) {
		b.asks.Add(1)
		var req struct {
			Question string `json:"question"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.lastAsk.Store(req.Question)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.askCode)
		io.WriteString(w, b.askBody)
	})
	mux.HandleFunc("POST /initialize", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message": "Knowledge base ready: 42 documents"}`)
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message": "DocuMind API is running"}`)
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// setupHome points every data path at a temp directory and clears the
// environment overrides that would change behaviour.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DOCMIND_HOME", home)
	for _, k := range []string{"DOCMIND_API_URL", "VITE_API_URL", "DOCMIND_DB", "DOCMIND_LOG_LEVEL", "DOCMIND_TIMEOUT", "DOCMIND_NO_QUERY_LOG", "FORCE_COLOR"} {
		t.Setenv(k, "")
	}
	t.Cleanup(config.ResetGlobalForTesting)
	return home
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, m *cli.Main, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if m == nil {
		m = &cli.Main{Stdin: strings.NewReader("")}
	}
	err := m.Run(context.Background(), args, &stdout, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func withInput(input string) *cli.Main {
	return &cli.Main{Stdin: strings.NewReader(input)}
}

// scriptedLines feeds the chat command a fixed script.
type scriptedLines struct {
	lines   []string
	history []string
	closed  bool
}

func (s *scriptedLines) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedLines) AppendHistory(line string) { s.history = append(s.history, line) }
func (s *scriptedLines) Close() error              { s.closed = true; return nil }

// =============================================================================
// OFFLINE COMMANDS
// =============================================================================

func TestVersion(t *testing.T) {
	home := setupHome(t)

	r := run(t, nil, "version")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "docmind "+cli.Version)
	assert.Contains(t, r.stdout, "commit:")

	r = run(t, nil, "version", "--short")
	require.NoError(t, r.err)
	assert.Equal(t, cli.Version+"\n", r.stdout)

	_, err := os.Stat(filepath.Join(home, "docmind.db"))
	assert.True(t, os.IsNotExist(err), "offline commands must not open the database")
}

func TestConfigShowAppliesFlags(t *testing.T) {
	setupHome(t)

	r := run(t, nil, "--api-url", "http://docs.internal:9000", "config", "show")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, `base_url = "http://docs.internal:9000"`)
	assert.Contains(t, r.stdout, `tool = "docmind"`)
}

func TestConfigInitAndPath(t *testing.T) {
	home := setupHome(t)
	path := filepath.Join(home, "config.toml")

	r := run(t, nil, "config", "path")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, path)
	assert.Contains(t, r.stdout, "not created")

	r = run(t, nil, "config", "init")
	require.NoError(t, r.err)
	assert.FileExists(t, path)

	r = run(t, nil, "config", "init")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "already exists")

	r = run(t, nil, "config", "init", "--force")
	require.NoError(t, r.err)
}

func TestConfigFileIsRead(t *testing.T) {
	home := setupHome(t)
	path := filepath.Join(home, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://from-file:1234\"\n"), 0600))

	r := run(t, nil, "--config", path, "config", "show")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "http://from-file:1234")
}

func TestUnknownCommand(t *testing.T) {
	setupHome(t)

	r := run(t, nil, "frobnicate")
	assert.Error(t, r.err)
}

// =============================================================================
// ASK
// =============================================================================

func TestAskPrintsAnswerAndSources(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	r := run(t, nil, "--api-url", srv.URL, "ask", "How", "do", "I", "authenticate?")
	require.NoError(t, r.err)

	assert.Equal(t, "How do I authenticate?", srv.lastAsk.Load())
	assert.Contains(t, r.stdout, "API keys")
	assert.NotContains(t, r.stdout, "**", "emphasis is stripped without a terminal")
	assert.Contains(t, r.stdout, "Sources")
	assert.Contains(t, r.stdout, "Authentication")
	assert.Contains(t, r.stdout, "https://docs.stripe.com/keys")
	assert.NotContains(t, r.stdout, "Duplicate", "citations are deduplicated by URL")
	assert.NotContains(t, r.stdout, "\x1b[", "no ANSI output when piped")
}

func TestAskJSON(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	r := run(t, nil, "--api-url", srv.URL, "ask", "--json", "keys?")
	require.NoError(t, r.err)

	var out struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Sources  []struct {
			Tool string `json:"tool"`
			URL  string `json:"url"`
		} `json:"sources"`
		Tools []string `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &out))
	assert.Equal(t, "keys?", out.Question)
	assert.Equal(t, "Use **API keys** from the dashboard.", out.Answer)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, "stripe", out.Sources[0].Tool)
	assert.Equal(t, []string{"stripe"}, out.Tools)
}

func TestAskServerErrorExitsNonZero(t *testing.T) {
	setupHome(t)
	srv := newBackendWith(t, http.StatusInternalServerError, `{"detail": "boom"}`)

	r := run(t, nil, "--api-url", srv.URL, "ask", "anything")
	assert.ErrorIs(t, r.err, cli.ErrAskFailed)
	assert.Contains(t, r.stdout, "trouble connecting")
}

func TestAskMissingAnswerUsesFallback(t *testing.T) {
	setupHome(t)
	srv := newBackendWith(t, http.StatusOK, `{"answer": "   "}`)

	r := run(t, nil, "--api-url", srv.URL, "ask", "anything")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, conversation.FallbackAnswer)
}

func TestAskWithoutQuestion(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	r := run(t, nil, "--api-url", srv.URL, "ask", "   ")
	assert.ErrorIs(t, r.err, cli.ErrNoQuestion)
	assert.Zero(t, srv.asks.Load())
}

func TestAskTopics(t *testing.T) {
	setupHome(t)

	r := run(t, nil, "ask", "--topics")
	require.NoError(t, r.err)
	for _, topic := range conversation.PopularTopics {
		assert.Contains(t, r.stdout, topic)
	}
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistoryListsLoggedQuestions(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	require.NoError(t, run(t, nil, "--api-url", srv.URL, "ask", "webhook retries").err)
	require.NoError(t, run(t, nil, "--api-url", srv.URL, "ask", "rate limits").err)

	r := run(t, nil, "history")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "webhook retries")
	assert.Contains(t, r.stdout, "rate limits")
	assert.Contains(t, r.stdout, "anonymous")
	assert.Less(t, strings.Index(r.stdout, "rate limits"), strings.Index(r.stdout, "webhook retries"), "newest first")

	r = run(t, nil, "history", "--contains", "WEBHOOK")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "webhook retries")
	assert.NotContains(t, r.stdout, "rate limits")

	r = run(t, nil, "history", "--json", "-n", "1")
	require.NoError(t, r.err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "rate limits", entries[0]["query"])
	assert.Equal(t, "docmind", entries[0]["tool"])
}

func TestHistoryMineNeedsSignIn(t *testing.T) {
	setupHome(t)

	r := run(t, nil, "history", "--mine")
	assert.ErrorIs(t, r.err, identity.ErrNotSignedIn)
}

func TestHistoryDisabled(t *testing.T) {
	setupHome(t)
	t.Setenv("DOCMIND_NO_QUERY_LOG", "1")
	srv := newBackend(t)

	require.NoError(t, run(t, nil, "--api-url", srv.URL, "ask", "secret question").err)

	r := run(t, nil, "history")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "disabled")
	assert.NotContains(t, r.stdout, "secret question")
}

// =============================================================================
// STATUS / INIT
// =============================================================================

func TestStatusOnline(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	r := run(t, nil, "--api-url", srv.URL, "status")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Online")
	assert.Contains(t, r.stdout, srv.URL)
	assert.Contains(t, r.stdout, "anonymous")
	assert.Contains(t, r.stdout, "0 questions")
}

func TestStatusOffline(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)
	url := srv.URL
	srv.Close()

	r := run(t, nil, "--api-url", url, "status")
	assert.ErrorIs(t, r.err, cli.ErrServiceOffline)
	assert.Contains(t, r.stdout, "Offline")
}

func TestInit(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	r := run(t, nil, "--api-url", srv.URL, "init")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Knowledge base ready: 42 documents")
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportWritesConversation(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)
	out := t.TempDir()

	r := run(t, nil, "--api-url", srv.URL, "export", "--out", out, "--format", "md", "How do keys work?", "And rotation?")
	require.NoError(t, r.err)
	assert.EqualValues(t, 2, srv.asks.Load())

	path := strings.TrimSpace(r.stdout)
	assert.Equal(t, out, filepath.Dir(path))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "How do keys work?")
	assert.Contains(t, content, "And rotation?")
	assert.Contains(t, content, "https://docs.stripe.com/keys")
	assert.Contains(t, content, conversation.Greeting)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	r := run(t, nil, "--api-url", srv.URL, "export", "--format", "pdf", "q")
	assert.Error(t, r.err)
	assert.Zero(t, srv.asks.Load())
}

// =============================================================================
// AUTH
// =============================================================================

func TestAuthLifecycle(t *testing.T) {
	setupHome(t)

	r := run(t, withInput("correct horse\ncorrect horse\n"), "auth", "signup", "ada@example.com", "--name", "Ada")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Signed in as Ada")
	assert.NotContains(t, r.stdout, "correct horse")

	r = run(t, nil, "auth", "whoami")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Ada <ada@example.com>")
	assert.Contains(t, r.stdout, "disabled")

	r = run(t, nil, "auth", "logout")
	require.NoError(t, r.err)

	r = run(t, nil, "auth", "whoami")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Not signed in")

	r = run(t, withInput("wrong password\n"), "auth", "login", "ada@example.com")
	assert.ErrorIs(t, r.err, identity.ErrInvalidCredentials)

	r = run(t, withInput("correct horse\n"), "auth", "login", "ADA@example.com")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Signed in as Ada")
}

func TestAuthSignupPasswordMismatch(t *testing.T) {
	setupHome(t)

	r := run(t, withInput("correct horse\nbattery staple\n"), "auth", "signup", "ada@example.com")
	assert.ErrorIs(t, r.err, cli.ErrPasswordMismatch)
}

func TestSignedInQuestionsAreAttributed(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	require.NoError(t, run(t, nil, "--api-url", srv.URL, "ask", "anonymous question").err)
	require.NoError(t, run(t, withInput("correct horse\ncorrect horse\n"), "auth", "signup", "ada@example.com").err)
	require.NoError(t, run(t, nil, "--api-url", srv.URL, "ask", "my question").err)

	r := run(t, nil, "history", "--mine")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "my question")
	assert.NotContains(t, r.stdout, "anonymous question")
}

// =============================================================================
// CHAT
// =============================================================================

func TestChatSession(t *testing.T) {
	home := setupHome(t)
	srv := newBackend(t)

	lines := &scriptedLines{lines: []string{
		"",
		"/topics",
		"How do I authenticate?",
		"/sources",
		"/export json",
		"/bogus",
		"/quit",
		"never asked",
	}}
	m := &cli.Main{Stdin: strings.NewReader(""), Lines: lines}

	r := run(t, m, "--api-url", srv.URL, "chat")
	require.NoError(t, r.err)

	assert.True(t, lines.closed)
	assert.Equal(t, []string{"/topics", "How do I authenticate?", "/sources", "/export json", "/bogus", "/quit"}, lines.history)
	assert.EqualValues(t, 1, srv.asks.Load())

	assert.Contains(t, r.stdout, "documentation assistant", "greeting is shown first")
	assert.Contains(t, r.stdout, conversation.PopularTopics[0])
	assert.Contains(t, r.stdout, "Sources:")
	assert.Contains(t, r.stdout, "https://docs.stripe.com/keys")
	assert.Contains(t, r.stdout, "Exported to")
	assert.Contains(t, r.stdout, "Unknown command /bogus")

	exports, err := filepath.Glob(filepath.Join(home, "exports", "*.json"))
	require.NoError(t, err)
	assert.Len(t, exports, 1)
}

func TestChatEndsOnEOF(t *testing.T) {
	setupHome(t)
	srv := newBackend(t)

	lines := &scriptedLines{}
	r := run(t, &cli.Main{Lines: lines}, "--api-url", srv.URL, "chat")
	require.NoError(t, r.err)
	assert.True(t, lines.closed)
	assert.Zero(t, srv.asks.Load())
}

// =============================================================================
// TUI
// =============================================================================

func TestTUINeedsTerminal(t *testing.T) {
	setupHome(t)

	r := run(t, nil)
	assert.ErrorIs(t, r.err, cli.ErrNotTerminal)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, cli.ExitCode(nil))
	assert.Equal(t, 130, cli.ExitCode(context.Canceled))
	assert.Equal(t, 1, cli.ExitCode(cli.ErrAskFailed))
}
