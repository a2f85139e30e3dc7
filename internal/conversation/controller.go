// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/docmind-tui/internal/askapi"
	"github.com/jeranaias/docmind-tui/internal/identity"
	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/sources"
	"github.com/jeranaias/docmind-tui/internal/storage"
)

// =============================================================================
// FIXED TEXT
// =============================================================================

const (
	// Greeting is the assistant turn every conversation starts with.
	Greeting = "Hi! I'm your documentation assistant. I can help you find information about APIs, code examples, and technical documentation. What would you like to know?"

	// FallbackAnswer replaces a missing or blank answer.
	FallbackAnswer = "Sorry, I couldn't get a response right now."

	// ConnectionErrorMessage is shown when the request fails.
	ConnectionErrorMessage = "Sorry, I'm having trouble connecting to the server. Please make sure the backend is running and try again."

	// DefaultLogTimeout bounds each query log write.
	DefaultLogTimeout = 5 * time.Second
)

// QueryLogger records asked questions. *storage.QueryLog implements it.
type QueryLogger interface {
	Append(ctx context.Context, entry *storage.QueryLogEntry) error
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options are the Controller's dependencies. Only Asker is required.
type Options struct {
	Asker askapi.Asker

	// Identity supplies the identity attached to query log entries.
	// Nil means anonymous.
	Identity identity.Provider

	// QueryLog receives one entry per accepted question. Nil disables
	// logging.
	QueryLog QueryLogger

	Logger *slog.Logger

	// OnAppend is called after every transcript append, outside the
	// controller's lock, on the goroutine that caused the append.
	OnAppend func(model.Turn)

	// Tool labels query log entries with the client that asked.
	Tool string

	// Greeting overrides the seed greeting text.
	Greeting string

	// LogTimeout bounds each query log write (default 5s).
	LogTimeout time.Duration
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Request is an accepted question waiting to be fetched.
type Request struct {
	Question string
	Started  time.Time
}

// Result is the outcome of Fetch.
type Result struct {
	Request  Request
	Response *askapi.AskResponse
	Err      error
	Duration time.Duration
}

// Controller owns one conversation. It is safe for concurrent use.
type Controller struct {
	asker      askapi.Asker
	identity   identity.Provider
	queryLog   QueryLogger
	logger     *slog.Logger
	onAppend   func(model.Turn)
	tool       string
	greeting   string
	logTimeout time.Duration

	mu         sync.Mutex
	transcript *model.Transcript
	pending    bool
	mounted    bool

	logs sync.WaitGroup
}

// New creates a Controller. Call Mount to seed the greeting.
func New(opts Options) *Controller {
	if opts.Asker == nil {
		panic("conversation: Options.Asker is required")
	}
	c := &Controller{
		asker:      opts.Asker,
		identity:   opts.Identity,
		queryLog:   opts.QueryLog,
		logger:     opts.Logger,
		onAppend:   opts.OnAppend,
		tool:       opts.Tool,
		greeting:   opts.Greeting,
		logTimeout: opts.LogTimeout,
		transcript: model.NewTranscript(),
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.greeting == "" {
		c.greeting = Greeting
	}
	if c.logTimeout <= 0 {
		c.logTimeout = DefaultLogTimeout
	}
	return c
}

// Mount appends the greeting turn. Only the first call has any effect.
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	turn := c.transcript.AppendAssistant(c.greeting, nil)
	c.mu.Unlock()

	c.appended(turn)
}

// Begin accepts a question. It returns false, changing nothing, when the
// trimmed text is empty or a question is already pending. On acceptance the
// user turn is appended, the controller becomes pending and the query log
// write is started in the background.
func (c *Controller) Begin(text string) (Request, bool) {
	question := strings.TrimSpace(text)
	if question == "" {
		return Request{}, false
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Request{}, false
	}
	c.pending = true
	turn := c.transcript.AppendUser(question)
	c.mu.Unlock()

	c.appended(turn)
	c.logQuery(question, turn.CreatedAt)

	return Request{Question: question, Started: time.Now()}, true
}

// Fetch sends the request. It blocks for as long as the service takes and
// touches no controller state.
func (c *Controller) Fetch(ctx context.Context, req Request) Result {
	resp, err := c.asker.Ask(ctx, req.Question)
	return Result{
		Request:  req,
		Response: resp,
		Err:      err,
		Duration: time.Since(req.Started),
	}
}

// Complete appends the assistant turn for res and clears the pending state.
// A result arriving while nothing is pending is dropped and the zero Turn
// returned.
func (c *Controller) Complete(res Result) model.Turn {
	text, citations := c.interpret(res)

	c.mu.Lock()
	if !c.pending {
		c.mu.Unlock()
		c.logger.Warn("dropping result with no pending question", "question_len", len(res.Request.Question))
		return model.Turn{}
	}
	turn := c.transcript.AppendAssistant(text, citations)
	c.pending = false
	c.mu.Unlock()

	c.appended(turn)
	return turn
}

// SubmitQuestion runs Begin, Fetch and Complete in sequence and returns the
// assistant turn. It returns false when the question was not accepted.
func (c *Controller) SubmitQuestion(ctx context.Context, text string) (model.Turn, bool) {
	req, ok := c.Begin(text)
	if !ok {
		return model.Turn{}, false
	}
	return c.Complete(c.Fetch(ctx, req)), true
}

// Wait blocks until background query log writes have finished.
func (c *Controller) Wait() {
	c.logs.Wait()
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// Pending reports whether a question is awaiting its answer.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Turns returns a snapshot of the transcript.
func (c *Controller) Turns() []model.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Turns()
}

// Len returns the number of turns.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Len()
}

// LastAnswer returns the newest assistant turn.
func (c *Controller) LastAnswer() (model.Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.LastAssistant()
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Controller) interpret(res Result) (string, []model.Citation) {
	if res.Err != nil {
		c.logger.Error("ask failed",
			"error_type", askapi.TypeOf(res.Err).String(),
			"duration", res.Duration,
			"err", res.Err,
		)
		return ConnectionErrorMessage, nil
	}
	if !res.Response.HasAnswer() {
		c.logger.Warn("ask returned no answer", "duration", res.Duration)
		var citations []model.Citation
		if res.Response != nil {
			citations = sources.Dedupe(res.Response.Sources)
		}
		return FallbackAnswer, citations
	}
	return res.Response.Answer, sources.Dedupe(res.Response.Sources)
}

func (c *Controller) appended(turn model.Turn) {
	if c.onAppend != nil {
		c.onAppend(turn)
	}
}

// logQuery writes the entry on its own goroutine. The identity is captured
// at submit time.
func (c *Controller) logQuery(question string, at time.Time) {
	if c.queryLog == nil {
		return
	}
	entry := &storage.QueryLogEntry{
		IdentityID: identity.IDOf(c.identity),
		Tool:       c.tool,
		Query:      question,
		Timestamp:  at,
	}

	c.logs.Add(1)
	go func() {
		defer c.logs.Done()
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("query log panicked", "panic", fmt.Sprint(r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), c.logTimeout)
		defer cancel()
		if err := c.queryLog.Append(ctx, entry); err != nil {
			c.logger.Warn("query log write failed", "err", err)
		}
	}()
}
