// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ASK TESTS
// =============================================================================

func TestAskSendsTrimmedQuestionAsJSON(t *testing.T) {
	var gotBody AskRequest
	var gotContentType, gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"answer":"Use the Authorization header.","sources":[{"tool":"stripe","title":"Auth","url":"https://stripe.com/docs/auth","snippet":"Bearer"}]}`)
	}))
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL})
	resp, err := client.Ask(context.Background(), "how do I auth?")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/ask", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "how do I auth?", gotBody.Question)

	assert.Equal(t, "Use the Authorization header.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "stripe", resp.Sources[0].Tool)
	assert.Equal(t, "https://stripe.com/docs/auth", resp.Sources[0].URL)
}

func TestAskMissingSourcesIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"answer":"ok"}`)
	}))
	defer srv.Close()

	resp, err := NewClient(&Config{BaseURL: srv.URL}).Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.True(t, resp.HasAnswer())
	assert.Empty(t, resp.Sources)
}

func TestAskMissingAnswer(t *testing.T) {
	bodies := map[string]string{
		"no answer field": `{"sources":[]}`,
		"null answer":     `{"answer":null}`,
		"empty object":    `{}`,
		"numeric answer":  `{"answer":42}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			resp, err := NewClient(&Config{BaseURL: srv.URL}).Ask(context.Background(), "q")

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.False(t, resp.HasAnswer())
		})
	}
}

func TestAskKeepsAnswerWhenSourcesAreMalformed(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantURLs []string
	}{
		{
			name:     "bad entry dropped",
			body:     `{"answer":"Use an API key.","sources":[{"tool":"api","title":7,"url":"https://x/auth"},{"tool":"api","title":"Keys","url":"https://x/keys"}]}`,
			wantURLs: []string{"https://x/keys"},
		},
		{
			name: "sources not a list",
			body: `{"answer":"Use an API key.","sources":{}}`,
		},
		{
			name:     "null title kept",
			body:     `{"answer":"Use an API key.","sources":[{"tool":"api","title":null,"url":"https://x/auth"}]}`,
			wantURLs: []string{"https://x/auth"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			resp, err := NewClient(&Config{BaseURL: srv.URL}).Ask(context.Background(), "q")

			require.NoError(t, err)
			assert.Equal(t, "Use an API key.", resp.Answer)
			var urls []string
			for _, c := range resp.Sources {
				urls = append(urls, c.URL)
			}
			assert.Equal(t, tt.wantURLs, urls)
		})
	}
}

func TestAskNonJSONBodyIsInvalidResponse(t *testing.T) {
	for name, body := range map[string]string{
		"html":   `<html>gateway</html>`,
		"string": `"Use an API key."`,
		"list":   `[{"answer":"Use an API key."}]`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			resp, err := NewClient(&Config{BaseURL: srv.URL}).Ask(context.Background(), "q")

			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, ErrInvalidResponse))
			assert.Equal(t, ErrTypeInvalidResponse, TypeOf(err))
		})
	}
}

func TestAskNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"answer":"should not be read"}`)
	}))
	defer srv.Close()

	resp, err := NewClient(&Config{BaseURL: srv.URL}).Ask(context.Background(), "q")

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Equal(t, ErrTypeStatus, TypeOf(err))

	var ce *ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
}

func TestAskConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(&Config{BaseURL: url}).Ask(context.Background(), "q")

	require.Error(t, err)
	assert.Equal(t, ErrTypeConnection, TypeOf(err))
}

func TestAskTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(&Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Ask(context.Background(), "q")

	require.Error(t, err)
	assert.Equal(t, ErrTypeTimeout, TypeOf(err))
}

func TestAskContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(&Config{BaseURL: srv.URL}).Ask(ctx, "q")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

// =============================================================================
// HEALTH AND INITIALIZE TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"AI Dev Assistant API is running"}`)
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(&Config{BaseURL: srv.URL}).CheckRunning(context.Background()))
}

func TestCheckRunningUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(&Config{BaseURL: srv.URL}).CheckRunning(context.Background())
	assert.Equal(t, ErrTypeStatus, TypeOf(err))
}

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/initialize", r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"Knowledge base initialized successfully"}`)
	}))
	defer srv.Close()

	msg, err := NewClient(&Config{BaseURL: srv.URL}).Initialize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Knowledge base initialized successfully", msg)
}

func TestInitializeBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	_, err := NewClient(&Config{BaseURL: srv.URL}).Initialize(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

// =============================================================================
// CONFIGURATION TESTS
// =============================================================================

func TestBaseURLNormalization(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient(nil).BaseURL())
	assert.Equal(t, DefaultBaseURL, NewClient(&Config{BaseURL: "  "}).BaseURL())
	assert.Equal(t, "http://docs.local:9000", NewClient(&Config{BaseURL: "http://docs.local:9000/"}).BaseURL())
}

func TestSetBaseURLAppliesToNextRequest(t *testing.T) {
	var firstHits, secondHits atomic.Int32
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstHits.Add(1)
		_, _ = io.WriteString(w, `{"answer":"first"}`)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondHits.Add(1)
		_, _ = io.WriteString(w, `{"answer":"second"}`)
	}))
	defer second.Close()

	client := NewClient(&Config{BaseURL: first.URL})
	resp, err := client.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Answer)

	client.SetBaseURL(second.URL + "/")
	resp, err = client.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Answer)

	assert.Equal(t, int32(1), firstHits.Load())
	assert.Equal(t, int32(1), secondHits.Load())
}

func TestRateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"answer":"ok"}`)
	}))
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL, RequestsPerSecond: 0.001})
	_, err := client.Ask(context.Background(), "first")
	require.NoError(t, err)

	// The bucket is empty and refills in ~1000s, far past this deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Ask(ctx, "second")
	require.Error(t, err)
}

func TestClientErrorFormatting(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &ClientError{Type: ErrTypeConnection, Message: "cannot reach documentation service", Cause: cause}

	assert.Equal(t, "cannot reach documentation service: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConnection)
	assert.NotErrorIs(t, err, ErrStatus)
	assert.Equal(t, "connection", ErrTypeConnection.String())
	assert.Equal(t, ErrTypeUnknown, TypeOf(errors.New("plain")))
}
