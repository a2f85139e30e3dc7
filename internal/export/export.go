// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/docmind-tui/internal/model"
	"github.com/jeranaias/docmind-tui/internal/util"
)

var (
	// ErrNilConversation is returned when no conversation is given.
	ErrNilConversation = errors.New("conversation is nil")

	// ErrEmptyConversation is returned for a conversation without turns.
	ErrEmptyConversation = errors.New("conversation has no turns")

	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("unknown export format")
)

// DefaultTitle names a conversation with no user question yet.
const DefaultTitle = "DocuMind conversation"

const titleWidth = 60

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the exported view of a transcript.
type Conversation struct {
	Title     string       `json:"title"`
	Identity  string       `json:"identity,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Turns     []model.Turn `json:"turns"`
}

// NewConversation builds a Conversation from transcript turns. The title is
// the first user question.
func NewConversation(turns []model.Turn, identity string) *Conversation {
	conv := &Conversation{
		Title:     DefaultTitle,
		Identity:  identity,
		CreatedAt: time.Now(),
		Turns:     turns,
	}
	if len(turns) > 0 && !turns[0].CreatedAt.IsZero() {
		conv.CreatedAt = turns[0].CreatedAt
	}
	for _, t := range turns {
		if t.IsUser() {
			if title := util.OneLine(t.Text); title != "" {
				conv.Title = util.TruncateWidth(title, titleWidth)
				break
			}
		}
	}
	return conv
}

func (c *Conversation) validate() error {
	if c == nil {
		return ErrNilConversation
	}
	if len(c.Turns) == 0 {
		return ErrEmptyConversation
	}
	return nil
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation to one file format.
type Exporter interface {
	// Export converts a conversation to the target format and returns the content.
	Export(conv *Conversation) ([]byte, error)

	// FileExtension returns the file extension, including the dot.
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are written.
	// Default: ~/.docmind/exports
	OutputDir string

	// IncludeMetadata adds the title block (date, identity, turn count).
	IncludeMetadata bool

	// IncludeTimestamps adds a time to each turn.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	dir, err := util.DataPath("exports")
	if err != nil {
		dir = "."
	}
	return &Options{
		OutputDir:         dir,
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "light",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports conv with exporter into opts.OutputDir and returns
// the written path. File names carry the title, a timestamp and a short
// random suffix so repeated exports never collide.
func ExportToFile(conv *Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("docmind_%s_%s_%s%s",
		sanitizeFilename(conv.Title),
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		exporter.FileExtension(),
	)

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0o600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	const maxLen = 40
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	result := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '.':
			return '-'
		case ' ', '\t', '\n', '\r':
			return '_'
		}
		if r < 32 || r == 127 {
			return '-'
		}
		return r
	}, s)

	if strings.Trim(result, "-_") == "" {
		return "conversation"
	}
	return result
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
