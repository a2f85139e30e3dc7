// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/docmind-tui/internal/conversation"
	"github.com/jeranaias/docmind-tui/internal/model"
)

// AskCmd asks one question and prints the answer.
type AskCmd struct {
	Question []string `arg:"" optional:"" help:"Question to ask."`
	Topics   bool     `help:"List popular topics and exit."`
	JSON     bool     `name:"json" help:"Print the answer as JSON."`
}

// Run asks the question.
func (c *AskCmd) Run(deps *Dependencies) error {
	if c.Topics {
		printTopics(deps)
		return nil
	}

	question := strings.TrimSpace(strings.Join(c.Question, " "))
	if question == "" {
		return ErrNoQuestion
	}

	ctrl := deps.NewController(nil)
	turn, _ := ctrl.SubmitQuestion(deps.Ctx, question)
	ctrl.Wait()

	if c.JSON {
		if err := writeAnswerJSON(deps.Stdout, question, turn); err != nil {
			return err
		}
	} else {
		newPrinter(deps.Stdout, deps.Config, deps.Globals.NoColor).Answer(turn)
	}
	return answerErr(deps, turn)
}

// answerErr turns the connection error answer into a non-zero exit. A
// cancelled context wins so interrupts exit quietly.
func answerErr(deps *Dependencies, turn model.Turn) error {
	if err := deps.Ctx.Err(); err != nil {
		return err
	}
	if turn.Text == conversation.ConnectionErrorMessage {
		return ErrAskFailed
	}
	return nil
}

func printTopics(deps *Dependencies) {
	p := newPrinter(deps.Stdout, deps.Config, deps.Globals.NoColor)
	p.Hint("Popular topics:")
	for _, t := range conversation.PopularTopics {
		fmt.Fprintf(deps.Stdout, "  • %s\n", t)
	}
}
