package service

import (
	"context"
	"fmt"
	"strings"

	"meeting-slot-api/modules/extraction/client"
	"meeting-slot-api/modules/scheduling/entity"
)

// Classifier decides whether an email is trying to set up a meeting.
type Classifier struct {
	llm client.Completer
}

func NewClassifier(llm client.Completer) *Classifier {
	return &Classifier{llm: llm}
}

func (c *Classifier) ContainsMeetingProposal(ctx context.Context, email entity.EmailMessage) (bool, error) {
	answer, err := c.llm.Complete(ctx, client.ChatRequest{
		Messages:            []client.Message{{Role: "user", Content: classifierPrompt(email.Subject, email.Body())}},
		MaxCompletionTokens: 5,
	})
	if err != nil {
		return false, fmt.Errorf("classify email: %w", err)
	}
	answer = strings.ToUpper(strings.Trim(strings.TrimSpace(answer), `."'`))
	return answer == "YES", nil
}
