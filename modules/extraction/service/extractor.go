package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"meeting-slot-api/core/logger"
	"meeting-slot-api/modules/extraction/client"
	"meeting-slot-api/modules/scheduling/entity"

	"github.com/kaptinlin/jsonrepair"
)

const extractionMaxTokens = 800

// LLMExtractor asks a chat model for a MeetingProposal.
type LLMExtractor struct {
	llm client.Completer
}

func NewLLMExtractor(llm client.Completer) *LLMExtractor {
	return &LLMExtractor{llm: llm}
}

func (e *LLMExtractor) Extract(ctx context.Context, input entity.ExtractionInput) (*entity.MeetingProposal, error) {
	temperature := 0.0
	content, err := e.llm.Complete(ctx, client.ChatRequest{
		Messages: []client.Message{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: extractionUserPrompt(input)},
		},
		MaxCompletionTokens: extractionMaxTokens,
		Temperature:         &temperature,
		ResponseFormat: &client.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: &client.JSONSchema{Name: "meeting_proposal", Schema: proposalSchema},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extract proposal: %w", err)
	}

	proposal, err := ParseProposal(content)
	if err != nil {
		logger.Warn("LLMExtractor:Extract:Parse", "message_key", input.MessageKey, "error", err)
		return nil, err
	}
	return proposal, nil
}

// ParseProposal decodes model output, repairing malformed JSON first.
func ParseProposal(content string) (*entity.MeetingProposal, error) {
	raw := strings.TrimSpace(content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var proposal entity.MeetingProposal
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil, fmt.Errorf("proposal is not valid JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &proposal); err != nil {
			return nil, fmt.Errorf("decode repaired proposal: %w", err)
		}
	}

	if err := proposal.Validate(); err != nil {
		return nil, fmt.Errorf("invalid proposal: %w", err)
	}
	return &proposal, nil
}
