package service

import (
	"fmt"
	"strings"
	"time"

	"meeting-slot-api/modules/scheduling/entity"
)

const extractionSystemPrompt = `You read emails and extract the sender's scheduling intent as JSON.
Only report what the email says. Do not invent times.
- proposedTimes: every timing hint in order of appearance. Use "specific_datetime" with an ISO 8601 datetime when a concrete date and time is given, "day_time_range" for a day plus a time window, "day_only" for a day without a time, "vague" for phrases like "next week" or "sometime soon". Keep relative phrases such as "next week", "this week", "today" or "tomorrow" verbatim in datetime.
- dayOfWeek: full English weekday name when a day is mentioned.
- duration.minutes only when the email states or clearly implies a length; confidence is "explicit", "inferred" or "unknown".
- urgency: "immediate", "soon", "flexible" or "unspecified".
- constraints.mustBeAfternoon / mustBeMorning only when the sender asks for it; senderTimezone as an IANA name when known.`

func extractionUserPrompt(input entity.ExtractionInput) string {
	return fmt.Sprintf(`Current date: %s

From: %s
Subject: %s

%s`,
		input.CurrentDate.UTC().Format(time.RFC3339),
		input.SenderDisplayNameOrAddress,
		input.Subject,
		strings.TrimSpace(input.FullBody),
	)
}

func classifierPrompt(subject, body string) string {
	return fmt.Sprintf(`You are given an email. Determine if it contains a proposal for a meeting (for example suggesting a time, asking to schedule or proposing to meet).
Answer only "YES" or "NO".

Email:
"""
%s
%s
"""`, subject, strings.TrimSpace(body))
}

var nullableString = map[string]any{"type": []string{"string", "null"}}

// proposalSchema mirrors entity.MeetingProposal.
var proposalSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"proposedTimes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []string{"specific_datetime", "day_time_range", "day_only", "vague"},
					},
					"datetime":  nullableString,
					"dayOfWeek": nullableString,
					"timeRange": map[string]any{
						"type": []string{"object", "null"},
						"properties": map[string]any{
							"start": nullableString,
							"end":   nullableString,
						},
					},
					"timezone": nullableString,
				},
				"required": []string{"type"},
			},
		},
		"duration": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"minutes":    map[string]any{"type": []string{"number", "null"}},
				"confidence": map[string]any{"type": "string", "enum": []string{"explicit", "inferred", "unknown"}},
			},
			"required": []string{"confidence"},
		},
		"urgency": map[string]any{
			"type": "string",
			"enum": []string{"immediate", "soon", "flexible", "unspecified"},
		},
		"meetingType": nullableString,
		"constraints": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mustBeAfternoon": map[string]any{"type": []string{"boolean", "null"}},
				"mustBeMorning":   map[string]any{"type": []string{"boolean", "null"}},
				"senderTimezone":  nullableString,
			},
		},
	},
	"required": []string{"proposedTimes", "duration", "urgency", "constraints"},
}
