package entity

import (
	"fmt"
	"math"
)

type ProposedTimeType string

const (
	ProposedSpecificDatetime ProposedTimeType = "specific_datetime"
	ProposedDayTimeRange     ProposedTimeType = "day_time_range"
	ProposedDayOnly          ProposedTimeType = "day_only"
	ProposedVague            ProposedTimeType = "vague"
)

type DurationConfidence string

const (
	ConfidenceExplicit DurationConfidence = "explicit"
	ConfidenceInferred DurationConfidence = "inferred"
	ConfidenceUnknown  DurationConfidence = "unknown"
)

type Urgency string

const (
	UrgencyImmediate   Urgency = "immediate"
	UrgencySoon        Urgency = "soon"
	UrgencyFlexible    Urgency = "flexible"
	UrgencyUnspecified Urgency = "unspecified"
)

type TimeRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ProposedTime is one timing hint from the email. Empty strings mean "not given".
type ProposedTime struct {
	Type      ProposedTimeType `json:"type"`
	Datetime  string           `json:"datetime,omitempty"`
	DayOfWeek string           `json:"dayOfWeek,omitempty"`
	TimeRange *TimeRange       `json:"timeRange,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
}

type DurationHint struct {
	Minutes    *float64           `json:"minutes,omitempty"`
	Confidence DurationConfidence `json:"confidence"`
}

// WholeMinutes returns the rounded duration and whether a usable value is present.
func (d DurationHint) WholeMinutes() (int, bool) {
	if d.Minutes == nil || *d.Minutes <= 0 || math.IsNaN(*d.Minutes) || math.IsInf(*d.Minutes, 0) {
		return 0, false
	}
	return int(math.Round(*d.Minutes)), true
}

type Constraints struct {
	MustBeAfternoon bool   `json:"mustBeAfternoon,omitempty"`
	MustBeMorning   bool   `json:"mustBeMorning,omitempty"`
	SenderTimezone  string `json:"senderTimezone,omitempty"`
}

// MeetingProposal is the structured reading of an email's scheduling intent.
// The JSON shape matches the extraction response schema.
type MeetingProposal struct {
	ProposedTimes []ProposedTime `json:"proposedTimes"`
	Duration      DurationHint   `json:"duration"`
	Urgency       Urgency        `json:"urgency"`
	MeetingType   string         `json:"meetingType,omitempty"`
	Constraints   Constraints    `json:"constraints"`
}

// Validate rejects enum values outside the schema.
func (p *MeetingProposal) Validate() error {
	for i, pt := range p.ProposedTimes {
		switch pt.Type {
		case ProposedSpecificDatetime, ProposedDayTimeRange, ProposedDayOnly, ProposedVague:
		default:
			return fmt.Errorf("proposedTimes[%d]: unknown type %q", i, pt.Type)
		}
	}
	switch p.Duration.Confidence {
	case ConfidenceExplicit, ConfidenceInferred, ConfidenceUnknown:
	default:
		return fmt.Errorf("duration: unknown confidence %q", p.Duration.Confidence)
	}
	switch p.Urgency {
	case UrgencyImmediate, UrgencySoon, UrgencyFlexible, UrgencyUnspecified:
	default:
		return fmt.Errorf("unknown urgency %q", p.Urgency)
	}
	return nil
}
