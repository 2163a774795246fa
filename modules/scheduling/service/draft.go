package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"meeting-slot-api/modules/scheduling/entity"
)

const replySubjectPrefix = "Re: "

// BuildReplyDraft writes a reply to email that offers the given slots, shown in loc.
// The user is removed from every recipient list.
func BuildReplyDraft(userEmail string, email entity.EmailMessage, slots []entity.TimeInterval, loc *time.Location, now time.Time) entity.DraftEmailMessage {
	if loc == nil {
		loc = time.UTC
	}

	to := withoutUser(append([]entity.EmailPerson{email.From}, email.To...), userEmail)

	return entity.DraftEmailMessage{
		ID:        uuid.New(),
		UserEmail: userEmail,
		ThreadID:  email.ThreadID,
		To:        to,
		Cc:        withoutUser(email.Cc, userEmail),
		Bcc:       withoutUser(email.Bcc, userEmail),
		Subject:   replySubject(email.Subject),
		DraftBody: replyBody(email.From, slots, loc),
		CreatedAt: now.UTC(),
	}
}

func replySubject(subject string) string {
	trimmed := strings.TrimSpace(subject)
	if strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(replySubjectPrefix)) {
		return trimmed
	}
	return replySubjectPrefix + trimmed
}

func replyBody(sender entity.EmailPerson, slots []entity.TimeInterval, loc *time.Location) string {
	var b strings.Builder

	greeting := strings.TrimSpace(sender.Name)
	if greeting == "" {
		greeting = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", greeting)

	if len(slots) == 0 {
		b.WriteString("I couldn't find a free time that works in the coming days. Could you suggest a few other options?\n")
		return b.String()
	}

	b.WriteString("Thanks for reaching out. Would any of these times work for you?\n\n")
	for _, slot := range slots {
		fmt.Fprintf(&b, "- %s\n", FormatSlot(slot, loc))
	}
	b.WriteString("\nLet me know which suits you best.\n")
	return b.String()
}

// FormatSlot renders a slot as "Monday, 19 Oct 09:00–09:30 (America/Los_Angeles)".
func FormatSlot(slot entity.TimeInterval, loc *time.Location) string {
	start := slot.StartsAt.In(loc)
	end := slot.EndsAt.In(loc)
	return fmt.Sprintf("%s %s–%s (%s)",
		start.Format("Monday, 2 Jan"),
		start.Format("15:04"),
		end.Format("15:04"),
		loc.String(),
	)
}

func withoutUser(people []entity.EmailPerson, userEmail string) []entity.EmailPerson {
	out := make([]entity.EmailPerson, 0, len(people))
	seen := make(map[string]bool, len(people))
	for _, p := range people {
		key := strings.ToLower(strings.TrimSpace(p.Address))
		if key == "" || p.Is(userEmail) || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
