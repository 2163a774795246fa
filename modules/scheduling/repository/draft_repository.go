package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meeting-slot-api/core/database"
	"meeting-slot-api/core/logger"
	"meeting-slot-api/modules/scheduling/entity"

	"github.com/google/uuid"
)

const defaultDraftLimit = 50

type recipients struct {
	To  []entity.EmailPerson `json:"to"`
	Cc  []entity.EmailPerson `json:"cc"`
	Bcc []entity.EmailPerson `json:"bcc"`
}

type draftRow struct {
	ID         uuid.UUID `db:"id"`
	UserEmail  string    `db:"user_email"`
	ThreadID   string    `db:"thread_id"`
	Recipients []byte    `db:"recipients"`
	Subject    string    `db:"subject"`
	DraftBody  string    `db:"draft_body"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r draftRow) toEntity() (entity.DraftEmailMessage, error) {
	var rc recipients
	if err := json.Unmarshal(r.Recipients, &rc); err != nil {
		return entity.DraftEmailMessage{}, fmt.Errorf("decode recipients of draft %s: %w", r.ID, err)
	}
	return entity.DraftEmailMessage{
		ID:        r.ID,
		UserEmail: r.UserEmail,
		ThreadID:  r.ThreadID,
		To:        rc.To,
		Cc:        rc.Cc,
		Bcc:       rc.Bcc,
		Subject:   r.Subject,
		DraftBody: r.DraftBody,
		CreatedAt: r.CreatedAt,
	}, nil
}

// DraftRepository stores generated reply drafts.
type DraftRepository struct {
	DB database.IDatabase
}

func NewDraftRepository(db database.IDatabase) *DraftRepository {
	return &DraftRepository{DB: db}
}

type DraftRepositoryInterface interface {
	SaveDraft(ctx context.Context, draft entity.DraftEmailMessage) error
	ListDrafts(ctx context.Context, userEmail string, limit int) ([]entity.DraftEmailMessage, error)
}

func (r *DraftRepository) SaveDraft(ctx context.Context, draft entity.DraftEmailMessage) error {
	rc, err := json.Marshal(recipients{To: draft.To, Cc: draft.Cc, Bcc: draft.Bcc})
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}

	query := `
		INSERT INTO reply_drafts (id, user_email, thread_id, recipients, subject, draft_body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	err = r.DB.ExecContext(ctx, query,
		draft.ID, normaliseEmail(draft.UserEmail), draft.ThreadID, string(rc), draft.Subject, draft.DraftBody, draft.CreatedAt)
	if err != nil {
		logger.Error("DraftRepository:SaveDraft", "error", err, "draft_id", draft.ID)
		return err
	}
	return nil
}

// ListDrafts returns the newest drafts first.
func (r *DraftRepository) ListDrafts(ctx context.Context, userEmail string, limit int) ([]entity.DraftEmailMessage, error) {
	if limit <= 0 {
		limit = defaultDraftLimit
	}
	query := `
		SELECT id, user_email, thread_id, recipients, subject, draft_body, created_at
		FROM reply_drafts WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var rows []draftRow
	if err := r.DB.SelectContext(ctx, &rows, query, normaliseEmail(userEmail), limit); err != nil {
		logger.Error("DraftRepository:ListDrafts", "error", err)
		return nil, err
	}

	drafts := make([]entity.DraftEmailMessage, 0, len(rows))
	for _, row := range rows {
		d, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
