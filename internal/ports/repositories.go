package ports

import (
	"context"

	"github.com/longregen/voicedemo/internal/domain/models"
)

// SessionRepository persists the audit trail of issued connections.
type SessionRepository interface {
	Record(ctx context.Context, record *models.SessionRecord) error
	ListRecent(ctx context.Context, limit int) ([]*models.SessionRecord, error)
}
