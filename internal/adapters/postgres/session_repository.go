package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/longregen/voicedemo/internal/domain/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var sessionSchema = []string{
	`CREATE TABLE IF NOT EXISTS connection_sessions (
		id                   TEXT PRIMARY KEY,
		demo                 TEXT NOT NULL,
		room_name            TEXT NOT NULL,
		participant_identity TEXT NOT NULL,
		participant_name     TEXT NOT NULL,
		agent_name           TEXT,
		dispatch_status      TEXT NOT NULL DEFAULT 'none',
		dispatch_error       TEXT,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_connection_sessions_created_at ON connection_sessions (created_at DESC)`,
}

// SessionRepository is the audit ledger of issued connections.
type SessionRepository struct {
	BaseRepository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		BaseRepository: NewBaseRepository(pool),
	}
}

// EnsureSchema creates the ledger table and its index if they do not exist.
func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	return r.transactions().WithTransaction(ctx, func(txCtx context.Context) error {
		for _, stmt := range sessionSchema {
			if _, err := r.conn(txCtx).Exec(txCtx, stmt); err != nil {
				return fmt.Errorf("failed to apply session schema: %w", err)
			}
		}
		return nil
	})
}

func (r *SessionRepository) Record(ctx context.Context, record *models.SessionRecord) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO connection_sessions (
			id, demo, room_name, participant_identity, participant_name,
			agent_name, dispatch_status, dispatch_error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.conn(ctx).Exec(ctx, query,
		record.ID,
		record.Demo,
		record.RoomName,
		record.ParticipantIdentity,
		record.ParticipantName,
		nullString(record.AgentName),
		string(record.DispatchStatus),
		nullString(record.DispatchError),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record session %s: %w", record.ID, err)
	}
	return nil
}

// ListRecent returns the newest records first. A non-positive limit uses the default.
func (r *SessionRepository) ListRecent(ctx context.Context, limit int) ([]*models.SessionRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
		SELECT id, demo, room_name, participant_identity, participant_name,
		       agent_name, dispatch_status, dispatch_error, created_at
		FROM connection_sessions
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	records := make([]*models.SessionRecord, 0)
	for rows.Next() {
		var (
			record        models.SessionRecord
			agentName     sql.NullString
			dispatchError sql.NullString
			status        string
		)
		if err := rows.Scan(
			&record.ID,
			&record.Demo,
			&record.RoomName,
			&record.ParticipantIdentity,
			&record.ParticipantName,
			&agentName,
			&status,
			&dispatchError,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		record.AgentName = getString(agentName)
		record.DispatchError = getString(dispatchError)
		record.DispatchStatus = models.DispatchStatus(status)
		records = append(records, &record)
	}

	return records, rows.Err()
}
