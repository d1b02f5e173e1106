package postgres

import (
	"context"
	"database/sql"

	"glpibot/internal/domain"
)

// WatchRepo implements repository.WatchRepository
type WatchRepo struct {
	db *sql.DB
}

// NewWatchRepo creates a new ticket watch repository
func NewWatchRepo(db *sql.DB) *WatchRepo {
	return &WatchRepo{db: db}
}

// GetStatus returns last seen status of a ticket and whether it was seen at all
func (r *WatchRepo) GetStatus(ctx context.Context, userID int64, ticketID int) (domain.TicketStatus, bool, error) {
	var status int
	query := `SELECT status FROM ticket_watch WHERE user_id = $1 AND ticket_id = $2`
	err := r.db.QueryRowContext(ctx, query, userID, ticketID).Scan(&status)

	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return domain.TicketStatus(status), true, nil
}

// SaveStatus records the current status of a ticket
func (r *WatchRepo) SaveStatus(ctx context.Context, userID int64, ticketID int, status domain.TicketStatus) error {
	query := `
		INSERT INTO ticket_watch (user_id, ticket_id, status, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, ticket_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, userID, ticketID, int(status))
	return err
}

// ClearUser forgets every ticket watched for the user
func (r *WatchRepo) ClearUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM ticket_watch WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
