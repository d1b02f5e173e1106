package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"glpibot/internal/domain"
)

// StateRepo implements repository.StateStore
type StateRepo struct {
	db *sql.DB
}

// NewStateRepo creates a new session repository
func NewStateRepo(db *sql.DB) *StateRepo {
	return &StateRepo{db: db}
}

// Get returns user's session, anonymous if the user has none
func (r *StateRepo) Get(ctx context.Context, userID int64) (*domain.Session, error) {
	s := domain.Session{UserID: userID}
	var state string
	query := `
		SELECT state, login, token, draft_title, draft_description, updated_at
		FROM sessions
		WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&state, &s.Login, &s.Token, &s.Draft.Title, &s.Draft.Description, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.NewSession(userID), nil
	}
	if err != nil {
		return nil, err
	}

	s.State = domain.State(state)
	if !s.State.Valid() {
		return nil, fmt.Errorf("unknown state %q stored for user %d", state, userID)
	}

	return &s, nil
}

// Set stores user's session, replacing any previous one
func (r *StateRepo) Set(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (user_id, state, login, token, draft_title, draft_description, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			state = EXCLUDED.state,
			login = EXCLUDED.login,
			token = EXCLUDED.token,
			draft_title = EXCLUDED.draft_title,
			draft_description = EXCLUDED.draft_description,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		s.UserID, string(s.State), s.Login, s.Token, s.Draft.Title, s.Draft.Description,
	)
	return err
}

// Clear removes user's session
func (r *StateRepo) Clear(ctx context.Context, userID int64) error {
	query := `DELETE FROM sessions WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// ListAuthenticated returns sessions that hold a backend token
func (r *StateRepo) ListAuthenticated(ctx context.Context) ([]*domain.Session, error) {
	query := `
		SELECT user_id, state, login, token, draft_title, draft_description, updated_at
		FROM sessions
		WHERE token <> ''
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var s domain.Session
		var state string
		if err := rows.Scan(&s.UserID, &state, &s.Login, &s.Token, &s.Draft.Title, &s.Draft.Description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.State = domain.State(state)
		sessions = append(sessions, &s)
	}

	return sessions, rows.Err()
}
