package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
)

// GuestCountRepository persists per-session guest-count snapshots, used to
// rehydrate the in-memory store after a restart.
type GuestCountRepository struct {
	pool *pgxpool.Pool
}

// NewGuestCountRepository creates a new GuestCountRepository.
func NewGuestCountRepository(pool *pgxpool.Pool) *GuestCountRepository {
	return &GuestCountRepository{pool: pool}
}

func (r *GuestCountRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Load returns the saved snapshot for a session, or nil if none exists.
func (r *GuestCountRepository) Load(ctx context.Context, sessionID string) (*guestcount.State, error) {
	var (
		state   guestcount.State
		reasons []string
	)
	err := r.db(ctx).QueryRow(ctx,
		`SELECT value, locked, locked_reasons FROM guest_count_snapshots WHERE session_id = $1`,
		sessionID,
	).Scan(&state.Value, &state.Locked, &reasons)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load guest count snapshot: %w", err)
	}
	state.LockedReasons = stringsToReasons(reasons)
	return &state, nil
}

// Save upserts the snapshot for a session.
func (r *GuestCountRepository) Save(ctx context.Context, sessionID string, state guestcount.State) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO guest_count_snapshots (session_id, value, locked, locked_reasons, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (session_id) DO UPDATE SET
		  value=EXCLUDED.value, locked=EXCLUDED.locked, locked_reasons=EXCLUDED.locked_reasons, updated_at=NOW()`,
		sessionID, state.Value, state.Locked, reasonsToStrings(state.LockedReasons),
	)
	if err != nil {
		return fmt.Errorf("save guest count snapshot: %w", err)
	}
	return nil
}
