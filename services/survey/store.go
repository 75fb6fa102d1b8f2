package survey

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// snapshotStore stashes one opaque blob of normalized provider data
// between the fetch step and the later render step. One row per
// provider, newer fetches overwrite older ones.
type snapshotStore struct {
	db *sql.DB
}

func (s snapshotStore) Save(ctx context.Context, provider Provider, payload []byte, fetchedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provider_snapshot (provider, fetched_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT (provider) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload
	`, string(provider), fetchedAt.Unix(), payload)
	return err
}

var errNoSnapshot = errors.New("no snapshot stored for provider")

func (s snapshotStore) Load(ctx context.Context, provider Provider) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM provider_snapshot WHERE provider = ?
	`, string(provider)).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
