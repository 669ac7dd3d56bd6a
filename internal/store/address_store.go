package store

import (
	"context"
	"fmt"
	"time"
)

// AddAddress records address as monitored. It reports false when the
// address was already present.
func (s *SQLiteStore) AddAddress(ctx context.Context, address string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO monitored_addresses (address, created_at) VALUES (?, ?)
		ON CONFLICT(address) DO NOTHING`,
		address, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("adding address %s: %w", address, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveAddress stops monitoring address. It reports false when the
// address was not monitored.
func (s *SQLiteStore) RemoveAddress(ctx context.Context, address string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM monitored_addresses WHERE address = ?", address)
	if err != nil {
		return false, fmt.Errorf("removing address %s: %w", address, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

// ListAddresses returns every monitored address in insertion order.
func (s *SQLiteStore) ListAddresses(ctx context.Context) ([]string, error) {
	var addrs []string
	err := s.db.SelectContext(ctx, &addrs,
		"SELECT address FROM monitored_addresses ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying monitored addresses: %w", err)
	}
	return addrs, nil
}
