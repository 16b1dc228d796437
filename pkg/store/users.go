package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openlaunch/launchpad-indexer/pkg/launch"
	"github.com/openlaunch/launchpad-indexer/pkg/store/dao"
)

// FindOrCreateUser returns the user row for an address, creating it when
// missing. Safe to call repeatedly for the same address within a sweep.
func (t *Tx) FindOrCreateUser(ctx context.Context, address string) (*launch.User, error) {
	d := new(dao.UserDao)
	err := t.db.NewSelect().
		Model(d).
		Where("address = ?", address).
		Scan(ctx)
	if err == nil {
		return toUser(d), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	d = &dao.UserDao{Address: address}
	_, err = t.db.NewInsert().
		Model(d).
		On("CONFLICT (address) DO UPDATE SET address = EXCLUDED.address").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return toUser(d), nil
}
