package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type settingsRepo struct {
	db *sql.DB
}

func (r *settingsRepo) Get(ctx context.Context, key string) (string, error) {
	query, args := builder().
		Select("value").
		From(entsql.Table(tableSettings)).
		Where(entsql.EQ("key", key)).
		Query()

	var v string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return v, nil
}

func (r *settingsRepo) Set(ctx context.Context, key, value string) error {
	query, args := builder().
		Insert(tableSettings).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (r *settingsRepo) Delete(ctx context.Context, key string) error {
	query, args := builder().
		Delete(tableSettings).
		Where(entsql.EQ("key", key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// Credentials is the persisted login state.
type Credentials struct {
	Token string
	User  json.RawMessage // backend user object, opaque to the store
}

// SaveCredentials stores the token and user after a login.
func SaveCredentials(ctx context.Context, repo SettingsRepo, c Credentials) error {
	if err := repo.Set(ctx, KeyToken, c.Token); err != nil {
		return err
	}
	if len(c.User) == 0 {
		return repo.Delete(ctx, KeyUser)
	}
	return repo.Set(ctx, KeyUser, string(c.User))
}

// LoadCredentials returns the stored login state. A missing token yields
// ErrNotFound.
func LoadCredentials(ctx context.Context, repo SettingsRepo) (Credentials, error) {
	tok, err := repo.Get(ctx, KeyToken)
	if err != nil {
		return Credentials{}, err
	}
	var c Credentials
	c.Token = tok

	user, err := repo.Get(ctx, KeyUser)
	switch {
	case err == nil:
		c.User = json.RawMessage(user)
	case !errors.Is(err, ErrNotFound):
		return Credentials{}, err
	}
	return c, nil
}

// ClearCredentials removes the stored token and user.
func ClearCredentials(ctx context.Context, repo SettingsRepo) error {
	if err := repo.Delete(ctx, KeyToken); err != nil {
		return err
	}
	return repo.Delete(ctx, KeyUser)
}
