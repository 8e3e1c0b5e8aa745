package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// credentialRepo implements CredentialRepo on a single-row table.
type credentialRepo struct {
	db *sql.DB
}

func (r *credentialRepo) Save(ctx context.Context, c Credential) error {
	savedAt := c.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO credentials (id, token, user_name, user_email, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			user_name = excluded.user_name,
			user_email = excluded.user_email,
			saved_at = excluded.saved_at`,
		c.Token, c.UserName, c.UserEmail, savedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (r *credentialRepo) Load(ctx context.Context) (*Credential, error) {
	var c Credential
	var savedAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_name, user_email, saved_at FROM credentials WHERE id = 1`,
	).Scan(&c.Token, &c.UserName, &c.UserEmail, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	c.SavedAt = time.UnixMilli(savedAt)
	return &c, nil
}

func (r *credentialRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = 1`); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
