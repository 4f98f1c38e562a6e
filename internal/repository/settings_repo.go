package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"switchbot_dashboard/internal/models"
)

// ErrMalformedSettings is returned by Load when the stored blob is not valid JSON.
var ErrMalformedSettings = errors.New("malformed settings blob")

type SettingsSQLite struct {
	db *sql.DB
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite {
	return &SettingsSQLite{db: db}
}

const (
	// CredentialsKey is the kv row holding the serialized settings.
	CredentialsKey = "sb_credentials"

	upsertKVSQL = `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectKVSQL = `SELECT value FROM kv WHERE key=?`
)

// Save serializes s and upserts it under CredentialsKey.
func (r *SettingsSQLite) Save(ctx context.Context, s models.Settings) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, upsertKVSQL, CredentialsKey, string(blob), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Load returns the stored settings, a zero value if none were saved, or
// ErrMalformedSettings if the blob cannot be decoded.
func (r *SettingsSQLite) Load(ctx context.Context) (models.Settings, error) {
	var blob string
	if err := r.db.QueryRowContext(ctx, selectKVSQL, CredentialsKey).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Settings{}, nil // nothing saved yet
		}
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	var s models.Settings
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrMalformedSettings, err)
	}
	return s, nil
}
