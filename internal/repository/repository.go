package repository

import (
	"context"
	"database/sql"

	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/repository/db"
)

// SettingsRepo persists the single credential blob.
type SettingsRepo interface {
	Save(ctx context.Context, s models.Settings) error
	Load(ctx context.Context) (models.Settings, error)
}

type Repository struct {
	SettingsRepo SettingsRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SettingsRepo: NewSettingsSQLite(db),
	}
}

// InitDB opens the SQLite store and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
