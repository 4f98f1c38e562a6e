package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/repository"
)

// SettingsService keeps the active settings in memory, mirrored to the blob store.
type SettingsService struct {
	repo     repository.SettingsRepo
	defaults models.Settings
	activity ActivityLog

	mu      sync.RWMutex
	current models.Settings
}

func NewSettingsService(repo repository.SettingsRepo, defaults models.Settings, activity ActivityLog) *SettingsService {
	return &SettingsService{repo: repo, defaults: defaults, activity: activity}
}

// Init loads the stored blob, falling back to the environment defaults.
// A returned error explains why the stored blob was ignored; the service is
// usable either way.
func (s *SettingsService) Init(ctx context.Context) (SettingsSource, error) {
	stored, err := s.repo.Load(ctx)
	if err == nil && !stored.IsZero() {
		s.set(stored)
		return SourceStored, nil
	}
	if err != nil {
		err = fmt.Errorf("load stored settings: %w", err)
	}

	s.set(s.defaults)
	if s.defaults.IsZero() {
		return SourceEmpty, err
	}
	return SourceEnv, err
}

// Get returns a copy of the active settings.
func (s *SettingsService) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates and persists st, then makes it active.
func (s *SettingsService) Save(ctx context.Context, st models.Settings) error {
	st.Token = strings.TrimSpace(st.Token)
	st.Secret = strings.TrimSpace(st.Secret)
	if !st.Configured() {
		return ErrInvalidSettings
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.set(st)

	if s.activity != nil {
		s.activity.Record(models.ActivityInfo, "Credentials saved. Connecting...", "")
	}
	return nil
}

// Credentials returns the active signing material or ErrNotConfigured.
func (s *SettingsService) Credentials() (models.Credentials, error) {
	st := s.Get()
	if !st.Configured() {
		return models.Credentials{}, ErrNotConfigured
	}
	return st.Credentials(), nil
}

func (s *SettingsService) set(st models.Settings) {
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
}
