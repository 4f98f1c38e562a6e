package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"switchbot_dashboard/internal/models"

	"github.com/google/uuid"
)

const defaultActivityLimit = 200

// ActivityLogService keeps the most recent status messages in memory.
type ActivityLogService struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
	limit   int
	now     func() time.Time
}

func NewActivityLogService(limit int) *ActivityLogService {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return &ActivityLogService{limit: limit, now: time.Now}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeActivityType trims spaces and uppercases the type filter.
func normalizeActivityType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	return from, to, normalizeActivityType(f.Type), nil
}

// Record appends an entry, evicting the oldest once the limit is reached.
func (s *ActivityLogService) Record(typ, message, command string) {
	entry := models.ActivityEntry{
		ID:         uuid.NewString(),
		OccurredAt: s.now().UTC(),
		Type:       typ,
		Message:    message,
		Command:    command,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) >= s.limit {
		n := copy(s.entries, s.entries[len(s.entries)-s.limit+1:])
		s.entries = s.entries[:n]
	}
	s.entries = append(s.entries, entry)
}

// List returns matching entries in ascending time order.
func (s *ActivityLogService) List(ctx context.Context, f LogFilter) ([]models.ActivityEntry, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ActivityEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
