package events

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of EventsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data []Event
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Append stores one event.
func (r *MemoryRepo) Append(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ev.Metadata) > 0 {
		meta := make(map[string]any, len(ev.Metadata))
		for k, v := range ev.Metadata {
			meta[k] = v
		}
		ev.Metadata = meta
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, ev)
	return nil
}

// List returns events matching the filter, newest first, honoring
// limit/offset.
func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > exportRowCap {
		limit = exportRowCap
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	matched := r.matching(f)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []Event{}, nil
	}
	end := len(matched)
	if offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

// Count returns how many events match the filter.
func (r *MemoryRepo) Count(ctx context.Context, f Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(r.matching(f)), nil
}

func (r *MemoryRepo) matching(f Filter) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0, len(r.data))
	for _, ev := range r.data {
		if f.UserID != "" && (ev.UserID == nil || *ev.UserID != f.UserID) {
			continue
		}
		if f.EventType != "" && ev.EventType != f.EventType {
			continue
		}
		if f.Description != "" && !strings.Contains(ev.Description, f.Description) {
			continue
		}
		if f.Start != nil && ev.CreatedAt.Before(*f.Start) {
			continue
		}
		if f.End != nil && ev.CreatedAt.After(*f.End) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

var _ EventsRepo = (*MemoryRepo)(nil)
