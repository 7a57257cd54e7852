package events

import (
	"context"
	"time"
)

// Listing bounds. History pages are capped at maxHistoryLimit rows; exports
// read up to exportRowCap rows in one pass.
const (
	defaultListLimit = 100
	maxHistoryLimit  = 1000
	exportRowCap     = 10000
)

// Filter narrows event queries. Zero values mean no constraint; set fields
// apply together.
type Filter struct {
	UserID      string
	EventType   string
	Description string
	Start       *time.Time
	End         *time.Time
	Limit       int
	Offset      int
}

// EventsRepo defines persistence for the event log.
type EventsRepo interface {
	Append(ctx context.Context, ev Event) error
	List(ctx context.Context, f Filter) ([]Event, error)
	Count(ctx context.Context, f Filter) (int, error)
}
