// Package store is the document-store collaborator boundary. The rest
// of the system only ever sees the canonical AggregationRun shape;
// whatever legacy document layout is on the wire gets normalized here.
package store

import (
	"context"
	"errors"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

// ErrNotFound reports an absent document. Callers treat it as a valid
// outcome, not a failure.
var ErrNotFound = errors.New("store: document not found")

// DocumentStore holds aggregation runs keyed by (country, date).
// Writes replace the whole document unless merge is requested.
type DocumentStore interface {
	GetRun(ctx context.Context, country, date string) (*model.AggregationRun, error)
	SetRun(ctx context.Context, run *model.AggregationRun, merge bool) error
	Subscribe(ctx context.Context, onChange func(model.RunRef), onError func(error)) (func(), error)
}
