package store

import (
	"context"
	"time"

	"github.com/cognicore/noweats/pkg/noweats/counts"
	"github.com/cognicore/noweats/pkg/noweats/langmodel"
)

// DefaultModel is the name under which the trained language model is kept
// when callers do not pick one.
const DefaultModel = "default"

// Store persists pipeline runs and trained language models.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	LatestRun(ctx context.Context) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// Language models
	SaveModel(ctx context.Context, name string, f langmodel.Features) error
	LoadModel(ctx context.Context, name string) (langmodel.Features, error)
}

// Run is the stored outcome of one pipeline pass. IDs are ULIDs, so
// lexical order is creation order.
type Run struct {
	ID        string
	CreatedAt time.Time
	Stats     RunStats
	Counts    counts.Counts // raw extracted phrase counts
	Merged    counts.Counts // counts after fuzzy merging
	Ranking   []string
}

// RunStats records how many items survived each stage.
type RunStats struct {
	Messages  int `json:"messages"`
	Accepted  int `json:"accepted"`
	Unique    int `json:"unique"`
	Kept      int `json:"kept"`
	Sentences int `json:"sentences"`
	Phrases   int `json:"phrases"`
}

// RunSummary is a run without its tables.
type RunSummary struct {
	ID        string
	CreatedAt time.Time
	Stats     RunStats
}
