package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/sentinel/internal/review"
	"github.com/dshills/sentinel/internal/rules"
)

// ErrUnknownProvider is returned by New for unrecognized names.
var ErrUnknownProvider = errors.New("unknown provider")

// Names lists the providers accepted by New.
var Names = []string{"local", "mock"}

// Request carries everything a provider needs for one run.
type Request struct {
	DiffText   string
	Profile    string
	RunID      string
	Catalog    *rules.Catalog
	Boundaries *rules.Boundaries
	Options    review.AnalyzeOptions
}

// Reviewer is the provider abstraction interface.
type Reviewer interface {
	Review(ctx context.Context, req Request) (review.Run, error)
	Name() string
}

// New creates a provider by name. An empty name selects local.
func New(name string) (Reviewer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "local":
		return Local{}, nil
	case "mock":
		return Mock{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
}
