package providers

import (
	"context"
	"time"

	"github.com/dshills/sentinel/internal/review"
)

// Local reviews a diff with the rule engine.
type Local struct{}

func (Local) Name() string { return "local" }

func (l Local) Review(ctx context.Context, req Request) (review.Run, error) {
	if err := ctx.Err(); err != nil {
		return review.Run{}, err
	}
	started := time.Now()
	findings := review.Analyze(req.DiffText, req.Catalog, req.Boundaries, req.Options)
	return review.BuildRun(req.RunID, l.Name(), req.Profile, started, findings), nil
}
