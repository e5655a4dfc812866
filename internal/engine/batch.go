package engine

import (
	"context"

	"alcyxob/fitness-content/internal/domain"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// AnalyzeCatalog computes matrix rows for many exercises concurrently. Rows keep
// the order of exercises. Only context cancellation produces an error.
func AnalyzeCatalog(ctx context.Context, exercises []domain.Exercise, concurrency int) ([]domain.ContentMatrixRow, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	rows := make([]domain.ContentMatrixRow, len(exercises))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range exercises {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = AnalyzeExercise(&exercises[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// CatalogSummary aggregates matrix rows for dashboards.
type CatalogSummary struct {
	Exercises          int `json:"exercises"`
	ReadyToPublish     int `json:"readyToPublish"`
	CriticalGaps       int `json:"criticalGaps"`
	WorkflowGaps       int `json:"workflowGaps"`
	UnmappedMethods    int `json:"unmappedMethods"`
	MissingDescription int `json:"missingDescription"`
}

func Summarize(rows []domain.ContentMatrixRow) CatalogSummary {
	s := CatalogSummary{Exercises: len(rows)}
	for _, r := range rows {
		if r.ReadyToPublish() {
			s.ReadyToPublish++
		}
		s.CriticalGaps += r.CriticalGapCount
		s.WorkflowGaps += r.WorkflowGapCount
		s.UnmappedMethods += len(r.UnmappedMethods)
		if r.DescriptionStatus == domain.CompletenessMissing {
			s.MissingDescription++
		}
	}
	return s
}
