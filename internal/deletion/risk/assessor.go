// Package risk classifies a pending deletion by the blast radius of its
// dependents. The result is advisory input to deletion policy, not an
// enforcement gate by itself.
package risk

import (
	"context"
	"log/slog"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

// DependentCounter reports how many active (non-deleted) records reference a
// resource, e.g. active candidates tied to a job.
type DependentCounter interface {
	CountActiveDependents(ctx context.Context, rt domain.ResourceType, resourceID string) (int, error)
}

// Assessor maps dependent counts onto risk levels.
type Assessor struct {
	counter DependentCounter
	logger  *slog.Logger
}

func NewAssessor(counter DependentCounter, logger *slog.Logger) *Assessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assessor{counter: counter, logger: logger}
}

// Assess returns the risk level for deleting the given resource along with
// the dependent count that produced it.
//
// When the count cannot be determined the assessment must not default to the
// lowest risk: it returns medium with a logged warning and no error, erring
// toward caution without blocking the operation on an assessment-layer
// failure.
func (a *Assessor) Assess(ctx context.Context, rt domain.ResourceType, resourceID string) (models.RiskLevel, int, error) {
	count, err := a.counter.CountActiveDependents(ctx, rt, resourceID)
	if err != nil {
		a.logger.WarnContext(ctx, "dependent count unavailable, assuming medium risk",
			"resource_type", string(rt),
			"resource_id", resourceID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return models.RiskMedium, 0, nil
	}
	return models.RiskForDependents(count), count, nil
}
