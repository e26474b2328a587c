package engine

import (
	"context"
	"errors"

	"github.com/allejo/LeagueOverseer/internal/adapters/repository"
	"github.com/allejo/LeagueOverseer/internal/domain/rating"
	"github.com/allejo/LeagueOverseer/internal/domain/validate"
	"github.com/allejo/LeagueOverseer/pkg/metrics"
)

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// recordFailure counts a failed engine operation under a coarse kind
// label so dashboards can split rejections from infrastructure trouble.
func recordFailure(op string, err error) {
	metrics.RecordEngineFailure(op + "_" + failureKind(err))
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, repository.ErrLockUnavailable):
		return "lock_unavailable"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, rating.ErrUnsupportedDuration):
		return "bad_duration"
	case errors.Is(err, rating.ErrInvalidInput),
		errors.Is(err, validate.ErrSameTeam),
		errors.Is(err, validate.ErrUnresolvedTeam):
		return "invalid_report"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "store"
	}
}
