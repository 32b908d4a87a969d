package services

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// PushResult is the outcome of one push operation.
type PushResult struct {
	Operation domain.SyncOperation
	// Group is the group as returned by the service, nil on failure.
	Group *domain.ScheduleGroup
	Err   error
}

// PushOperations starts every operation concurrently and waits for all of
// them. The batch is not atomic: failures are aggregated into the returned
// error and earlier successes are kept.
func PushOperations(
	ctx context.Context,
	writer driven.ScheduleGroupWriter,
	ops []domain.SyncOperation,
) ([]PushResult, error) {
	results := make([]PushResult, len(ops))

	var g multierror.Group
	for i, op := range ops {
		g.Go(func() error {
			group, err := pushOne(ctx, writer, op)
			results[i] = PushResult{Operation: op, Group: group, Err: err}
			if err != nil {
				return fmt.Errorf("%s schedule group %q: %w", op.Kind, op.Group.DisplayName, err)
			}
			return nil
		})
	}

	if merr := g.Wait(); merr != nil && merr.Len() > 0 {
		return results, merr
	}
	return results, nil
}

func pushOne(ctx context.Context, writer driven.ScheduleGroupWriter, op domain.SyncOperation) (*domain.ScheduleGroup, error) {
	logger.Debug("push: %s group %q with %d users", op.Kind, op.Group.DisplayName, len(op.Group.UserIDs))
	switch op.Kind {
	case domain.OperationCreate:
		return writer.CreateScheduleGroup(ctx, op.TeamID, op.Group)
	case domain.OperationUpdate:
		if op.Group.ID == "" {
			return nil, fmt.Errorf("%w: update without group id", domain.ErrInvalidInput)
		}
		return writer.ReplaceScheduleGroup(ctx, op.TeamID, op.Group)
	default:
		return nil, fmt.Errorf("%w: unknown operation kind %q", domain.ErrInvalidInput, op.Kind)
	}
}
