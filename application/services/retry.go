package services

import (
	"context"
	"errors"

	"order_fulfillment/domain/shared"
)

// maxVersionRetries bounds optimistic-concurrency retry loops. Each attempt
// reloads the aggregate and re-runs its preconditions, so a loser of a
// version race re-decides on fresh state rather than blindly re-applying.
const maxVersionRetries = 5

// withVersionRetry runs fn until it returns anything other than a version
// conflict, up to maxVersionRetries attempts.
func withVersionRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		err = fn(ctx)
		if !errors.Is(err, shared.ErrConcurrentModification) {
			return err
		}
	}
	return err
}
