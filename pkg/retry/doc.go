// Package retry re-runs transport calls that fail with retryable errors.
//
// It is used only below the fetch loop: a request that keeps failing after
// MaxAttempts surfaces its last error, which the loop then charges to its
// error budget.
//
//	err := retry.Do(ctx, func(ctx context.Context) error {
//		return client.get(ctx, path, params, &out)
//	}, retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.ConstantBackoff{Delay: 5 * time.Second},
//		RetryIf:     func(err error) bool { return errors.IsRetryable(err, statuses) },
//	})
package retry
