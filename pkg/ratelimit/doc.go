// Package ratelimit paces calls client-side.
//
// The quota oracle uses a Keyed limiter so that each credential spends at
// most N rate-limit-status calls per window; Wait blocks (respecting the
// context) instead of failing once the window is full.
//
//	limiter := ratelimit.NewKeyed(180, 15*time.Minute)
//	if err := limiter.For(cred.ID()).Wait(ctx); err != nil {
//		return err
//	}
package ratelimit
