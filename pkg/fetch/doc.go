// Package fetch drives a paginated upstream call to completion while keeping
// the credential pool pointed at one with quota left.
//
// A Loop pulls pages from a PageSource until the source is exhausted, an item
// limit is reached, the error budget runs out or the context is cancelled.
// Every call to Next is classified into a step and the loop reacts to the
// step, so control never unwinds through panics or sentinel values.
//
//	loop := &fetch.Loop[twitter.Tweet]{
//		Source:   src,
//		Capacity: arbiter,
//		Target:   quota.TimelineTarget,
//		Limit:    1000,
//	}
//	res, err := loop.Run(ctx)
//
// Aborted and drained runs are reported through Result.State. Run only
// returns an error when capacity arbitration itself fails.
package fetch
