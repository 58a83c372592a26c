package fetch

import (
	"context"
	"errors"
)

// ErrExhausted is returned by PageSource.Next after the last page.
var ErrExhausted = errors.New("page source exhausted")

// UnknownRemaining marks a page whose response carried no quota header.
const UnknownRemaining = -1

// Page is one batch of items plus the calls left on the active credential.
type Page[T any] struct {
	Items     []T
	Remaining int
}

// PageSource is a lazy, finite sequence of pages. Implementations advance
// only on success: calling Next again after an error re-requests the same
// page.
type PageSource[T any] interface {
	Next(ctx context.Context) (Page[T], error)
}

// SourceFunc adapts a function to PageSource.
type SourceFunc[T any] func(ctx context.Context) (Page[T], error)

// Next calls f(ctx).
func (f SourceFunc[T]) Next(ctx context.Context) (Page[T], error) {
	return f(ctx)
}
