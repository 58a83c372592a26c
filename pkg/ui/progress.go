package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of one harvest's page and item counts
type StatusTracker struct {
	Label     string
	Pages     int
	Items     int
	Limit     int
	StartTime time.Time
	now       func() time.Time
}

// NewStatusTracker creates a new status tracker. limit <= 0 means unbounded.
func NewStatusTracker(label string, limit int) *StatusTracker {
	return &StatusTracker{
		Label:     label,
		Limit:     limit,
		StartTime: time.Now(),
		now:       time.Now,
	}
}

// Update records the counts after a page
func (st *StatusTracker) Update(pages, items int) {
	st.Pages = pages
	st.Items = items
}

// GetProgressBar returns a bar against the item limit, or "" when there is
// no limit
func (st *StatusTracker) GetProgressBar() string {
	if st.Limit <= 0 {
		return ""
	}
	const width = 20
	progress := float64(st.Items) / float64(st.Limit)
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Items, st.Limit)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return st.now().Sub(st.StartTime)
}

// GetRate returns the average item rate (items per minute)
func (st *StatusTracker) GetRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Items) / elapsed
}

// Line renders the one-line status
func (st *StatusTracker) Line() string {
	parts := []string{Cyan(st.Label)}
	if bar := st.GetProgressBar(); bar != "" {
		parts = append(parts, bar)
	} else {
		parts = append(parts, fmt.Sprintf("%d items", st.Items))
	}
	parts = append(parts,
		fmt.Sprintf("%d pages", st.Pages),
		fmt.Sprintf("%.1f/min", st.GetRate()),
	)
	return strings.Join(parts, " • ")
}
