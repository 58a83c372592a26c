package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay prints harvest progress on a single refreshing line
type ProgressDisplay struct {
	mu      sync.Mutex
	tracker *StatusTracker
	isDebug bool
	started time.Time
	done    int
	failed  int
}

// NewProgressDisplay creates a new progress display. In debug mode every
// page gets its own line so it interleaves cleanly with log output.
func NewProgressDisplay(debug bool) *ProgressDisplay {
	return &ProgressDisplay{isDebug: debug, started: time.Now()}
}

// Start begins tracking a new harvest target
func (p *ProgressDisplay) Start(label string, limit int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracker = NewStatusTracker(label, limit)
	Printf("%s %s\n", Magenta("→"), label)
}

// Page records a fetched page
func (p *ProgressDisplay) Page(pages, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tracker == nil {
		return
	}
	p.tracker.Update(pages, total)
	if p.isDebug {
		Printf("%s %s\n", Dim("·"), p.tracker.Line())
		return
	}
	Printf("\r%s\r%s", strings.Repeat(" ", 100), p.tracker.Line())
}

// CredentialSwitch shows that another credential became active
func (p *ProgressDisplay) CredentialSwitch(resource string, from, to int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	Printf("\n%s %s: credential %d → %d\n", Cyan("⇄"), resource, from, to)
}

// RateLimitWarning shows that every credential is exhausted
func (p *ProgressDisplay) RateLimitWarning(waitTime time.Duration, resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	Printf("\n%s All credentials exhausted. Waiting %s (until %s)...\n",
		Yellow("⚠"),
		FormatDuration(waitTime),
		resetAt.Local().Format("15:04:05"),
	)
}

// Finish reports the outcome of the current target
func (p *ProgressDisplay) Finish(state string, items int, path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := ""
	elapsed := time.Duration(0)
	if p.tracker != nil {
		label = p.tracker.Label
		elapsed = p.tracker.GetElapsedTime()
	}

	switch {
	case err != nil || state == "aborted":
		p.failed++
		msg := fmt.Sprintf("%s %s: %s after %d items", Red("✗"), label, state, items)
		if err != nil {
			msg += fmt.Sprintf(" (%v)", err)
		}
		printf(true, "\n%s\n", msg)
	default:
		p.done++
		Printf("\n%s %s: %d items in %s (%s)\n", Green("✓"), label, items, FormatDuration(elapsed), state)
	}
	if path != "" {
		Printf("  %s %s\n", Dim("•"), path)
	}
	p.tracker = nil
}

// Complete prints the run summary
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	Printf("\n%s %d finished, %d failed in %s\n",
		Bold("Summary:"),
		p.done,
		p.failed,
		FormatDuration(time.Since(p.started)),
	)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
