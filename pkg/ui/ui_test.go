package ui

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"twharvest/pkg/config"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetColor(false)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetColor(true)
		SetQuiet(false)
	})
	return &buf
}

func TestQuietKeepsErrors(t *testing.T) {
	buf := capture(t)
	SetQuiet(true)

	PrintInfo("label", "value")
	PrintSuccess("done")
	PrintError("failed", errors.New("boom"))

	assert.Equal(t, "failed: boom\n", buf.String())
}

func TestStatusTracker(t *testing.T) {
	st := NewStatusTracker("@bbc", 100)
	st.StartTime = time.Unix(0, 0)
	st.now = func() time.Time { return time.Unix(120, 0) }

	st.Update(3, 50)
	assert.Equal(t, "[██████████░░░░░░░░░░] 50/100", st.GetProgressBar())
	assert.InDelta(t, 25.0, st.GetRate(), 0.001)

	st.Update(4, 250)
	assert.Contains(t, st.GetProgressBar(), "250/100", "bar is clamped but the count is not")

	unbounded := NewStatusTracker("search", 0)
	assert.Empty(t, unbounded.GetProgressBar())
	assert.Contains(t, unbounded.Line(), "0 items")
}

func TestProgressDisplay(t *testing.T) {
	buf := capture(t)

	p := NewProgressDisplay(true)
	p.Start("@bbc tweets", 0)
	p.Page(1, 200)
	p.CredentialSwitch("statuses", 0, 1)
	p.Finish("done", 200, "results/bbc_tweets.csv", nil)
	p.Start("@cnn tweets", 0)
	p.Finish("aborted", 0, "", errors.New("2 consecutive errors"))
	p.Complete()

	out := buf.String()
	assert.Contains(t, out, "→ @bbc tweets")
	assert.Contains(t, out, "200 items")
	assert.Contains(t, out, "credential 0 → 1")
	assert.Contains(t, out, "results/bbc_tweets.csv")
	assert.Contains(t, out, "@cnn tweets: aborted after 0 items (2 consecutive errors)")
	assert.Contains(t, out, "1 finished, 1 failed")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "15s", FormatDuration(15*time.Second))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h30m", FormatDuration(90*time.Minute))
}

type recordingSender struct {
	titles []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	return nil
}

func TestNotifier(t *testing.T) {
	buf := capture(t)
	sender := &recordingSender{}

	n := NewNotifierWithSender(config.NotificationConfig{
		Enabled:          true,
		OnComplete:       true,
		OnRateLimit:      false,
		NotificationType: "desktop",
	}, sender)

	n.NotifyComplete("Harvest complete", "bbc: 200 tweets")
	n.NotifyRateLimit("Rate limited", "sleeping")
	n.NotifyError("Harvest failed", "cnn")

	assert.Equal(t, []string{"Harvest complete", "Harvest failed"}, sender.titles)
	assert.Contains(t, buf.String(), "Harvest complete: bbc: 200 tweets")

	disabled := NewNotifierWithSender(config.NotificationConfig{Enabled: false, OnComplete: true}, sender)
	disabled.NotifyComplete("x", "y")
	assert.Len(t, sender.titles, 2)

	var nilNotifier *Notifier
	nilNotifier.NotifyError("x", "y")
}
