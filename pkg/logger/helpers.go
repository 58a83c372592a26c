package logger

import "time"

// LogCredentialSwitch records the arbiter moving to another credential
func LogCredentialSwitch(l Logger, resource, endpoint string, from, to, remaining int) {
	l.WithFields(map[string]interface{}{
		"resource":  resource,
		"endpoint":  endpoint,
		"from":      from,
		"to":        to,
		"remaining": remaining,
	}).Info("Switched credential")
}

// LogRateLimitSleep records a blocking wait for a quota window to reset
func LogRateLimitSleep(l Logger, resource, endpoint string, wait time.Duration, resetAt time.Time) {
	l.WithFields(map[string]interface{}{
		"resource": resource,
		"endpoint": endpoint,
		"sleep":    wait,
		"reset_at": resetAt,
		"action":   "rate_limited",
	}).Warn("All credentials exhausted, sleeping until reset")
}

// LogHarvestOutcome logs the end state of one harvest
func LogHarvestOutcome(l Logger, target, state string, pages, items int, err error) {
	entry := l.WithFields(map[string]interface{}{
		"target": target,
		"state":  state,
		"pages":  pages,
		"items":  items,
	})
	switch {
	case err != nil:
		entry.WithError(err).Warn("Harvest stopped early")
	case state == "done":
		entry.Info("Harvest completed")
	default:
		entry.Warn("Harvest stopped early")
	}
}

// NewNopLogger creates a no-operation logger
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) Debug(string)                             {}
func (n nopLogger) Info(string)                              {}
func (n nopLogger) Warn(string)                              {}
func (n nopLogger) Error(string)                             {}
func (n nopLogger) Fatal(string)                             {}
func (n nopLogger) WithField(string, interface{}) Logger     { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger { return n }
func (n nopLogger) WithError(error) Logger                   { return n }
