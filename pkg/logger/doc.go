// Package logger provides a structured logging interface for twharvest.
//
// It wraps zerolog with a small Logger interface so packages can take a
// logger as a dependency and tests can substitute TestLogger or the no-op
// logger. Output is either a colored console stream or JSON lines, written
// to stderr or appended to a file.
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    File:   "/var/log/twharvest.log",
//	}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	logger.Info("twharvest starting")
//	logger.WithField("screen_name", "nasa").Info("Harvesting timeline")
//
// Components derive a child logger once and keep it:
//
//	log := logger.GetLogger().WithField("component", "arbiter")
//	logger.LogCredentialSwitch(log, "statuses", "/statuses/user_timeline", 0, 2, 900)
//
// The helpers in helpers.go fix the field names used for credential
// switches, rate-limit sleeps and harvest outcomes so they stay greppable
// across components.
package logger
