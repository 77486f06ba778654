package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/docon/internal/config"
	"github.com/muurk/docon/internal/control"
	"github.com/muurk/docon/internal/logging"
	"github.com/muurk/docon/internal/transport"
)

// app is the wired stack behind every device command
type app struct {
	store   *config.Store
	session *transport.Session
	svc     *control.Service
}

// openApp loads the settings and builds session and service from the
// global flags. Nothing is dialled until the first operation.
func openApp() (*app, error) {
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout value: %w", err)
	}
	if d <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("attempts must be at least 1, got %d", maxAttempts)
	}

	path := configPath
	if path == "" {
		path, err = config.GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	store := config.NewStore(path)
	session := transport.NewSession(transport.Target{})
	session.Timeout = d

	svc := control.NewService(session, store)
	svc.Executor().MaxAttempts = maxAttempts

	logging.Debug("Service ready",
		zap.String("settings", store.Path()),
		zap.String("format", store.Format()),
		zap.String("device", session.Target().String()),
		zap.Duration("timeout", d),
		zap.Int("attempts", maxAttempts),
	)

	return &app{store: store, session: session, svc: svc}, nil
}

// Close drops the device connection and flushes the log
func (a *app) Close() {
	a.session.Cleanup()
	logging.Sync()
}
