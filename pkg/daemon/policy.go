package daemon

import (
	"context"
	"time"

	"github.com/rootstatus/rootstatus/pkg/config"
	"github.com/rootstatus/rootstatus/pkg/sensor"
)

const (
	defaultIdleInterval   = 20 * time.Second
	defaultActiveInterval = 2 * time.Second
)

// IntervalPolicy picks how long the watcher sleeps between samples.
type IntervalPolicy struct {
	// Idle applies while on full charge with a network link, where nothing
	// volatile is expected to change soon.
	Idle time.Duration
	// Active applies in every other state.
	Active time.Duration
}

// DefaultIntervalPolicy polls every 2s, backing off to 20s when idle.
func DefaultIntervalPolicy() IntervalPolicy {
	return IntervalPolicy{Idle: defaultIdleInterval, Active: defaultActiveInterval}
}

// Next returns the sleep that follows observing s.
func (p IntervalPolicy) Next(s sensor.VolatileState) time.Duration {
	if s.OnFullCharge && s.Connection != sensor.ConnectionNone {
		return p.Idle
	}
	return p.Active
}

// policyFromConfig reads the intervals on every call so a SIGHUP reload
// takes effect on the next watcher cycle.
func policyFromConfig(conf config.Config) func() IntervalPolicy {
	return func() IntervalPolicy {
		return IntervalPolicy{Idle: conf.IdleInterval(), Active: conf.ActiveInterval()}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
