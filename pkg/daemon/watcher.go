package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rootstatus/rootstatus/pkg/events"
	"github.com/rootstatus/rootstatus/pkg/sensor"
	"github.com/rootstatus/rootstatus/pkg/wake"
)

// Watcher polls the volatile state at an adaptive cadence and raises a wake
// when it sees a battery or network transition.
type Watcher struct {
	battery sensor.Sampler[sensor.BatterySnapshot]
	network sensor.Sampler[sensor.NetworkSnapshot]
	wake    *wake.Signal
	hub     *events.EventHub
	policy  func() IntervalPolicy
	sleep   func(ctx context.Context, d time.Duration) error

	mu    sync.RWMutex
	state sensor.VolatileState
}

// NewWatcher returns a Watcher owning the given samplers. They must not be
// shared with the status loop.
func NewWatcher(
	battery sensor.Sampler[sensor.BatterySnapshot],
	network sensor.Sampler[sensor.NetworkSnapshot],
	w *wake.Signal,
	hub *events.EventHub,
	policy func() IntervalPolicy,
) *Watcher {
	if policy == nil {
		policy = DefaultIntervalPolicy
	}
	return &Watcher{
		battery: battery,
		network: network,
		wake:    w,
		hub:     hub,
		policy:  policy,
		sleep:   sleepContext,
	}
}

// State returns the state observed by the last cycle.
func (w *Watcher) State() sensor.VolatileState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Watcher) setState(s sensor.VolatileState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Run loops until ctx is done. Sensor failures are logged and retried on the
// next cycle.
func (w *Watcher) Run(ctx context.Context) error {
	logrus.Debug("watcher starts")

	prev := w.initial(ctx)
	w.setState(prev.VolatileState)

	for {
		interval := w.policy().Next(prev.VolatileState)
		logrus.WithFields(logrus.Fields{
			"interval":     interval,
			"charging":     prev.Charging,
			"onFullCharge": prev.OnFullCharge,
			"connection":   prev.Connection,
		}).Trace("watcher sleeping")

		if err := w.sleep(ctx, interval); err != nil {
			logrus.Debug("watcher stopped")
			return nil
		}

		prev = w.cycle(ctx, prev)
		w.setState(prev.VolatileState)
	}
}

// observation is the last known state plus which parts of it were actually
// read. A part never read has no baseline to compare against.
type observation struct {
	sensor.VolatileState
	batteryKnown bool
	networkKnown bool
}

// initial samples everything once. Fields that fail to read keep their zero
// values, which selects the active interval, and stay unknown until read.
func (w *Watcher) initial(ctx context.Context) observation {
	var o observation

	if charging, full, ok := w.sampleBattery(ctx); ok {
		o.Charging, o.OnFullCharge, o.batteryKnown = charging, full, true
	}
	if conn, ok := w.sampleNetwork(ctx); ok {
		o.Connection, o.networkKnown = conn, true
	}

	return o
}

// cycle compares fresh samples against prev and raises at most one wake. A
// battery transition wins and skips the network check for this cycle; the
// network is re-evaluated on the next one. The first successful read of a
// part that was unknown becomes its baseline without raising.
func (w *Watcher) cycle(ctx context.Context, prev observation) observation {
	next := prev

	if charging, full, ok := w.sampleBattery(ctx); ok {
		next.Charging, next.OnFullCharge, next.batteryKnown = charging, full, true
		if prev.batteryKnown && charging != prev.Charging && !full {
			w.raise("battery", next.VolatileState)
			return next
		}
	}

	if conn, ok := w.sampleNetwork(ctx); ok {
		next.Connection, next.networkKnown = conn, true
		if prev.networkKnown && conn != prev.Connection {
			w.raise("network", next.VolatileState)
		}
	}

	return next
}

// sampleBattery treats a machine without a battery as running on mains
// power at full charge.
func (w *Watcher) sampleBattery(ctx context.Context) (charging, full, ok bool) {
	bat, err := w.battery.Sample(ctx)
	if errors.Is(err, sensor.ErrUnavailable) {
		logrus.WithError(err).Trace("no battery, assuming mains power")
		return true, true, true
	}
	if err != nil {
		logrus.WithError(err).Warn("watcher failed to read battery")
		return false, false, false
	}
	return bat.Charging, bat.OnFullCharge, true
}

func (w *Watcher) sampleNetwork(ctx context.Context) (sensor.Connection, bool) {
	n, err := w.network.Sample(ctx)
	if err != nil {
		logrus.WithError(err).Warn("watcher failed to read network")
		return sensor.ConnectionNone, false
	}
	return n.Connection, true
}

func (w *Watcher) raise(reason string, s sensor.VolatileState) {
	buffered := w.wake.Raise()

	logrus.WithFields(logrus.Fields{
		"reason":       reason,
		"charging":     s.Charging,
		"onFullCharge": s.OnFullCharge,
		"connection":   s.Connection,
		"coalesced":    !buffered,
	}).Info("volatile state changed, waking status loop")

	w.hub.Publish(events.StateChanged, events.StateChangedEvent{
		Reason:     reason,
		Charging:   s.Charging,
		Full:       s.OnFullCharge,
		Connection: s.Connection.String(),
		Ts:         time.Now().Unix(),
	})
}
