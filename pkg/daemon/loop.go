package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rootstatus/rootstatus/pkg/display"
	"github.com/rootstatus/rootstatus/pkg/events"
	"github.com/rootstatus/rootstatus/pkg/format"
	"github.com/rootstatus/rootstatus/pkg/sensor"
	"github.com/rootstatus/rootstatus/pkg/wake"
)

const (
	weatherTimeout = 15 * time.Second
	// renderGapThreshold is how late a render has to be before it is
	// reported, typically after a suspend.
	renderGapThreshold = 2 * time.Minute
)

// Sensors are the samplers owned by the status loop.
type Sensors struct {
	Battery sensor.Sampler[sensor.BatterySnapshot]
	CPU     sensor.Sampler[sensor.CPUSnapshot]
	Memory  sensor.Sampler[sensor.MemorySnapshot]
	Disk    sensor.Sampler[sensor.DiskSnapshot]
	Network sensor.Sampler[sensor.NetworkSnapshot]
	// Weather is fetched once. nil leaves weather off the line.
	Weather sensor.WeatherFetcher
}

// Loop renders the status line at the top of every minute, or earlier when
// the wake signal fires.
type Loop struct {
	sensors   Sensors
	formatter *format.Formatter
	sink      display.Sink
	wake      *wake.Signal
	hub       *events.EventHub
	recorder  *TimeSeriesRecorder

	now   func() time.Time
	after func(d time.Duration) <-chan time.Time

	weather sensor.Reading[sensor.Weather]

	mu       sync.RWMutex
	prev     format.Status
	lastLine string
}

// NewLoop returns a Loop. sink may be nil when the loop is only used to
// render.
func NewLoop(sensors Sensors, formatter *format.Formatter, sink display.Sink, w *wake.Signal, hub *events.EventHub) *Loop {
	if formatter == nil {
		formatter = format.New("")
	}
	if w == nil {
		w = wake.New()
	}
	return &Loop{
		sensors:   sensors,
		formatter: formatter,
		sink:      sink,
		wake:      w,
		hub:       hub,
		recorder:  NewTimeSeriesRecorder(60),
		now:       time.Now,
		after:     time.After,
	}
}

// UntilNextMinute is the whole number of seconds, 1 to 60, from t to the next
// minute boundary.
func UntilNextMinute(t time.Time) time.Duration {
	return time.Duration(60-t.Second()) * time.Second
}

// Run renders forever. It returns nil once ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	logrus.Debug("status loop starts")

	l.FetchWeather(ctx)

	for {
		l.Tick(ctx)

		remaining := UntilNextMinute(l.now())
		logrus.WithField("remaining", remaining).Trace("status loop waiting")

		if err := l.waitNext(ctx, remaining); err != nil {
			logrus.Debug("status loop stopped")
			return nil
		}
	}
}

// waitNext returns when d elapses or a wake arrives, whichever comes first.
// The caller cannot tell which one it was.
func (l *Loop) waitNext(ctx context.Context, d time.Duration) error {
	select {
	case <-l.after(d):
		return nil
	case <-l.wake.C():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchWeather fetches the weather once. Later calls refetch.
func (l *Loop) FetchWeather(ctx context.Context) {
	if l.sensors.Weather == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, weatherTimeout)
	defer cancel()

	w, err := l.sensors.Weather.Fetch(ctx)
	l.weather = sensor.NewReading(w, err)
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch weather")
		return
	}
	logrus.WithFields(logrus.Fields{
		"glyph":       w.Glyph,
		"temperature": w.Temperature,
	}).Info("weather fetched")
}

// Render samples every sensor and formats one line without displaying it.
// A transient failure reuses the previous good reading of that sensor.
func (l *Loop) Render(ctx context.Context) string {
	s := format.Status{
		Time:    l.now(),
		Battery: sensor.Read(ctx, l.sensors.Battery).Or(l.prev.Battery),
		CPU:     sensor.Read(ctx, l.sensors.CPU).Or(l.prev.CPU),
		Memory:  sensor.Read(ctx, l.sensors.Memory).Or(l.prev.Memory),
		Disk:    sensor.Read(ctx, l.sensors.Disk).Or(l.prev.Disk),
		Network: sensor.Read(ctx, l.sensors.Network).Or(l.prev.Network),
		Weather: l.weather,
	}
	logFailedReadings(s)

	l.mu.Lock()
	l.prev = s
	l.mu.Unlock()

	return l.formatter.Line(s)
}

// Tick renders, displays and records one line.
func (l *Loop) Tick(ctx context.Context) string {
	now := l.now()
	if last := l.recorder.GetLastRecord(); !last.IsZero() && now.Sub(last) > renderGapThreshold {
		logrus.WithFields(logrus.Fields{
			"lastRender": last.Format(time.RFC3339),
			"gap":        now.Sub(last).Round(time.Second).String(),
		}).Info("render gap detected, system was probably suspended")
	}

	line := l.Render(ctx)

	displayOK := true
	if l.sink != nil {
		if err := l.sink.Show(ctx, line); err != nil {
			displayOK = false
			logrus.WithError(err).Error("failed to display status line")
		}
	}

	l.mu.Lock()
	changed := line != l.lastLine
	l.lastLine = line
	l.mu.Unlock()

	entry := logrus.WithFields(logrus.Fields{"line": line, "displayOk": displayOK})
	if changed {
		entry.Debug("status line rendered")
	} else {
		entry.Trace("status line rendered")
	}

	l.recorder.AddRecord(now)
	l.hub.Publish(events.LineRendered, events.LineRenderedEvent{
		Line:      line,
		DisplayOK: displayOK,
		Ts:        now.Unix(),
	})

	return line
}

// LastLine returns the most recently displayed line.
func (l *Loop) LastLine() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastLine
}

// LastStatus returns the readings behind the most recent render.
func (l *Loop) LastStatus() format.Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.prev
}

// Recorder exposes the render history.
func (l *Loop) Recorder() *TimeSeriesRecorder {
	return l.recorder
}

func logFailedReadings(s format.Status) {
	failures := map[string]error{
		"battery": s.Battery.Err,
		"cpu":     s.CPU.Err,
		"memory":  s.Memory.Err,
		"disk":    s.Disk.Err,
		"network": s.Network.Err,
	}
	for name, err := range failures {
		if err != nil {
			logrus.WithError(err).WithField("sensor", name).Debug("sensor reading failed")
		}
	}
}
