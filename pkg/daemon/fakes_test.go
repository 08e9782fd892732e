package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/rootstatus/rootstatus/pkg/sensor"
)

type result[T any] struct {
	v   T
	err error
}

// scriptedSampler returns its results in order and repeats the last one.
type scriptedSampler[T any] struct {
	mu      sync.Mutex
	results []result[T]
	calls   int
}

func (s *scriptedSampler[T]) Sample(_ context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i].v, s.results[i].err
}

func constant[T any](v T) *scriptedSampler[T] {
	return &scriptedSampler[T]{results: []result[T]{{v: v}}}
}

type fakeSink struct {
	mu    sync.Mutex
	lines []string
	err   error
	shown chan string
}

func (f *fakeSink) Show(_ context.Context, line string) error {
	f.mu.Lock()
	f.lines = append(f.lines, line)
	f.mu.Unlock()
	if f.shown != nil {
		f.shown <- line
	}
	return f.err
}

func (f *fakeSink) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

type fakeWeather struct {
	w     sensor.Weather
	err   error
	calls int
}

func (f *fakeWeather) Fetch(_ context.Context) (sensor.Weather, error) {
	f.calls++
	return f.w, f.err
}

// recordingSleep records requested intervals and stops the watcher after
// max sleeps.
type recordingSleep struct {
	mu        sync.Mutex
	intervals []time.Duration
	max       int
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intervals) >= r.max {
		return context.Canceled
	}
	r.intervals = append(r.intervals, d)
	return nil
}

func (r *recordingSleep) Intervals() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.intervals...)
}

func okSensors() Sensors {
	return Sensors{
		Battery: constant(sensor.BatterySnapshot{Percent: 80}),
		CPU:     constant(sensor.CPUSnapshot{Usage: 12}),
		Memory:  constant(sensor.MemorySnapshot{Used: 4 << 30, Total: 16 << 30}),
		Disk:    constant(sensor.DiskSnapshot{Path: "/", UsedPercent: 40}),
		Network: constant(sensor.NetworkSnapshot{Connection: sensor.ConnectionWifi, Interface: "wlan0"}),
	}
}

var (
	discharging80 = sensor.BatterySnapshot{Percent: 80}
	charging80    = sensor.BatterySnapshot{Percent: 80, Charging: true}
	charged       = sensor.BatterySnapshot{Percent: 100, Charging: true, OnFullCharge: true}
	wifi          = sensor.NetworkSnapshot{Connection: sensor.ConnectionWifi, Interface: "wlan0"}
	wired         = sensor.NetworkSnapshot{Connection: sensor.ConnectionWired, Interface: "enp3s0"}
	offline       = sensor.NetworkSnapshot{}
)
