// Package sensor reads the machine state shown on the status line.
//
// Every reader implements Sampler and returns a typed snapshot. Readers hold
// no shared state, so the status loop and the change watcher each construct
// their own.
package sensor

import (
	"context"
	"errors"
)

// ErrUnavailable marks a sensor that does not exist on this machine, as
// opposed to one that failed to read this time.
var ErrUnavailable = errors.New("sensor unavailable")

// Sampler samples one sensor now.
type Sampler[T any] interface {
	Sample(ctx context.Context) (T, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc[T any] func(ctx context.Context) (T, error)

// Sample calls f.
func (f SamplerFunc[T]) Sample(ctx context.Context) (T, error) {
	return f(ctx)
}

// Connection is the kind of network link the machine is using.
type Connection int

const (
	ConnectionNone Connection = iota
	ConnectionWired
	ConnectionWifi
)

func (c Connection) String() string {
	switch c {
	case ConnectionWired:
		return "wired"
	case ConnectionWifi:
		return "wifi"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Connection) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// VolatileState is the subset of state likely to change between renders.
type VolatileState struct {
	Charging     bool       `json:"charging"`
	OnFullCharge bool       `json:"onFullCharge"`
	Connection   Connection `json:"connection"`
}

// BatterySnapshot is one battery reading.
type BatterySnapshot struct {
	// Percent is the state of charge, 0-100.
	Percent float64 `json:"percent"`
	// Charging is true whenever the battery is not discharging.
	Charging     bool `json:"charging"`
	OnFullCharge bool `json:"onFullCharge"`
}

// CPUSnapshot is one CPU reading.
type CPUSnapshot struct {
	// Usage is the average utilisation across all cores, 0-100.
	Usage float64 `json:"usage"`
	// Temperature in degrees Celsius, valid only if HasTemperature.
	Temperature    float64 `json:"temperature"`
	HasTemperature bool    `json:"hasTemperature"`
}

// MemorySnapshot is one memory reading, in bytes.
type MemorySnapshot struct {
	Used  uint64 `json:"used"`
	Total uint64 `json:"total"`
}

// DiskSnapshot is the usage of one mount point.
type DiskSnapshot struct {
	Path        string  `json:"path"`
	UsedPercent float64 `json:"usedPercent"`
}

// NetworkSnapshot is the active link.
type NetworkSnapshot struct {
	Connection Connection `json:"connection"`
	Interface  string     `json:"interface,omitempty"`
}

// Weather is the current condition fetched once at startup.
type Weather struct {
	Glyph       string `json:"glyph"`
	Temperature string `json:"temperature"`
}
