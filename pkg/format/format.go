// Package format renders sensor readings into the status line.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rootstatus/rootstatus/pkg/sensor"
)

// Nerd Font glyphs.
const (
	GlyphPlug     = "\uf1e6"
	GlyphCharging = "\uf0e7"
	GlyphMemory   = "\uf538"
	GlyphDisk     = "\uf0a0"
	GlyphCPU      = "\uf2db"
	GlyphWired    = "\U000f0200"
	GlyphWifi     = "\uf1eb"
	GlyphOffline  = "\U000f05aa"
)

// BatteryGlyphs goes from empty to full.
var BatteryGlyphs = [5]string{"\uf244", "\uf243", "\uf242", "\uf241", "\uf240"}

// TemperatureGlyphs goes from cool to hot, see TemperatureThresholds.
var TemperatureGlyphs = [5]string{"\uf2cb", "\uf2ca", "\uf2c9", "\uf2c8", "\uf2c7"}

// TemperatureThresholds are the upper bounds, in °C, of the first four
// TemperatureGlyphs.
var TemperatureThresholds = [4]float64{45, 55, 65, 75}

const (
	DefaultClockFormat = "15:04"
	DefaultPlaceholder = "?"
)

const gib = 1 << 30

// Status is everything shown on one line.
type Status struct {
	Time    time.Time
	Battery sensor.Reading[sensor.BatterySnapshot]
	CPU     sensor.Reading[sensor.CPUSnapshot]
	Memory  sensor.Reading[sensor.MemorySnapshot]
	Disk    sensor.Reading[sensor.DiskSnapshot]
	Network sensor.Reading[sensor.NetworkSnapshot]
	// Weather is left out of the line while it has never been fetched.
	Weather sensor.Reading[sensor.Weather]
}

// Formatter turns a Status into the root window title.
type Formatter struct {
	ClockFormat string
	Placeholder string
}

// New returns a Formatter. Empty arguments select the defaults.
func New(clockFormat string) *Formatter {
	if clockFormat == "" {
		clockFormat = DefaultClockFormat
	}
	return &Formatter{
		ClockFormat: clockFormat,
		Placeholder: DefaultPlaceholder,
	}
}

// Line renders s as "| mem | disk | cpu | net | battery | weather | time ".
func (f *Formatter) Line(s Status) string {
	segments := []string{
		segment(f, s.Memory, Memory),
		segment(f, s.Disk, Disk),
		segment(f, s.CPU, CPU),
		segment(f, s.Network, Network),
		segment(f, s.Battery, Battery),
	}
	if s.Weather.Status != sensor.StatusEmpty {
		segments = append(segments, segment(f, s.Weather, Weather))
	}
	segments = append(segments, s.Time.Format(f.ClockFormat))

	var b strings.Builder
	for _, seg := range segments {
		b.WriteString("| ")
		b.WriteString(seg)
		b.WriteString(" ")
	}
	return b.String()
}

func segment[T any](f *Formatter, r sensor.Reading[T], render func(T) string) string {
	if !r.OK() {
		return f.Placeholder
	}
	return render(r.Value)
}

// Battery renders the plug glyph on full charge, a charging marker while
// charging and the level with a percentage while discharging.
func Battery(b sensor.BatterySnapshot) string {
	if b.OnFullCharge {
		return GlyphPlug
	}
	level := BatteryGlyphs[ladderIndex(b.Percent/100*float64(len(BatteryGlyphs)), len(BatteryGlyphs))]
	if b.Charging {
		return GlyphCharging + " " + level
	}
	return fmt.Sprintf("%s %3d%%", level, int(math.Round(b.Percent)))
}

// CPU renders usage padded to two columns and a temperature glyph.
func CPU(c sensor.CPUSnapshot) string {
	usage := fmt.Sprintf("%s %2d%%", GlyphCPU, int(c.Usage))
	if !c.HasTemperature {
		return usage
	}
	return usage + " " + TemperatureGlyph(c.Temperature)
}

// TemperatureGlyph picks the glyph for a temperature in °C.
func TemperatureGlyph(celsius float64) string {
	for i, limit := range TemperatureThresholds {
		if celsius < limit {
			return TemperatureGlyphs[i]
		}
	}
	return TemperatureGlyphs[len(TemperatureGlyphs)-1]
}

// Memory renders used memory in GiB with one decimal.
func Memory(m sensor.MemorySnapshot) string {
	return fmt.Sprintf("%s %.1f", GlyphMemory, float64(m.Used)/gib)
}

// Disk renders the used percentage of the mount point.
func Disk(d sensor.DiskSnapshot) string {
	return fmt.Sprintf("%s %2d%%", GlyphDisk, int(d.UsedPercent))
}

// Network renders the link type.
func Network(n sensor.NetworkSnapshot) string {
	switch n.Connection {
	case sensor.ConnectionWired:
		return GlyphWired
	case sensor.ConnectionWifi:
		return GlyphWifi
	default:
		return GlyphOffline
	}
}

// Weather renders the condition glyph and temperature.
func Weather(w sensor.Weather) string {
	return strings.TrimSpace(w.Glyph + " " + w.Temperature)
}

func ladderIndex(v float64, n int) int {
	i := int(v)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
