package sensor

import (
	"context"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/sirupsen/logrus"
)

// DefaultTemperatureSensor is the AMD Tctl sensor as reported by hwmon.
const DefaultTemperatureSensor = "k10temp_tctl"

// CPU reads average utilisation and the temperature of one sensor.
type CPU struct {
	sensorKey string

	percent      func(ctx context.Context) ([]float64, error)
	temperatures func(ctx context.Context) ([]host.TemperatureStat, error)
}

// NewCPU returns a CPU reader. sensorKey selects the temperature sensor; it is
// matched case-insensitively with spaces treated as underscores, so both
// "k10temp Tctl" and "k10temp_tctl" work.
func NewCPU(sensorKey string) *CPU {
	if sensorKey == "" {
		sensorKey = DefaultTemperatureSensor
	}
	return &CPU{
		sensorKey: normalizeSensorKey(sensorKey),
		percent: func(ctx context.Context) ([]float64, error) {
			return cpu.PercentWithContext(ctx, 0, false)
		},
		temperatures: host.SensorsTemperaturesWithContext,
	}
}

// Sample implements Sampler. A missing temperature sensor does not fail the
// sample, it only clears HasTemperature.
func (c *CPU) Sample(ctx context.Context) (CPUSnapshot, error) {
	percents, err := c.percent(ctx)
	if err != nil {
		return CPUSnapshot{}, pkgerrors.Wrap(err, "failed to read cpu usage")
	}
	if len(percents) == 0 {
		return CPUSnapshot{}, pkgerrors.Wrap(ErrUnavailable, "no cpu usage reported")
	}

	snap := CPUSnapshot{Usage: percents[0]}

	temps, err := c.temperatures(ctx)
	if err != nil && len(temps) == 0 {
		logrus.WithError(err).Debug("failed to read temperature sensors")
		return snap, nil
	}
	for _, t := range temps {
		if normalizeSensorKey(t.SensorKey) == c.sensorKey {
			snap.Temperature = t.Temperature
			snap.HasTemperature = true
			break
		}
	}
	if !snap.HasTemperature {
		logrus.WithField("sensor", c.sensorKey).Trace("temperature sensor not found")
	}

	return snap, nil
}

func normalizeSensorKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}
