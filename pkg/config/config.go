package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Config interface {
	// IdleInterval is the watcher interval while on full charge and connected.
	IdleInterval() time.Duration
	// ActiveInterval is the watcher interval in every other state.
	ActiveInterval() time.Duration
	TemperatureSensor() string
	DiskPath() string
	WeatherEnabled() bool
	WeatherLocation() string
	DisplayCommand() string
	RequireBattery() bool
	ClockFormat() string

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
