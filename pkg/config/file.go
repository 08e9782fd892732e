package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rootstatus/rootstatus/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		IdleIntervalSeconds:   ptr.To(20),
		ActiveIntervalSeconds: ptr.To(2),
		TemperatureSensor:     ptr.To("k10temp_tctl"),
		DiskPath:              ptr.To("/"),
		WeatherEnabled:        ptr.To(true),
		// Empty location lets the weather service geolocate by IP.
		WeatherLocation: ptr.To(""),
		DisplayCommand:  ptr.To("xsetroot"),
		// Desktops without a battery must opt out explicitly.
		RequireBattery: ptr.To(true),
		ClockFormat:    ptr.To("15:04"),
	}
)

var _ Config = &File{}

// DefaultPath returns $XDG_CONFIG_HOME/rootstatus/config.json, falling back
// to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "rootstatus", "config.json")
}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	IdleIntervalSeconds   *int    `json:"idleIntervalSeconds,omitempty"`
	ActiveIntervalSeconds *int    `json:"activeIntervalSeconds,omitempty"`
	TemperatureSensor     *string `json:"temperatureSensor,omitempty"`
	DiskPath              *string `json:"diskPath,omitempty"`
	WeatherEnabled        *bool   `json:"weatherEnabled,omitempty"`
	WeatherLocation       *string `json:"weatherLocation,omitempty"`
	DisplayCommand        *string `json:"displayCommand,omitempty"`
	RequireBattery        *bool   `json:"requireBattery,omitempty"`
	ClockFormat           *string `json:"clockFormat,omitempty"`
}

// NewRawFileConfigFromConfig resolves every value of c, defaults included.
func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		IdleIntervalSeconds:   ptr.To(int(c.IdleInterval() / time.Second)),
		ActiveIntervalSeconds: ptr.To(int(c.ActiveInterval() / time.Second)),
		TemperatureSensor:     ptr.To(c.TemperatureSensor()),
		DiskPath:              ptr.To(c.DiskPath()),
		WeatherEnabled:        ptr.To(c.WeatherEnabled()),
		WeatherLocation:       ptr.To(c.WeatherLocation()),
		DisplayCommand:        ptr.To(c.DisplayCommand()),
		RequireBattery:        ptr.To(c.RequireBattery()),
		ClockFormat:           ptr.To(c.ClockFormat()),
	}

	return rawConfig, nil
}

func (f *File) IdleInterval() time.Duration {
	return f.interval(func(c *RawFileConfig) *int { return c.IdleIntervalSeconds })
}

func (f *File) ActiveInterval() time.Duration {
	return f.interval(func(c *RawFileConfig) *int { return c.ActiveIntervalSeconds })
}

// interval falls back to the default for missing or non-positive values.
func (f *File) interval(field func(*RawFileConfig) *int) time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	seconds := *field(defaultFileConfig)
	if v := field(f.c); v != nil && *v > 0 {
		seconds = *v
	}

	return time.Duration(seconds) * time.Second
}

func (f *File) TemperatureSensor() string {
	return f.str(func(c *RawFileConfig) *string { return c.TemperatureSensor })
}

func (f *File) DiskPath() string {
	return f.str(func(c *RawFileConfig) *string { return c.DiskPath })
}

func (f *File) WeatherLocation() string {
	return f.str(func(c *RawFileConfig) *string { return c.WeatherLocation })
}

func (f *File) DisplayCommand() string {
	return f.str(func(c *RawFileConfig) *string { return c.DisplayCommand })
}

func (f *File) ClockFormat() string {
	return f.str(func(c *RawFileConfig) *string { return c.ClockFormat })
}

func (f *File) str(field func(*RawFileConfig) *string) string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(field(f.c), *field(defaultFileConfig))
}

func (f *File) WeatherEnabled() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.WeatherEnabled, *defaultFileConfig.WeatherEnabled)
}

func (f *File) RequireBattery() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.RequireBattery, *defaultFileConfig.RequireBattery)
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"idleInterval":      f.IdleInterval(),
		"activeInterval":    f.ActiveInterval(),
		"temperatureSensor": f.TemperatureSensor(),
		"diskPath":          f.DiskPath(),
		"weatherEnabled":    f.WeatherEnabled(),
		"weatherLocation":   f.WeatherLocation(),
		"displayCommand":    f.DisplayCommand(),
		"requireBattery":    f.RequireBattery(),
		"clockFormat":       f.ClockFormat(),
	}
}
