package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rootstatus/rootstatus/pkg/config"
	"github.com/rootstatus/rootstatus/pkg/display"
	"github.com/rootstatus/rootstatus/pkg/events"
	"github.com/rootstatus/rootstatus/pkg/format"
	"github.com/rootstatus/rootstatus/pkg/sensor"
	"github.com/rootstatus/rootstatus/pkg/wake"
)

const shutdownTimeout = 5 * time.Second

// ErrNoBattery is returned by Run when the startup probe finds no battery
// and the config requires one.
var ErrNoBattery = errors.New("no battery found")

// NewSensors builds a fresh set of sensor handles from conf. Every task gets
// its own set.
func NewSensors(conf config.Config) Sensors {
	s := Sensors{
		Battery: sensor.NewBattery(0),
		CPU:     sensor.NewCPU(conf.TemperatureSensor()),
		Memory:  sensor.NewMemory(),
		Disk:    sensor.NewDisk(conf.DiskPath()),
		Network: sensor.NewNetwork(sensor.DefaultSysfsNetRoot),
	}
	if conf.WeatherEnabled() {
		s.Weather = sensor.NewWttr(conf.WeatherLocation())
	}
	return s
}

// ProbeBattery checks once that a battery can be read.
func ProbeBattery(ctx context.Context, b sensor.Sampler[sensor.BatterySnapshot]) error {
	snap, err := b.Sample(ctx)
	if errors.Is(err, sensor.ErrUnavailable) {
		return pkgerrors.Wrap(ErrNoBattery, err.Error())
	}
	if err != nil {
		// A battery that exists but misreads once is still a battery.
		logrus.WithError(err).Warn("battery probe read failed")
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"percent":      snap.Percent,
		"charging":     snap.Charging,
		"onFullCharge": snap.OnFullCharge,
	}).Info("battery found")
	return nil
}

// Run starts the watcher, the status loop and the control socket, and blocks
// until SIGINT or SIGTERM.
func Run(configPath string, unixSocketPath string) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Info("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reloadOnSIGHUP(ctx, conf)

	loopSensors := NewSensors(conf)
	if conf.RequireBattery() {
		if err := ProbeBattery(ctx, loopSensors.Battery); err != nil {
			return err
		}
	}

	w := wake.New()
	hub := events.NewEventHub()

	watcher := NewWatcher(
		sensor.NewBattery(0),
		sensor.NewNetwork(sensor.DefaultSysfsNetRoot),
		w,
		hub,
		policyFromConfig(conf),
	)
	loop := NewLoop(
		loopSensors,
		format.New(conf.ClockFormat()),
		display.NewRootWindow(conf.DisplayCommand()),
		w,
		hub,
	)

	srv := &http.Server{
		Handler: newServer(conf, w, hub, loop, watcher).routes(),
	}

	l, err := listenUnix(unixSocketPath)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watcher.Run(gctx)
	})

	g.Go(func() error {
		return loop.Run(gctx)
	})

	g.Go(func() error {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return pkgerrors.Wrap(err, "http server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("failed to shutdown http server: %v", err)
		}
		return nil
	})

	err = g.Wait()

	if rmErr := os.Remove(unixSocketPath); rmErr != nil && !os.IsNotExist(rmErr) {
		logrus.Warnf("failed to remove socket %s: %v", unixSocketPath, rmErr)
	}

	if err != nil {
		return err
	}

	logrus.Info("exiting")
	return nil
}

func reloadOnSIGHUP(ctx context.Context, conf config.Config) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGHUP)
	defer signal.Stop(sigc)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigc:
			if err := conf.Load(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Info("config reloaded")
		}
	}
}

// listenUnix listens on path, replacing a socket left behind by a daemon
// that did not exit cleanly.
func listenUnix(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create directory for %s", path)
	}

	if _, err := os.Stat(path); err == nil {
		if conn, err := net.Dial("unix", path); err == nil {
			_ = conn.Close()
			return nil, pkgerrors.Errorf("another daemon is already listening on %s", path)
		}
		logrus.Warnf("removing stale socket %s", path)
		if err := os.Remove(path); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to remove stale socket %s", path)
		}
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to listen on %s", path)
	}
	return l, nil
}
