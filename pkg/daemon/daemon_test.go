package daemon

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/rootstatus/rootstatus/pkg/sensor"
)

func TestProbeBattery(t *testing.T) {
	tests := []struct {
		name    string
		res     result[sensor.BatterySnapshot]
		wantErr bool
	}{
		{"present", result[sensor.BatterySnapshot]{v: discharging80}, false},
		{"absent", result[sensor.BatterySnapshot]{err: sensor.ErrUnavailable}, true},
		{"misread", result[sensor.BatterySnapshot]{err: errors.New("EIO")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scriptedSampler[sensor.BatterySnapshot]{results: []result[sensor.BatterySnapshot]{tt.res}}
			err := ProbeBattery(context.Background(), s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProbeBattery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNoBattery) {
				t.Errorf("ProbeBattery() error = %v, want ErrNoBattery", err)
			}
		})
	}
}

func TestListenUnix(t *testing.T) {
	dir, err := os.MkdirTemp("", "rs")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	path := filepath.Join(dir, "run", "rootstatus.sock")

	l, err := listenUnix(path)
	if err != nil {
		t.Fatalf("listenUnix() error = %v", err)
	}

	if _, err := listenUnix(path); err == nil {
		t.Fatal("second listener on a live socket succeeded")
	}

	// Leave the socket file behind without a listener.
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	_ = l.Close()

	l, err = listenUnix(path)
	if err != nil {
		t.Fatalf("listenUnix() over stale socket error = %v", err)
	}
	_ = l.Close()
}
