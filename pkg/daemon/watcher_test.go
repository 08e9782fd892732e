package daemon

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rootstatus/rootstatus/pkg/events"
	"github.com/rootstatus/rootstatus/pkg/sensor"
	"github.com/rootstatus/rootstatus/pkg/wake"
)

func newTestWatcher(
	bat []result[sensor.BatterySnapshot],
	net []result[sensor.NetworkSnapshot],
	sleeps int,
) (*Watcher, *wake.Signal, *recordingSleep, chan events.Event) {
	w := wake.New()
	hub := events.NewEventHub()
	ch := hub.Subscribe()

	watcher := NewWatcher(
		&scriptedSampler[sensor.BatterySnapshot]{results: bat},
		&scriptedSampler[sensor.NetworkSnapshot]{results: net},
		w, hub, nil,
	)
	rs := &recordingSleep{max: sleeps}
	watcher.sleep = rs.sleep

	return watcher, w, rs, ch
}

func drainReasons(t *testing.T, ch chan events.Event) []string {
	t.Helper()
	var reasons []string
	for {
		select {
		case e := <-ch:
			if e.Name != events.StateChanged {
				continue
			}
			p, err := events.DecodeAs[events.StateChangedEvent](e)
			if err != nil {
				t.Fatalf("decode event: %v", err)
			}
			reasons = append(reasons, p.Reason)
		default:
			return reasons
		}
	}
}

func TestWatcher_PlugInThenFullCharge(t *testing.T) {
	watcher, w, rs, ch := newTestWatcher(
		[]result[sensor.BatterySnapshot]{
			{v: discharging80}, // initial
			{v: discharging80},
			{v: charging80},
			{v: charged},
		},
		[]result[sensor.NetworkSnapshot]{{v: wifi}},
		4,
	)

	if err := watcher.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second, 20 * time.Second}
	if got := rs.Intervals(); !reflect.DeepEqual(got, want) {
		t.Errorf("intervals = %v, want %v", got, want)
	}
	if got := drainReasons(t, ch); !reflect.DeepEqual(got, []string{"battery"}) {
		t.Errorf("wake reasons = %v, want [battery]", got)
	}
	if !w.Pending() {
		t.Error("expected a pending wake")
	}

	got := watcher.State()
	if !got.OnFullCharge || got.Connection != sensor.ConnectionWifi {
		t.Errorf("State() = %+v, want full charge on wifi", got)
	}
}

func TestWatcher_FullChargeSuppressesChargingTransition(t *testing.T) {
	watcher, w, _, ch := newTestWatcher(
		[]result[sensor.BatterySnapshot]{
			{v: discharging80},
			{v: charged},
		},
		[]result[sensor.NetworkSnapshot]{{v: wifi}},
		2,
	)

	_ = watcher.Run(context.Background())

	if got := drainReasons(t, ch); len(got) != 0 {
		t.Errorf("wake reasons = %v, want none", got)
	}
	if w.Pending() {
		t.Error("unexpected pending wake")
	}
}

func TestWatcher_BatteryWinsOverNetwork(t *testing.T) {
	watcher, w, _, ch := newTestWatcher(
		[]result[sensor.BatterySnapshot]{
			{v: discharging80},
			{v: charging80},
		},
		[]result[sensor.NetworkSnapshot]{
			{v: wifi},  // initial
			{v: wired}, // second cycle; the first cycle skips the network read
		},
		3,
	)

	_ = watcher.Run(context.Background())

	if got := drainReasons(t, ch); !reflect.DeepEqual(got, []string{"battery", "network"}) {
		t.Errorf("wake reasons = %v, want [battery network]", got)
	}
	// Two raises with no consumer collapse into one.
	if !w.Pending() {
		t.Fatal("expected a pending wake")
	}
	_ = w.Wait(context.Background())
	if w.Pending() {
		t.Error("raises were not coalesced")
	}
}

func TestWatcher_NetworkChange(t *testing.T) {
	watcher, _, rs, ch := newTestWatcher(
		[]result[sensor.BatterySnapshot]{{v: charged}},
		[]result[sensor.NetworkSnapshot]{
			{v: wifi},
			{v: offline},
			{v: offline},
		},
		3,
	)

	_ = watcher.Run(context.Background())

	want := []time.Duration{20 * time.Second, 2 * time.Second, 2 * time.Second}
	if got := rs.Intervals(); !reflect.DeepEqual(got, want) {
		t.Errorf("intervals = %v, want %v", got, want)
	}
	if got := drainReasons(t, ch); !reflect.DeepEqual(got, []string{"network"}) {
		t.Errorf("wake reasons = %v, want [network]", got)
	}
}

func TestWatcher_SensorErrorsAreRetried(t *testing.T) {
	watcher, _, _, ch := newTestWatcher(
		[]result[sensor.BatterySnapshot]{
			{v: discharging80},
			{err: errors.New("read /sys/class/power_supply/BAT0/uevent: interrupted")},
			{v: charging80},
		},
		[]result[sensor.NetworkSnapshot]{
			{v: wifi},
			{err: errors.New("netlink timeout")},
			{v: wifi},
		},
		3,
	)

	_ = watcher.Run(context.Background())

	if got := drainReasons(t, ch); !reflect.DeepEqual(got, []string{"battery"}) {
		t.Errorf("wake reasons = %v, want [battery]", got)
	}
}

func TestWatcher_NoBatteryMeansMains(t *testing.T) {
	watcher, _, rs, ch := newTestWatcher(
		[]result[sensor.BatterySnapshot]{{err: sensor.ErrUnavailable}},
		[]result[sensor.NetworkSnapshot]{{v: wired}},
		2,
	)

	_ = watcher.Run(context.Background())

	want := []time.Duration{20 * time.Second, 20 * time.Second}
	if got := rs.Intervals(); !reflect.DeepEqual(got, want) {
		t.Errorf("intervals = %v, want %v", got, want)
	}
	if got := drainReasons(t, ch); len(got) != 0 {
		t.Errorf("wake reasons = %v, want none", got)
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	w := wake.New()
	watcher := NewWatcher(constant(discharging80), constant(wifi), w, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcher_FirstGoodReadIsBaseline(t *testing.T) {
	watcher, _, rs, ch := newTestWatcher(
		[]result[sensor.BatterySnapshot]{
			{err: errors.New("read /sys/class/power_supply/BAT0/uevent: interrupted")}, // initial
			{v: charging80}, // already charging, not a plug-in
			{v: charging80},
			{v: discharging80}, // unplugged
		},
		[]result[sensor.NetworkSnapshot]{
			{err: errors.New("netlink timeout")}, // initial
			{v: wired},
		},
		4,
	)

	_ = watcher.Run(context.Background())

	if got := drainReasons(t, ch); !reflect.DeepEqual(got, []string{"battery"}) {
		t.Errorf("wake reasons = %v, want [battery]", got)
	}
	if got := rs.Intervals(); len(got) != 4 || got[0] != 2*time.Second {
		t.Errorf("intervals = %v, want the active interval first", got)
	}
	if got := watcher.State(); got.Charging || got.Connection != sensor.ConnectionWired {
		t.Errorf("State() = %+v, want discharging and wired", got)
	}
}
