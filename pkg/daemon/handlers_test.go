package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rootstatus/rootstatus/pkg/client"
	"github.com/rootstatus/rootstatus/pkg/config"
	"github.com/rootstatus/rootstatus/pkg/events"
	"github.com/rootstatus/rootstatus/pkg/sensor"
	"github.com/rootstatus/rootstatus/pkg/types"
	"github.com/rootstatus/rootstatus/pkg/utils/ptr"
	"github.com/rootstatus/rootstatus/pkg/version"
)

func newTestServer() (*server, *Loop) {
	conf := config.NewFileFromConfig(&config.RawFileConfig{
		DiskPath: ptr.To("/home"),
	}, "")

	l, w := newTestLoop(okSensors(), &fakeSink{})
	hub := events.NewEventHub()
	watcher := NewWatcher(constant(charged), constant(wired), w, hub, nil)

	return newServer(conf, w, hub, l, watcher), l
}

func serve(s *server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.routes().ServeHTTP(rec, req)
	return rec
}

func TestHandlers_Version(t *testing.T) {
	s, _ := newTestServer()

	rec := serve(s, http.MethodGet, "/version")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != version.Version {
		t.Errorf("version = %q, want %q", got, version.Version)
	}
}

func TestHandlers_Refresh(t *testing.T) {
	s, _ := newTestServer()

	rec := serve(s, http.MethodPut, "/refresh")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if !s.wake.Pending() {
		t.Fatal("refresh did not raise a wake")
	}

	rec = serve(s, http.MethodPut, "/refresh")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	var msg string
	_ = json.Unmarshal(rec.Body.Bytes(), &msg)
	if msg != "refresh already pending" {
		t.Errorf("second refresh = %q", msg)
	}
}

func TestHandlers_Status(t *testing.T) {
	s, l := newTestServer()
	line := l.Tick(context.Background())

	rec := serve(s, http.MethodGet, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got types.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Line != line {
		t.Errorf("line = %q, want %q", got.Line, line)
	}
	if got.LastRender == "" {
		t.Error("lastRender is empty")
	}
	if st := got.Sensors["battery"]; st.Status != sensor.StatusOK.String() {
		t.Errorf("battery status = %+v", st)
	}
	if st := got.Sensors["weather"]; st.Status != sensor.StatusEmpty.String() {
		t.Errorf("weather status = %+v", st)
	}
}

func TestHandlers_Config(t *testing.T) {
	s, _ := newTestServer()

	rec := serve(s, http.MethodGet, "/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got config.RawFileConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if ptr.Deref(got.DiskPath, "") != "/home" {
		t.Errorf("diskPath = %v, want /home", got.DiskPath)
	}
	if ptr.Deref(got.IdleIntervalSeconds, 0) != 20 {
		t.Errorf("idleIntervalSeconds = %v, want default 20", got.IdleIntervalSeconds)
	}
}

func TestHandlers_NotFound(t *testing.T) {
	s, _ := newTestServer()

	if rec := serve(s, http.MethodGet, "/limit"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlers_Events(t *testing.T) {
	s, l := newTestServer()
	l.hub = s.hub

	// Rendered before anyone subscribes; a new subscriber still gets it.
	line := l.Tick(context.Background())

	dir, err := os.MkdirTemp("", "rsd")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "d.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	srv := &http.Server{Handler: s.routes()}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Close()
		_ = os.RemoveAll(dir)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errDone := errors.New("done")
	var got []events.Event
	err = client.NewClient(path).Events(ctx, func(e events.Event) error {
		got = append(got, e)
		if len(got) == 1 {
			s.hub.Publish(events.StateChanged, events.StateChangedEvent{Reason: "network", Connection: "wired"})
			return nil
		}
		return errDone
	})
	if !errors.Is(err, errDone) {
		t.Fatalf("Events() error = %v, got %d events", err, len(got))
	}

	if got[0].Name != events.LineRendered {
		t.Fatalf("first event = %q, want %q", got[0].Name, events.LineRendered)
	}
	lr, err := events.DecodeAs[events.LineRenderedEvent](got[0])
	if err != nil || lr.Line != line || !lr.DisplayOK {
		t.Errorf("replayed event = %+v, %v, want line %q", lr, err, line)
	}

	sc, err := events.DecodeAs[events.StateChangedEvent](got[1])
	if err != nil || got[1].Name != events.StateChanged || sc.Reason != "network" || sc.Connection != "wired" {
		t.Errorf("second event = %s %+v, %v", got[1].Name, sc, err)
	}
}
