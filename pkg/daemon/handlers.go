package daemon

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rootstatus/rootstatus/pkg/config"
	"github.com/rootstatus/rootstatus/pkg/events"
	"github.com/rootstatus/rootstatus/pkg/sensor"
	"github.com/rootstatus/rootstatus/pkg/types"
	"github.com/rootstatus/rootstatus/pkg/version"
	"github.com/rootstatus/rootstatus/pkg/wake"
)

const recentRenderWindow = 10 * time.Minute

type server struct {
	conf    config.Config
	wake    *wake.Signal
	hub     *events.EventHub
	loop    *Loop
	watcher *Watcher
}

func newServer(conf config.Config, w *wake.Signal, hub *events.EventHub, loop *Loop, watcher *Watcher) *server {
	return &server{
		conf:    conf,
		wake:    w,
		hub:     hub,
		loop:    loop,
		watcher: watcher,
	}
}

func (s *server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", s.getStatus)
	router.PUT("/refresh", s.refresh)
	router.GET("/config", s.getConfig)
	router.GET("/version", getVersion)
	router.GET("/events", s.streamEvents)

	return router
}

func (s *server) getStatus(c *gin.Context) {
	st := s.loop.LastStatus()
	state := s.watcher.State()
	rec := s.loop.Recorder()

	resp := types.Status{
		Line:          s.loop.LastLine(),
		RecentRenders: formatTimes(rec.GetLastRecords(time.Now(), recentRenderWindow)),
		Watcher: types.VolatileState{
			Charging:     state.Charging,
			OnFullCharge: state.OnFullCharge,
			Connection:   state.Connection.String(),
		},
		Sensors: map[string]types.SensorStatus{
			"battery": sensorStatus(st.Battery.Status, st.Battery.Err),
			"cpu":     sensorStatus(st.CPU.Status, st.CPU.Err),
			"memory":  sensorStatus(st.Memory.Status, st.Memory.Err),
			"disk":    sensorStatus(st.Disk.Status, st.Disk.Err),
			"network": sensorStatus(st.Network.Status, st.Network.Err),
			"weather": sensorStatus(st.Weather.Status, st.Weather.Err),
		},
		WakePending: s.wake.Pending(),
	}
	if last := rec.GetLastRecord(); !last.IsZero() {
		resp.LastRender = last.Format(time.RFC3339)
	}

	c.IndentedJSON(http.StatusOK, resp)
}

func sensorStatus(status sensor.Status, err error) types.SensorStatus {
	ret := types.SensorStatus{Status: status.String()}
	if err != nil {
		ret.Error = err.Error()
	}
	return ret
}

func (s *server) refresh(c *gin.Context) {
	buffered := s.wake.Raise()
	logrus.WithField("coalesced", !buffered).Info("refresh requested")

	if !buffered {
		c.IndentedJSON(http.StatusAccepted, "refresh already pending")
		return
	}
	c.IndentedJSON(http.StatusAccepted, "ok")
}

func (s *server) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(s.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// streamEvents serves hub events as server-sent events until the client
// goes away.
func (s *server) streamEvents(c *gin.Context) {
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(e.Name, e.Data)
			return true
		}
	})
}
