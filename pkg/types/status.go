package types

// SensorStatus is one sensor's last reading as seen by the status loop.
type SensorStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// VolatileState mirrors what the watcher saw on its last cycle.
type VolatileState struct {
	Charging     bool   `json:"charging"`
	OnFullCharge bool   `json:"onFullCharge"`
	Connection   string `json:"connection"`
}

// Status holds the daemon state served on GET /status.
// This struct is shared between the daemon and client packages.
type Status struct {
	Line          string                  `json:"line"`
	LastRender    string                  `json:"lastRender,omitempty"`
	RecentRenders []string                `json:"recentRenders"`
	Watcher       VolatileState           `json:"watcher"`
	Sensors       map[string]SensorStatus `json:"sensors"`
	WakePending   bool                    `json:"wakePending"`
}
