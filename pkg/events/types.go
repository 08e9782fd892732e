package events

import "encoding/json"

// Event name constants
const (
	// StateChanged is published by the watcher when it raises a wake.
	StateChanged = "state.changed"
	// LineRendered is published by the status loop after every render.
	LineRendered = "line.rendered"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// StateChangedEvent is the typed payload for state.changed.
type StateChangedEvent struct {
	Reason     string `json:"reason"`
	Charging   bool   `json:"charging"`
	Full       bool   `json:"onFullCharge"`
	Connection string `json:"connection"`
	Ts         int64  `json:"ts"`
}

// LineRenderedEvent is the typed payload for line.rendered.
type LineRenderedEvent struct {
	Line      string `json:"line"`
	DisplayOK bool   `json:"displayOk"`
	Ts        int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
