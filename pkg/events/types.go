package events

import "encoding/json"

// Event name constants
const (
	CalibrationWritten = "calibration.written"
	CalibrationErased  = "calibration.erased"
	CalibrationLost    = "calibration.lost"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// CalibrationEvent is the typed payload for calibration.* events.
type CalibrationEvent struct {
	Transform [6]int32 `json:"transform"`
	Source    string   `json:"source"`
	Message   string   `json:"message,omitempty"`
	Ts        int64    `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// If Data is empty, it returns the zero value of T with a nil error.
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
