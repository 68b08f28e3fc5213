package sensu

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
)

// SeverityUnknown is the severity assigned to events whose check status is
// missing, null, negative or not an integer.
const SeverityUnknown Severity = -1

// Severity is the integer status code of a check: 0 ok, 1 warning,
// 2 critical, anything else unknown.
type Severity int

// UnmarshalJSON decodes a severity leniently. Integral JSON numbers are kept
// as-is; every other value (strings, fractions, null, negatives) becomes
// [SeverityUnknown] instead of failing the whole response.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		*s = SeverityUnknown
		return nil
	}

	*s = Severity(f)
	return nil
}

// EventClient identifies the monitored host that raised an event.
type EventClient struct {
	Name string `json:"name"`
}

// Check describes the check result carried by an event.
type Check struct {
	Name     string   `json:"name"`
	Output   string   `json:"output"`
	Team     string   `json:"team"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
}

// Event is one alert/check record returned by the /events endpoint.
//
// Unknown JSON fields are ignored. Absent client or check objects decode
// to zero values with an unknown severity.
type Event struct {
	Client EventClient `json:"client"`
	Check  Check  `json:"check"`
}

// errNullEvent rejects a null element in the events array.
var errNullEvent = errors.New("event is null")

// UnmarshalJSON presets the check status to [SeverityUnknown] so that an
// event without a status never counts as ok. A null event is an error, like
// any other non-object element.
func (e *Event) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNullEvent
	}
	type event Event
	raw := event{Check: Check{Status: SeverityUnknown}}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Event(raw)
	return nil
}
