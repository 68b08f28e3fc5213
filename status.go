package fleximon

import "github.com/fleximon/fleximon/internal/sensu"

// Label is the semantic severity of a single event.
//
// Label is a string type so that it serializes directly into dashboard
// payloads, where it is used as the CSS class of every table cell.
type Label string

const (
	// LabelOK indicates a passing check (status 0).
	LabelOK Label = "ok"

	// LabelWarning indicates a warning check (status 1).
	LabelWarning Label = "warning"

	// LabelCritical indicates a failing check (status 2).
	LabelCritical Label = "critical"

	// LabelUnknown covers every other status, including negative or
	// non-integer codes.
	LabelUnknown Label = "unknown"
)

// String returns the string representation of the label.
func (l Label) String() string {
	return string(l)
}

// Classify maps a numeric severity code to its [Label].
//
// Classify is pure and total: 0 is ok, 1 is warning, 2 is critical and any
// other value, negative ones included, is unknown.
func Classify(status int) Label {
	switch status {
	case 0:
		return LabelOK
	case 1:
		return LabelWarning
	case 2:
		return LabelCritical
	default:
		return LabelUnknown
	}
}

// classifyEvent classifies the check status carried by an event.
func classifyEvent(e Event) Label {
	return Classify(int(e.Check.Status))
}

// Color is the overall state shown by the status widget.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// String returns the string representation of the color.
func (c Color) String() string {
	return string(c)
}

// Overall derives the dashboard color from the critical and warning counts.
//
// Red wins over yellow, yellow over green. Unknown events are deliberately
// not an input.
func Overall(critical, warning int) Color {
	switch {
	case critical > 0:
		return ColorRed
	case warning > 0:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// Event is one alert/check record returned by a monitoring API.
type Event = sensu.Event
