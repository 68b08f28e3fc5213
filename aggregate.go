package fleximon

import (
	"context"

	"github.com/sourcegraph/conc/iter"

	"github.com/fleximon/fleximon/internal/sensu"
)

// Cell is one table cell: the projected value and the severity label of the
// event it belongs to, used by the dashboard as the cell's CSS class.
type Cell struct {
	Class Label  `json:"class"`
	Value string `json:"value"`
}

// Row is one table row, one [Cell] per configured column.
type Row struct {
	Cols []Cell `json:"cols"`
}

// HeaderCell is one header cell holding a column name.
type HeaderCell struct {
	Value string `json:"value"`
}

// Header is the table header row derived from the configured columns.
type Header struct {
	Cols []HeaderCell `json:"cols"`
}

// Item is one entry of the warning or critical client lists.
type Item struct {
	// Label is the client (host) name.
	Label string `json:"label"`

	// Value is the check name.
	Value string `json:"value"`
}

// Result is the aggregate state computed by a single tick.
//
// Result is a value: it is built from scratch on every tick and shares no
// state with previous ticks. All slices are non-nil so that results encode
// to identical JSON for identical inputs.
type Result struct {
	// Critical, Warning and Unknown count events by label. Ok events are
	// only visible as table rows.
	Critical int
	Warning  int
	Unknown  int

	// Status is red if Critical > 0, else yellow if Warning > 0, else green.
	Status Color

	// WarningClients and CriticalClients list {client, check} pairs for
	// status 1 and status 2 events in table order.
	WarningClients  []Item
	CriticalClients []Item

	// Header has one cell per configured column.
	Header Header

	// Rows has one row per successfully fetched event.
	Rows []Row

	// Sources is the number of environments polled.
	Sources int

	// Unreachable names the environments whose fetch failed, in
	// configuration order.
	Unreachable []string
}

// fetcher fetches the events of one source.
type fetcher interface {
	Fetch(ctx context.Context, src sensu.Source) sensu.Result
}

// fetcherFunc adapts a function to the fetcher interface.
type fetcherFunc func(ctx context.Context, src sensu.Source) sensu.Result

func (f fetcherFunc) Fetch(ctx context.Context, src sensu.Source) sensu.Result {
	return f(ctx, src)
}

// collect fetches every environment concurrently, at most maxConcurrency at
// a time, and returns the results in environment order.
func collect(ctx context.Context, f fetcher, envs []Environment, maxConcurrency int) []sensu.Result {
	mapper := iter.Mapper[Environment, sensu.Result]{MaxGoroutines: maxConcurrency}
	return mapper.Map(envs, func(env *Environment) sensu.Result {
		return f.Fetch(ctx, env.source())
	})
}

// aggregate folds fetch results into a [Result].
//
// Events are taken from successful results only, in result order and then
// API response order, which fixes the row order of the table. Failed results
// contribute no rows and are listed in Result.Unreachable.
//
// aggregate is pure: identical inputs produce identical results.
func aggregate(results []sensu.Result, columns []string) Result {
	out := Result{
		WarningClients:  []Item{},
		CriticalClients: []Item{},
		Header:          newHeader(columns),
		Rows:            []Row{},
		Sources:         len(results),
		Unreachable:     []string{},
	}

	for _, res := range results {
		if res.Failed() {
			out.Unreachable = append(out.Unreachable, res.Source)
			continue
		}

		for _, event := range res.Events {
			label := classifyEvent(event)
			out.Rows = append(out.Rows, newRow(event, label, columns))

			item := Item{Label: event.Client.Name, Value: event.Check.Name}
			switch label {
			case LabelWarning:
				out.Warning++
				out.WarningClients = append(out.WarningClients, item)
			case LabelCritical:
				out.Critical++
				out.CriticalClients = append(out.CriticalClients, item)
			case LabelUnknown:
				out.Unknown++
			}
		}
	}

	out.Status = Overall(out.Critical, out.Warning)
	return out
}

// newHeader builds the header row, one cell per column in configured order.
func newHeader(columns []string) Header {
	cols := make([]HeaderCell, len(columns))
	for i, column := range columns {
		cols[i] = HeaderCell{Value: column}
	}
	return Header{Cols: cols}
}

// newRow projects every configured column of an event.
func newRow(e Event, label Label, columns []string) Row {
	cols := make([]Cell, len(columns))
	for i, column := range columns {
		cols[i] = Cell{Class: label, Value: Project(column, e)}
	}
	return Row{Cols: cols}
}
