// Package phase holds the fixed delivery lifecycle shared by the API and the
// field client: the warehouse and store tracks, the sentinel states, and the
// total order used to compare progress.
package phase

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

type Phase int

const (
	Pending Phase = iota

	ArrivalAtWarehouse
	StartLoading
	EndLoading
	DocumentReleased
	StartRoute

	Arrival
	HandoverInvoice
	StartUnload
	FinishUnload
	InvoiceReceive
	Departure

	Completed
	Cancelled
)

type Track string

const (
	TrackNone      Track = ""
	TrackWarehouse Track = "warehouse"
	TrackStore     Track = "store"
)

var names = map[Phase]string{
	Pending:            "Pending",
	ArrivalAtWarehouse: "Arrival at Warehouse",
	StartLoading:       "Start Loading",
	EndLoading:         "End Loading",
	DocumentReleased:   "Document Released",
	StartRoute:         "Start Route",
	Arrival:            "Arrival",
	HandoverInvoice:    "Handover Invoice",
	StartUnload:        "Start Unload",
	FinishUnload:       "Finish Unload",
	InvoiceReceive:     "Invoice Receive",
	Departure:          "Departure",
	Completed:          "Completed",
	Cancelled:          "Cancelled",
}

var byName = func() map[string]Phase {
	m := make(map[string]Phase, len(names))
	for p, n := range names {
		m[strings.ToLower(n)] = p
	}
	return m
}()

func WarehousePhases() []Phase {
	return []Phase{ArrivalAtWarehouse, StartLoading, EndLoading, DocumentReleased, StartRoute}
}

func StorePhases() []Phase {
	return []Phase{Arrival, HandoverInvoice, StartUnload, FinishUnload, InvoiceReceive, Departure}
}

// Parse accepts a display name, case-insensitively.
func Parse(name string) (Phase, error) {
	p, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Pending, fmt.Errorf("unknown phase %q", name)
	}
	return p, nil
}

func (p Phase) String() string {
	if n, ok := names[p]; ok {
		return n
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

func (p Phase) Valid() bool {
	_, ok := names[p]
	return ok
}

func (p Phase) Track() Track {
	switch {
	case p >= ArrivalAtWarehouse && p <= StartRoute:
		return TrackWarehouse
	case p >= Arrival && p <= Departure:
		return TrackStore
	default:
		return TrackNone
	}
}

// IsStep reports whether p is recorded from the field (not a sentinel).
func (p Phase) IsStep() bool {
	return p.Track() != TrackNone
}

func (p Phase) IsTerminal() bool {
	return p == Completed || p == Cancelled
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value stores the display name so the column stays readable.
func (p Phase) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return p.String(), nil
}

func (p *Phase) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*p = Pending
		return nil
	default:
		return fmt.Errorf("cannot scan %T into phase", src)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Position locates a shipment in its lifecycle. DropSeq is the 1-based drop
// sequence for store phases and zero otherwise.
type Position struct {
	Phase   Phase `json:"phase"`
	DropSeq int   `json:"drop_seq"`
}

func (pos Position) rank() int {
	const storeSteps = 6
	switch {
	case pos.Phase == Pending:
		return 0
	case pos.Phase.Track() == TrackWarehouse:
		return int(pos.Phase - ArrivalAtWarehouse + 1)
	case pos.Phase.Track() == TrackStore:
		seq := pos.DropSeq
		if seq < 1 {
			seq = 1
		}
		return len(WarehousePhases()) + (seq-1)*storeSteps + int(pos.Phase-Arrival+1)
	case pos.Phase == Completed:
		return math.MaxInt - 1
	default:
		return math.MaxInt
	}
}

// Compare orders positions: Pending, warehouse steps, each drop's store steps
// by sequence, Completed, then Cancelled.
func Compare(a, b Position) int {
	ra, rb := a.rank(), b.rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// Reconcile merges an optimistic local position with a server read. A
// terminal server state always wins; otherwise the further position wins so
// a stale read cannot move progress backwards.
func Reconcile(local, server Position) Position {
	if server.Phase.IsTerminal() {
		return server
	}
	if Compare(local, server) > 0 {
		return local
	}
	return server
}
