package shipment

import (
	"sort"

	"go-fleetpay/internal/phase"

	"github.com/google/uuid"
)

type StepState string

const (
	StepDone    StepState = "done"
	StepActive  StepState = "active"
	StepPending StepState = "pending"
)

// Step is one entry of a shipment timeline. Warehouse steps have no drop.
type Step struct {
	Phase    phase.Phase
	DropID   *uuid.UUID
	DropSeq  int
	DropName string
	State    StepState
	Log      *StatusLog
}

func (s Step) Key() string {
	return StepKey(s.Phase, s.DropID)
}

func (s Step) Position() phase.Position {
	return phase.Position{Phase: s.Phase, DropSeq: s.DropSeq}
}

// BuildTimeline lays out the warehouse steps followed by every drop's store
// steps in sequence order and marks each step done, active or pending.
func BuildTimeline(drops []Drop, logs []StatusLog) []Step {
	sorted := make([]Drop, len(drops))
	copy(sorted, drops)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	byKey := make(map[string]*StatusLog, len(logs))
	for i := range logs {
		byKey[logs[i].StepKey] = &logs[i]
	}

	steps := make([]Step, 0, len(phase.WarehousePhases())+len(sorted)*len(phase.StorePhases()))
	for _, p := range phase.WarehousePhases() {
		steps = append(steps, Step{Phase: p})
	}
	for _, d := range sorted {
		id := d.ID
		for _, p := range phase.StorePhases() {
			steps = append(steps, Step{Phase: p, DropID: &id, DropSeq: d.Sequence, DropName: d.Name})
		}
	}

	activeFound := false
	allPrevDone := true
	for i := range steps {
		if log, ok := byKey[steps[i].Key()]; ok {
			steps[i].State = StepDone
			steps[i].Log = log
			continue
		}
		if allPrevDone && !activeFound {
			steps[i].State = StepActive
			activeFound = true
		} else {
			steps[i].State = StepPending
		}
		allPrevDone = false
	}
	return steps
}

// ActiveStep returns the step that may be recorded next, if any.
func ActiveStep(steps []Step) (Step, bool) {
	for _, s := range steps {
		if s.State == StepActive {
			return s, true
		}
	}
	return Step{}, false
}

func findStep(steps []Step, key string) (Step, bool) {
	for _, s := range steps {
		if s.Key() == key {
			return s, true
		}
	}
	return Step{}, false
}

// IsFinalStep reports whether recording st completes the shipment.
func IsFinalStep(steps []Step, st Step) bool {
	if len(steps) == 0 {
		return false
	}
	last := steps[len(steps)-1]
	return last.Key() == st.Key()
}
