package shipment

import (
	"time"

	"go-fleetpay/internal/shared/civil"

	"github.com/google/uuid"
)

func idPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapDrops(drops []Drop) []DropResponse {
	out := make([]DropResponse, len(drops))
	for i, d := range drops {
		out[i] = DropResponse{ID: d.ID.String(), Sequence: d.Sequence, Name: d.Name, Location: d.Location}
	}
	return out
}

func mapToResponse(s Shipment, today time.Time) ShipmentResponse {
	return ShipmentResponse{
		ID:                  s.ID.String(),
		Reference:           s.Reference,
		DestinationName:     s.DestinationName,
		DestinationLocation: s.DestinationLocation,
		VehicleID:           s.VehicleID.String(),
		DriverID:            s.DriverID.String(),
		HelperID:            idPtr(s.HelperID),
		LoadingDate:         civil.Format(s.LoadingDate),
		DeliveryDate:        civil.Format(s.DeliveryDate),
		CurrentStatus:       s.CurrentStatus.String(),
		CurrentDropID:       idPtr(s.CurrentDropID),
		Category:            string(Classify(s, today)),
		IsArchived:          s.IsArchived,
		CompletedAt:         timePtr(s.CompletedAt),
		Drops:               mapDrops(s.Drops),
	}
}

func mapStep(st Step) StepResponse {
	resp := StepResponse{
		Phase:    st.Phase.String(),
		Track:    string(st.Phase.Track()),
		DropID:   idPtr(st.DropID),
		DropSeq:  st.DropSeq,
		DropName: st.DropName,
		State:    string(st.State),
	}
	if st.Log != nil {
		resp.OccurredAt = timePtr(&st.Log.OccurredAt)
	}
	return resp
}

func mapTimeline(steps []Step) []StepResponse {
	out := make([]StepResponse, len(steps))
	for i, st := range steps {
		out[i] = mapStep(st)
	}
	return out
}

func dropSeq(s Shipment) int {
	if s.CurrentDropID == nil {
		return 0
	}
	for _, d := range s.Drops {
		if d.ID == *s.CurrentDropID {
			return d.Sequence
		}
	}
	return 0
}

func mapToSnapshot(s Shipment) StatusSnapshot {
	return StatusSnapshot{
		ShipmentID:    s.ID.String(),
		CurrentStatus: s.CurrentStatus.String(),
		CurrentDropID: idPtr(s.CurrentDropID),
		DropSeq:       dropSeq(s),
		IsArchived:    s.IsArchived,
		CompletedAt:   timePtr(s.CompletedAt),
		UpdatedAt:     s.UpdatedAt.UTC().Format(time.RFC3339),
		DriverID:      s.DriverID.String(),
		HelperID:      idPtr(s.HelperID),
	}
}
