package shipment

import (
	"context"
	"strings"
	"time"

	"go-fleetpay/internal/domain"
	"go-fleetpay/internal/shared/civil"
	shipmenterrors "go-fleetpay/internal/shipment/errors"
	"go-fleetpay/internal/user"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Shipments"

var exportHeader = []any{
	"Reference", "Destination", "Location", "Vehicle", "Driver", "Helper",
	"Loading Date", "Delivery Date", "Status", "Category", "Drops", "Completed At",
}

func (s *service) Export(ctx context.Context, viewer domain.Viewer, f ListFilter) ([]byte, error) {
	shipments, err := s.filter(ctx, viewer, f)
	if err != nil {
		return nil, err
	}
	if len(shipments) == 0 {
		return nil, shipmenterrors.ErrNoRows
	}

	names, err := s.userNames(ctx)
	if err != nil {
		return nil, err
	}
	plates := map[string]string{}
	plate := func(id string) string {
		if p, ok := plates[id]; ok {
			return p
		}
		p := id
		if v, err := s.vehicles.FindByID(ctx, id); err == nil {
			p = v.PlateNumber
		}
		plates[id] = p
		return p
	}

	file := excelize.NewFile()
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Warn("close workbook failed", zap.Error(err))
		}
	}()
	if err := file.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := file.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	today := s.today(ctx)
	for i, sh := range shipments {
		helper := ""
		if sh.HelperID != nil {
			helper = names[sh.HelperID.String()]
		}
		drops := make([]string, len(sh.Drops))
		for j, d := range sh.Drops {
			drops[j] = d.Name
		}
		completedAt := ""
		if sh.CompletedAt != nil {
			completedAt = sh.CompletedAt.In(s.loc).Format("2006-01-02 15:04")
		}

		row := []any{
			sh.Reference,
			sh.DestinationName,
			sh.DestinationLocation,
			plate(sh.VehicleID.String()),
			names[sh.DriverID.String()],
			helper,
			derefDate(sh.LoadingDate),
			derefDate(sh.DeliveryDate),
			sh.CurrentStatus.String(),
			string(Classify(sh, today)),
			strings.Join(drops, ", "),
			completedAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := file.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *service) userNames(ctx context.Context) (map[string]string, error) {
	users, err := s.users.FindAll(ctx, user.RepoFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID.String()] = u.Name
	}
	return names, nil
}

func derefDate(t *time.Time) string {
	if d := civil.Format(t); d != nil {
		return *d
	}
	return ""
}
