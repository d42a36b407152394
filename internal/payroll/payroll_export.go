package payroll

import (
	"context"

	payrollerrors "go-fleetpay/internal/payroll/errors"
	"go-fleetpay/internal/shared/civil"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	summarySheet = "Summary"
	linesSheet   = "Line Items"
)

var (
	summaryHeader = []any{
		"Name", "Role", "Base Pay", "Allowance", "Bonus", "Deductions", "Paid", "Net Salary", "Status",
	}
	linesHeader = []any{
		"Reference", "Destination", "Delivery Date", "Crew", "Role", "Base Fee", "Allowance",
	}
)

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func (s *service) Export(ctx context.Context, periodID string) ([]byte, error) {
	period, err := s.findPeriod(ctx, s.repo, periodID)
	if err != nil {
		return nil, err
	}
	rows, err := s.summary(ctx, s.repo, periodID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, payrollerrors.ErrNoRows
	}
	lines, err := s.repo.ListLineItems(ctx, periodID, "")
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Warn("close workbook failed", zap.Error(err))
		}
	}()
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(linesSheet); err != nil {
		return nil, err
	}
	if err := file.SetDocProps(&excelize.DocProperties{Title: "Payroll " + period.Name}); err != nil {
		return nil, err
	}

	if err := file.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return nil, err
	}
	for i, r := range rows {
		row := []any{
			r.Name, r.Role,
			money(r.TotalBasePay), money(r.TotalAllowance), money(r.TotalBonus),
			money(r.TotalDeductions), money(r.TotalPaid), money(r.NetSalary),
			r.Status,
		}
		if err := setRow(file, summarySheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := file.SetSheetRow(linesSheet, "A1", &linesHeader); err != nil {
		return nil, err
	}
	for i, l := range lines {
		delivery := ""
		if d := civil.Format(l.DeliveryDate); d != nil {
			delivery = *d
		}
		row := []any{
			l.Reference, l.Destination, delivery, l.CrewName, l.CrewRole,
			money(l.BaseFee), money(l.Allowance),
		}
		if err := setRow(file, linesSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(file *excelize.File, sheet string, n int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return file.SetSheetRow(sheet, cell, &row)
}
