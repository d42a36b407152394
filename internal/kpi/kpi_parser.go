package kpi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	kpierrors "go-fleetpay/internal/kpi/errors"
	"go-fleetpay/internal/shared/apperror"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const headerScanRows = 10

// Row is one parsed KPI line before it is matched to a user.
type Row struct {
	Line       int
	Name       string
	Trips      int
	OnTimeRate decimal.Decimal
	Score      decimal.Decimal
}

type columns struct {
	name, trips, onTime, score int
}

func isNameHeader(h string) bool {
	return strings.Contains(h, "name") || strings.Contains(h, "employee") || strings.Contains(h, "driver")
}

// locate finds the header row and the column of each known field. Missing
// optional columns stay at -1.
func locate(rows [][]string) (int, columns, bool) {
	limit := headerScanRows
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		cols := columns{name: -1, trips: -1, onTime: -1, score: -1}
		for j, cell := range rows[i] {
			h := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case h == "":
			case cols.name < 0 && isNameHeader(h):
				cols.name = j
			case cols.trips < 0 && strings.Contains(h, "trip"):
				cols.trips = j
			case cols.onTime < 0 && (strings.Contains(h, "on-time") || strings.Contains(h, "on time") || strings.Contains(h, "ontime")):
				cols.onTime = j
			case cols.score < 0 && strings.Contains(h, "score"):
				cols.score = j
			}
		}
		if cols.name >= 0 {
			return i, cols, true
		}
	}
	return 0, columns{}, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// Parse reads the first sheet of an xlsx workbook. Rows are read from below
// the header until the first blank name.
func Parse(r io.Reader) ([]Row, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, kpierrors.ErrUnreadable.WithCause(err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, kpierrors.ErrUnreadable
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, kpierrors.ErrUnreadable.WithCause(err)
	}

	header, cols, ok := locate(rows)
	if !ok {
		return nil, kpierrors.ErrHeaderNotFound
	}

	var out []Row
	for i := header + 1; i < len(rows); i++ {
		name := cell(rows[i], cols.name)
		if name == "" {
			break
		}
		line := i + 1

		row := Row{Line: line, Name: name, OnTimeRate: decimal.Zero, Score: decimal.Zero}
		if v := cell(rows[i], cols.trips); v != "" {
			trips, err := parseNumber(v)
			if err != nil {
				return nil, invalidCell(line, "trips", v)
			}
			row.Trips = int(trips.IntPart())
		}
		if v := cell(rows[i], cols.onTime); v != "" {
			rate, err := parseNumber(v)
			if err != nil {
				return nil, invalidCell(line, "on-time", v)
			}
			row.OnTimeRate = rate.Round(2)
		}
		if v := cell(rows[i], cols.score); v != "" {
			score, err := parseNumber(v)
			if err != nil {
				return nil, invalidCell(line, "score", v)
			}
			row.Score = score.Round(2)
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, kpierrors.ErrNoRows
	}
	return out, nil
}

func invalidCell(line int, column, value string) error {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("row %d: %s value %q is not a number", line, column, value),
		http.StatusBadRequest,
	)
}
