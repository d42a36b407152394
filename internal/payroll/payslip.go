package payroll

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go-fleetpay/internal/domain"

	"github.com/shopspring/decimal"
)

const payslipLinesPerPage = 48

// Payslip renders one crew member's ledger for a period as a PDF.
func (s *service) Payslip(ctx context.Context, viewer domain.Viewer, periodID, userID string) ([]byte, error) {
	ledger, err := s.Ledger(ctx, viewer, periodID, userID)
	if err != nil {
		return nil, err
	}
	return renderPayslipPDF(payslipLines(ledger))
}

func payslipLines(l LedgerResponse) []string {
	amt := func(d decimal.Decimal) string { return d.StringFixed(2) }

	lines := []string{
		"PAYSLIP",
		"Period: " + l.Period.Name + " (" + l.Period.StartDate + " - " + l.Period.EndDate + ")",
		"Name: " + l.Summary.Name + "  Role: " + l.Summary.Role,
		"",
		"Trips",
	}
	for _, li := range l.LineItems {
		date := ""
		if li.DeliveryDate != nil {
			date = *li.DeliveryDate
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s  fee %s  allowance %s",
			date, li.Reference, li.Destination, amt(li.BaseFee), amt(li.Allowance)))
	}
	lines = append(lines, "", "Adjustments")
	for _, a := range l.Adjustments {
		line := fmt.Sprintf("  %s %s  %s", a.Type, amt(a.Amount), a.Reason)
		if a.Status == StatusVoid {
			line += "  [VOID]"
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", "Payments")
	for _, p := range l.Payments {
		line := fmt.Sprintf("  %s  %s", p.PaidAt[:10], amt(p.Amount))
		if p.Status == StatusVoid {
			line += "  [VOID]"
		}
		lines = append(lines, line)
	}
	sum := l.Summary
	lines = append(lines,
		"",
		"Base pay: "+amt(sum.TotalBasePay),
		"Allowance: "+amt(sum.TotalAllowance),
		"Bonus: "+amt(sum.TotalBonus),
		"Deductions: "+amt(sum.TotalDeductions),
		"Net salary: "+amt(sum.NetSalary),
		"Paid: "+amt(sum.TotalPaid),
		"Status: "+sum.Status,
	)
	return lines
}

// renderPayslipPDF writes a plain Helvetica PDF, one text block per page.
func renderPayslipPDF(lines []string) ([]byte, error) {
	if len(lines) == 0 {
		lines = []string{"Payslip"}
	}
	var pages [][]string
	for len(lines) > 0 {
		n := payslipLinesPerPage
		if n > len(lines) {
			n = len(lines)
		}
		pages = append(pages, lines[:n])
		lines = lines[n:]
	}

	// Objects: 1 catalog, 2 pages, 3 font, then a page and a content stream per page.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i, page := range pages {
		var content strings.Builder
		content.WriteString("BT\n/F1 10 Tf\n14 TL\n40 800 Td\n")
		for j, line := range page {
			if j > 0 {
				content.WriteString("T* ")
			}
			fmt.Fprintf(&content, "(%s) Tj\n", pdfEscape(line))
		}
		content.WriteString("ET")
		stream := content.String()

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(objects)+1, xref)
	return out.Bytes(), nil
}

func pdfEscape(v string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(v)
}
