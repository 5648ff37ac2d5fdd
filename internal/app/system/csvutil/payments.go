// internal/app/system/csvutil/payments.go
package csvutil

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/condopay/condopay/internal/domain/models"
)

// PaymentHeader is the column order of payment exports.
var PaymentHeader = []string{"Tenant", "Unit", "Amount", "Status", "Date", "Transaction ID"}

// DateLayout formats export dates.
const DateLayout = "2006-01-02"

// PaymentRow is one exported payment.
type PaymentRow struct {
	Tenant        string
	Unit          string
	Amount        float64
	Status        string
	Date          time.Time
	TransactionID string
}

// PaymentRows converts payments into export rows, one per payment, in input
// order. Date is the payment date when set, the creation time otherwise,
// expressed in loc.
func PaymentRows(payments []models.Payment, loc *time.Location) []PaymentRow {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		d := p.Timestamp
		if p.PaymentDate != nil && !p.PaymentDate.IsZero() {
			d = *p.PaymentDate
		}
		name := p.TenantName
		if name == "" {
			name = p.TenantEmail
		}
		rows = append(rows, PaymentRow{
			Tenant:        name,
			Unit:          p.UnitNo,
			Amount:        p.MonthlyRent,
			Status:        p.Status,
			Date:          d.In(loc),
			TransactionID: p.TransactionID,
		})
	}
	return rows
}

// Record returns row's fields in PaymentHeader order.
func (row PaymentRow) Record() []string {
	date := ""
	if !row.Date.IsZero() {
		date = row.Date.Format(DateLayout)
	}
	return []string{
		SanitizeField(row.Tenant),
		SanitizeField(row.Unit),
		strconv.FormatFloat(row.Amount, 'f', 2, 64),
		row.Status,
		date,
		SanitizeField(row.TransactionID),
	}
}

// WritePayments writes a UTF-8 BOM, the header and one CRLF-terminated
// record per row.
func WritePayments(w io.Writer, rows []PaymentRow) error {
	// UTF-8 BOM for Excel
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(PaymentHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SanitizeField neutralizes values a spreadsheet would evaluate as formulas.
func SanitizeField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
