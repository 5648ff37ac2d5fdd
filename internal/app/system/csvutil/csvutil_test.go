package csvutil

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/condopay/condopay/internal/domain/models"
)

func samplePayments() []models.Payment {
	ts := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	paid := time.Date(2024, 3, 7, 23, 30, 0, 0, time.UTC)
	return []models.Payment{
		{TenantName: "Jane Doe", UnitNo: "4A", MonthlyRent: 1200, Status: models.PaymentCompleted, Timestamp: ts, PaymentDate: &paid, TransactionID: "tx-1"},
		{TenantEmail: "bob@example.com", UnitNo: "2B", MonthlyRent: 950.5, Status: models.PaymentPending, Timestamp: ts},
		{TenantName: "=cmd()", UnitNo: "1C", MonthlyRent: 0, Status: models.PaymentFailed, Timestamp: ts},
	}
}

func TestPaymentRows(t *testing.T) {
	rows := PaymentRows(samplePayments(), nil)

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Date.Day() != 7 {
		t.Errorf("expected payment date to win over timestamp, got %v", rows[0].Date)
	}
	if rows[1].Tenant != "bob@example.com" {
		t.Errorf("expected email fallback for tenant name, got %q", rows[1].Tenant)
	}
}

func TestPaymentRows_Location(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	rows := PaymentRows(samplePayments()[:1], ny)
	if got := rows[0].Record()[4]; got != "2024-03-07" {
		t.Errorf("expected local date 2024-03-07, got %q", got)
	}
}

func TestWritePayments(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePayments(&buf, PaymentRows(samplePayments(), time.UTC)); err != nil {
		t.Fatalf("WritePayments failed: %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("expected UTF-8 BOM")
	}
	body := string(out[3:])
	if !strings.Contains(body, "\r\n") {
		t.Error("expected CRLF line endings")
	}

	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("re-read CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], "|") != "Tenant|Unit|Amount|Status|Date|Transaction ID" {
		t.Errorf("unexpected header: %v", records[0])
	}
	want := []string{"Jane Doe", "4A", "1200.00", "completed", "2024-03-07", "tx-1"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("row 1 col %d: got %q, want %q", i, records[1][i], v)
		}
	}
	if records[3][0] != "'=cmd()" {
		t.Errorf("expected formula to be neutralized, got %q", records[3][0])
	}
}

func TestWritePayments_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePayments(&buf, nil); err != nil {
		t.Fatalf("WritePayments failed: %v", err)
	}
	records, _ := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	if len(records) != 1 {
		t.Errorf("expected header only, got %d records", len(records))
	}
}

func TestSanitizeField(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"plain":   "plain",
		"=1+1":    "'=1+1",
		"+sum":    "'+sum",
		"-2":      "'-2",
		"@handle": "'@handle",
	}
	for in, want := range tests {
		if got := SanitizeField(in); got != want {
			t.Errorf("SanitizeField(%q) = %q, want %q", in, got, want)
		}
	}
}
