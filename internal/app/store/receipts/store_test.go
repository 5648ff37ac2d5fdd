package receipts_test

import (
	"errors"
	"testing"

	"github.com/condopay/condopay/internal/app/store/receipts"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/condopay/condopay/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Issue_OncePerPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := receipts.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	p := models.Payment{ID: primitive.NewObjectID(), TenantID: "t1", BuildingID: "b1", MonthlyRent: 1000, TransactionID: "txn-1"}
	rc, err := store.Issue(ctx, p, "admin-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if rc.Amount != 1000 || rc.TransactionID != "txn-1" || rc.IssuedBy != "admin-1" {
		t.Errorf("unexpected receipt: %+v", rc)
	}

	if _, err := store.Issue(ctx, p, "admin-1"); !errors.Is(err, receipts.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	got, err := store.GetByPayment(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByPayment failed: %v", err)
	}
	if got.ID != rc.ID {
		t.Errorf("expected receipt %s, got %s", rc.ID.Hex(), got.ID.Hex())
	}
}
