package registration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"sabadototal/internal/adapters/storage"
	domain "sabadototal/internal/domain/registration"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return NewSQLiteStore(db)
}

func testRegistration(id string) domain.Registration {
	return domain.Registration{
		ID:                    id,
		ChildName:             "Ana Silva",
		BirthDate:             time.Date(2016, 5, 10, 0, 0, 0, 0, time.UTC),
		GuardianName:          "Maria Silva",
		GuardianWhatsapp:      "(11) 98765-4321",
		AgeGroup:              domain.AgeGroupPrimarios,
		HasDietaryRestriction: domain.DietaryNao,
		InfoConsent:           true,
		SupervisionConsent:    true,
		Status:                domain.StatusPendente,
		PaymentStatus:         domain.PaymentPending,
		SubmissionDate:        time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

// TestSaveAndGetByID tests the persistence round trip.
func TestSaveAndGetByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testRegistration("r1")
	want.HasDietaryRestriction = domain.DietarySim
	want.DietaryRestrictionDetails = "Alergia a amendoim"
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.ChildName != want.ChildName ||
		got.DietaryRestrictionDetails != want.DietaryRestrictionDetails ||
		!got.BirthDate.Equal(want.BirthDate) ||
		!got.SubmissionDate.Equal(want.SubmissionDate) ||
		!got.InfoConsent || !got.SupervisionConsent {
		t.Errorf("GetByID() = %+v, want %+v", got, want)
	}
}

// TestGetByID_NotFound tests the missing-row error path.
func TestGetByID_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetByID(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

// TestSave_Upsert tests that saving twice updates in place.
func TestSave_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	reg := testRegistration("r1")
	if err := store.Save(ctx, reg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reg.PaymentStatus = domain.PaymentPaid
	reg.Status = domain.StatusConfirmado
	if err := store.Save(ctx, reg); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	got, err := store.GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.PaymentStatus != domain.PaymentPaid || got.Status != domain.StatusConfirmado {
		t.Errorf("upsert did not apply: payment=%s status=%s", got.PaymentStatus, got.Status)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 row after upsert, got %d", len(all))
	}
}

// TestList_OrderedBySubmission tests newest-first ordering.
func TestList_OrderedBySubmission(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testRegistration("r-old")
	older.SubmissionDate = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := testRegistration("r-new")
	newer.ChildName = "Bruno Costa"
	newer.SubmissionDate = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	for _, r := range []domain.Registration{older, newer} {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save(%s) error: %v", r.ID, err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d rows, want 2", len(got))
	}
	if got[0].ID != "r-new" || got[1].ID != "r-old" {
		t.Errorf("order = [%s, %s], want [r-new, r-old]", got[0].ID, got[1].ID)
	}
}

// TestCountByChildName tests the duplicate pre-check query.
func TestCountByChildName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRegistration("r1")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	n, err := store.CountByChildName(ctx, "Ana Silva")
	if err != nil {
		t.Fatalf("CountByChildName() error: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByChildName(Ana Silva) = %d, want 1", n)
	}

	n, err = store.CountByChildName(ctx, "Bruno Costa")
	if err != nil {
		t.Fatalf("CountByChildName() error: %v", err)
	}
	if n != 0 {
		t.Errorf("CountByChildName(Bruno Costa) = %d, want 0", n)
	}
}
