package registration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sabadototal/internal/adapters/storage"
	domain "sabadototal/internal/domain/registration"
)

const columns = "id, child_name, birth_date, guardian_name, guardian_whatsapp, age_group, has_dietary_restriction, dietary_restriction_details, info_consent, supervision_consent, status, payment_status, submission_date"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new registration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanRegistration(scan func(dest ...any) error) (domain.Registration, error) {
	var entity domain.Registration
	var birthDate, submissionDate string
	var infoConsent, supervisionConsent int
	err := scan(
		&entity.ID,
		&entity.ChildName,
		&birthDate,
		&entity.GuardianName,
		&entity.GuardianWhatsapp,
		&entity.AgeGroup,
		&entity.HasDietaryRestriction,
		&entity.DietaryRestrictionDetails,
		&infoConsent,
		&supervisionConsent,
		&entity.Status,
		&entity.PaymentStatus,
		&submissionDate,
	)
	if err != nil {
		return domain.Registration{}, err
	}
	entity.InfoConsent = infoConsent != 0
	entity.SupervisionConsent = supervisionConsent != 0
	if entity.BirthDate, err = time.Parse(time.RFC3339, birthDate); err != nil {
		return domain.Registration{}, fmt.Errorf("parse birth_date: %w", err)
	}
	if entity.SubmissionDate, err = time.Parse(time.RFC3339, submissionDate); err != nil {
		return domain.Registration{}, fmt.Errorf("parse submission_date: %w", err)
	}
	return entity, nil
}

// GetByID retrieves a Registration by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	query := "SELECT " + columns + " FROM registration WHERE id = ?"

	row := s.db.QueryRowContext(ctx, query, id)
	entity, err := scanRegistration(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Registration{}, fmt.Errorf("registration not found: %w", err)
	}
	return entity, err
}

// Save persists a Registration to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Registration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Upsert implementation
	fields := strings.Split(columns, ", ")
	placeholders := make([]string, len(fields))
	updates := make([]string, 0, len(fields)-1)
	for i, f := range fields {
		placeholders[i] = "?"
		if f != "id" {
			updates = append(updates, f+"=excluded."+f)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO registration (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		columns,
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		entity.ID,
		entity.ChildName,
		entity.BirthDate.UTC().Format(time.RFC3339),
		entity.GuardianName,
		entity.GuardianWhatsapp,
		entity.AgeGroup,
		entity.HasDietaryRestriction,
		entity.DietaryRestrictionDetails,
		boolToInt(entity.InfoConsent),
		boolToInt(entity.SupervisionConsent),
		entity.Status,
		entity.PaymentStatus,
		entity.SubmissionDate.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// List retrieves all registrations, most recent submission first.
// POST: Returns entities ordered by submission_date DESC
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Registration, error) {
	query := "SELECT " + columns + " FROM registration ORDER BY submission_date DESC, id"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Registration
	for rows.Next() {
		entity, err := scanRegistration(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// CountByChildName returns how many registrations exist for a child name.
// PRE: childName is trimmed
// POST: Returns count >= 0
func (s *SQLiteStore) CountByChildName(ctx context.Context, childName string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM registration WHERE child_name = ?", childName).Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
