package registration

import (
	"context"

	domain "sabadototal/internal/domain/registration"
)

// Store persists Registration state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Registration, error)
	Save(ctx context.Context, value domain.Registration) error
	List(ctx context.Context) ([]domain.Registration, error)
	CountByChildName(ctx context.Context, childName string) (int, error)
}
