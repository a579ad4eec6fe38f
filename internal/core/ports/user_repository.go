package ports

import (
	"context"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
)

// UserRepository defines the persistence interface for user accounts.
//
// FindByID and FindByEmail return users without the password hash; only
// FindByEmailWithPassword loads it, for the credential verification path.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastActive(ctx context.Context, id string) error
}
