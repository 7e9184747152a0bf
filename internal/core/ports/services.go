package ports

import (
	"context"

	"yanki-wallet-service/internal/core/domain"
)

// WalletService is the cache-aside wallet orchestration layer.
// Every operation degrades to an empty result (nil record or nil slice,
// nil error) when its resilience policy trips; callers must treat empty
// as "not found", never as a failure.
type WalletService interface {
	FindAll(ctx context.Context) ([]domain.Wallet, error)
	FindByID(ctx context.Context, id string) (*domain.Wallet, error)
	FindByIdentityDNI(ctx context.Context, identityDNI string) (*domain.Wallet, error)
	Create(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
	Update(ctx context.Context, id string, patch *domain.Wallet) (*domain.Wallet, error)
	Delete(ctx context.Context, id string) (*domain.Wallet, error)
}
