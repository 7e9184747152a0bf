package ports

import (
	"context"

	"yanki-wallet-service/internal/core/domain"
)

// WalletCacheNamespace is the single hash namespace all cached wallet
// records live under.
const WalletCacheNamespace = "wallet"

// WalletRepository defines persistence operations for wallet records.
// Lookups return nil, nil when no record matches; absence is never an error.
type WalletRepository interface {
	FindAll(ctx context.Context) ([]domain.Wallet, error)
	FindByID(ctx context.Context, id string) (*domain.Wallet, error)
	FindByIdentityDNI(ctx context.Context, identityDNI string) (*domain.Wallet, error)
	// Save inserts the wallet when its ID is empty (assigning one) and
	// updates it otherwise. A duplicate identity document number surfaces
	// as apperror.ErrDuplicateDNI.
	Save(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error)
	Delete(ctx context.Context, wallet *domain.Wallet) error
}

// CacheStore is a namespaced key-value cache mapping record IDs to wallet
// records. Constructed once at startup and closed on shutdown; the core
// only ever populates it, never invalidates.
type CacheStore interface {
	// Values returns every cached record in the namespace; may be empty.
	Values(ctx context.Context, namespace string) ([]domain.Wallet, error)
	// Get returns the cached record for id, or nil, nil on a miss.
	Get(ctx context.Context, namespace, id string) (*domain.Wallet, error)
	// Put stores or overwrites the record under id. Failures are
	// infrastructure errors, not domain errors.
	Put(ctx context.Context, namespace, id string, wallet domain.Wallet) error
	Close() error
}
