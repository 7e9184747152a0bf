package integration

import (
	"context"
	"errors"
	"sync"

	"yanki-wallet-service/internal/core/domain"
	"yanki-wallet-service/pkg/apperror"

	"github.com/google/uuid"
)

// inMemoryWalletRepo is a map-backed ports.WalletRepository with the same
// contract as the postgres adapter: lookups report absence as nil, nil and
// inserts enforce identity_dni uniqueness.
type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[string]domain.Wallet
	failing bool
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[string]domain.Wallet)}
}

// setFailing makes every subsequent call return an error, simulating a
// store outage.
func (r *inMemoryWalletRepo) setFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

func (r *inMemoryWalletRepo) checkUp() error {
	if r.failing {
		return errors.New("store unavailable")
	}
	return nil
}

func (r *inMemoryWalletRepo) FindAll(ctx context.Context) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.checkUp(); err != nil {
		return nil, err
	}
	out := make([]domain.Wallet, 0, len(r.wallets))
	for _, w := range r.wallets {
		out = append(out, w)
	}
	return out, nil
}

func (r *inMemoryWalletRepo) FindByID(ctx context.Context, id string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.checkUp(); err != nil {
		return nil, err
	}
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *inMemoryWalletRepo) FindByIdentityDNI(ctx context.Context, identityDNI string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.checkUp(); err != nil {
		return nil, err
	}
	for _, w := range r.wallets {
		if w.IdentityDNI == identityDNI {
			return &w, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) Save(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUp(); err != nil {
		return nil, err
	}

	if wallet.ID == "" {
		for _, existing := range r.wallets {
			if existing.IdentityDNI == wallet.IdentityDNI {
				return nil, apperror.ErrDuplicateDNI(wallet.IdentityDNI)
			}
		}
		stored := *wallet
		stored.ID = uuid.NewString()
		r.wallets[stored.ID] = stored
		return &stored, nil
	}

	if _, ok := r.wallets[wallet.ID]; !ok {
		return nil, errors.New("no wallet row updated")
	}
	r.wallets[wallet.ID] = *wallet
	stored := *wallet
	return &stored, nil
}

func (r *inMemoryWalletRepo) Delete(ctx context.Context, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkUp(); err != nil {
		return err
	}
	delete(r.wallets, wallet.ID)
	return nil
}
