package service

import (
	"context"

	"yanki-wallet-service/internal/core/domain"
	"yanki-wallet-service/internal/core/ports"
	"yanki-wallet-service/pkg/resilience"

	"github.com/rs/zerolog"
)

// directWalletService is the ports.WalletService used when the cache is
// disabled. Every operation goes straight to the store under the same
// resilience guards as the cached variant.
type directWalletService struct {
	repo   ports.WalletRepository
	reads  *resilience.Policy
	writes *resilience.Policy
	log    zerolog.Logger
}

// NewDirectWalletService builds a store-only wallet service.
func NewDirectWalletService(repo ports.WalletRepository, reads, writes *resilience.Policy, log zerolog.Logger) ports.WalletService {
	return &directWalletService{
		repo:   repo,
		reads:  reads,
		writes: writes,
		log:    log,
	}
}

func (s *directWalletService) FindAll(ctx context.Context) ([]domain.Wallet, error) {
	s.log.Debug().Msg("findAll executed")
	return resilience.Execute(ctx, s.reads, s.repo.FindAll, emptyListFallback(s.log, "findAll"))
}

func (s *directWalletService) FindByID(ctx context.Context, id string) (*domain.Wallet, error) {
	s.log.Debug().Str("wallet_id", id).Msg("findById executed")
	return resilience.Execute(ctx, s.reads,
		func(ctx context.Context) (*domain.Wallet, error) { return s.repo.FindByID(ctx, id) },
		emptyRecordFallback(s.log, "findById", id),
	)
}

func (s *directWalletService) FindByIdentityDNI(ctx context.Context, identityDNI string) (*domain.Wallet, error) {
	s.log.Debug().Str("identity_dni", identityDNI).Msg("findByIdentityDni executed")
	return resilience.Execute(ctx, s.reads,
		func(ctx context.Context) (*domain.Wallet, error) { return s.repo.FindByIdentityDNI(ctx, identityDNI) },
		emptyRecordFallback(s.log, "findByIdentityDni", identityDNI),
	)
}

func (s *directWalletService) Create(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error) {
	s.log.Debug().Str("identity_dni", wallet.IdentityDNI).Msg("create executed")
	return resilience.Execute(ctx, s.writes,
		func(ctx context.Context) (*domain.Wallet, error) { return s.repo.Save(ctx, wallet) },
		emptyRecordFallback(s.log, "create", wallet.IdentityDNI),
	)
}

func (s *directWalletService) Update(ctx context.Context, id string, patch *domain.Wallet) (*domain.Wallet, error) {
	s.log.Debug().Str("wallet_id", id).Msg("update executed")
	return resilience.Execute(ctx, s.writes,
		func(ctx context.Context) (*domain.Wallet, error) { return mergeAndSave(ctx, s.repo, id, patch) },
		emptyRecordFallback(s.log, "update", id),
	)
}

func (s *directWalletService) Delete(ctx context.Context, id string) (*domain.Wallet, error) {
	s.log.Debug().Str("wallet_id", id).Msg("delete executed")
	return resilience.Execute(ctx, s.writes,
		func(ctx context.Context) (*domain.Wallet, error) { return loadAndDelete(ctx, s.repo, id) },
		emptyRecordFallback(s.log, "delete", id),
	)
}
