package service

import (
	"context"
	"time"

	"yanki-wallet-service/internal/core/domain"
	"yanki-wallet-service/internal/core/ports"
	"yanki-wallet-service/pkg/resilience"

	"github.com/rs/zerolog"
)

// populateTimeout bounds the fire-and-continue cache writes dispatched
// after a findAll cache miss.
const populateTimeout = 2 * time.Second

// cachedWalletService implements ports.WalletService with a cache-aside
// read path: id-keyed lookups consult the cache first and populate it on a
// miss; writes go to the store only and never invalidate the cache.
type cachedWalletService struct {
	repo   ports.WalletRepository
	cache  ports.CacheStore
	reads  *resilience.Policy
	writes *resilience.Policy
	log    zerolog.Logger
}

// NewWalletService builds the cache-aside wallet service. reads guards the
// lookup operations, writes guards create/update/delete.
func NewWalletService(repo ports.WalletRepository, cache ports.CacheStore, reads, writes *resilience.Policy, log zerolog.Logger) ports.WalletService {
	return &cachedWalletService{
		repo:   repo,
		cache:  cache,
		reads:  reads,
		writes: writes,
		log:    log,
	}
}

func (s *cachedWalletService) FindAll(ctx context.Context) ([]domain.Wallet, error) {
	s.log.Debug().Msg("findAll executed")
	return resilience.Execute(ctx, s.reads, s.findAll, emptyListFallback(s.log, "findAll"))
}

func (s *cachedWalletService) findAll(ctx context.Context) ([]domain.Wallet, error) {
	cached, err := s.cache.Values(ctx, ports.WalletCacheNamespace)
	if err != nil {
		return nil, err
	}
	// A non-empty cache is treated as the complete data set; only a fully
	// empty cache falls through to the store.
	if len(cached) > 0 {
		return cached, nil
	}

	wallets, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range wallets {
		s.populate(ctx, w)
	}
	return wallets, nil
}

func (s *cachedWalletService) FindByID(ctx context.Context, id string) (*domain.Wallet, error) {
	s.log.Debug().Str("wallet_id", id).Msg("findById executed")
	return resilience.Execute(ctx, s.reads,
		func(ctx context.Context) (*domain.Wallet, error) { return s.findByID(ctx, id) },
		emptyRecordFallback(s.log, "findById", id),
	)
}

func (s *cachedWalletService) findByID(ctx context.Context, id string) (*domain.Wallet, error) {
	cached, err := s.cache.Get(ctx, ports.WalletCacheNamespace, id)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	w, err := s.repo.FindByID(ctx, id)
	if err != nil || w == nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, ports.WalletCacheNamespace, w.ID, *w); err != nil {
		return nil, err
	}
	return w, nil
}

// FindByIdentityDNI delegates straight to the store: only id-keyed lookups
// are cached.
func (s *cachedWalletService) FindByIdentityDNI(ctx context.Context, identityDNI string) (*domain.Wallet, error) {
	s.log.Debug().Str("identity_dni", identityDNI).Msg("findByIdentityDni executed")
	return resilience.Execute(ctx, s.reads,
		func(ctx context.Context) (*domain.Wallet, error) { return s.repo.FindByIdentityDNI(ctx, identityDNI) },
		emptyRecordFallback(s.log, "findByIdentityDni", identityDNI),
	)
}

// Create persists the wallet and returns it with its store-assigned ID.
// The cache is populated lazily on the next id-keyed read, not here.
func (s *cachedWalletService) Create(ctx context.Context, wallet *domain.Wallet) (*domain.Wallet, error) {
	s.log.Debug().Str("identity_dni", wallet.IdentityDNI).Msg("create executed")
	return resilience.Execute(ctx, s.writes,
		func(ctx context.Context) (*domain.Wallet, error) { return s.repo.Save(ctx, wallet) },
		emptyRecordFallback(s.log, "create", wallet.IdentityDNI),
	)
}

func (s *cachedWalletService) Update(ctx context.Context, id string, patch *domain.Wallet) (*domain.Wallet, error) {
	s.log.Debug().Str("wallet_id", id).Msg("update executed")
	return resilience.Execute(ctx, s.writes,
		func(ctx context.Context) (*domain.Wallet, error) { return mergeAndSave(ctx, s.repo, id, patch) },
		emptyRecordFallback(s.log, "update", id),
	)
}

func (s *cachedWalletService) Delete(ctx context.Context, id string) (*domain.Wallet, error) {
	s.log.Debug().Str("wallet_id", id).Msg("delete executed")
	return resilience.Execute(ctx, s.writes,
		func(ctx context.Context) (*domain.Wallet, error) { return loadAndDelete(ctx, s.repo, id) },
		emptyRecordFallback(s.log, "delete", id),
	)
}

// populate dispatches a best-effort cache write and returns immediately.
// Concurrent populations of the same id write equivalent data, so the race
// is benign; failures are logged and otherwise ignored.
func (s *cachedWalletService) populate(ctx context.Context, w domain.Wallet) {
	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), populateTimeout)
		defer cancel()
		if err := s.cache.Put(pctx, ports.WalletCacheNamespace, w.ID, w); err != nil {
			s.log.Warn().Err(err).Str("wallet_id", w.ID).Msg("cache population failed")
		}
	}()
}

// mergeAndSave loads the existing record, merges every field except ID from
// the patch, and persists the result. A missing id yields nil, nil: update
// never creates.
func mergeAndSave(ctx context.Context, repo ports.WalletRepository, id string, patch *domain.Wallet) (*domain.Wallet, error) {
	existing, err := repo.FindByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}
	existing.Merge(patch)
	return repo.Save(ctx, existing)
}

// loadAndDelete deletes the record if it exists and returns it as
// confirmation. A missing id completes with nil, nil and issues no delete.
func loadAndDelete(ctx context.Context, repo ports.WalletRepository, id string) (*domain.Wallet, error) {
	existing, err := repo.FindByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}
	if err := repo.Delete(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func emptyListFallback(log zerolog.Logger, op string) func(context.Context, error) ([]domain.Wallet, error) {
	return func(ctx context.Context, cause error) ([]domain.Wallet, error) {
		log.Warn().Err(cause).Str("operation", op).Msg("operation degraded to empty result")
		return nil, nil
	}
}

func emptyRecordFallback(log zerolog.Logger, op, arg string) func(context.Context, error) (*domain.Wallet, error) {
	return func(ctx context.Context, cause error) (*domain.Wallet, error) {
		log.Warn().Err(cause).Str("operation", op).Str("arg", arg).Msg("operation degraded to empty result")
		return nil, nil
	}
}
