package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"yanki-wallet-service/internal/core/domain"
	"yanki-wallet-service/internal/core/ports"
	"yanki-wallet-service/internal/core/ports/mocks"
	"yanki-wallet-service/pkg/resilience"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestPolicy(t *testing.T, name string) *resilience.Policy {
	t.Helper()
	return resilience.NewPolicy(name, resilience.Config{
		FailureRateThreshold: 0.5,
		SlidingWindowSize:    100,
		OpenStateWait:        time.Minute,
		HalfOpenCalls:        1,
		CallTimeout:          time.Second,
	}, newTestLogger())
}

func newCachedService(t *testing.T, repo ports.WalletRepository, cache ports.CacheStore) ports.WalletService {
	t.Helper()
	return NewWalletService(repo, cache,
		newTestPolicy(t, "walletCircuit"),
		newTestPolicy(t, "recordCircuit"),
		newTestLogger())
}

func testWallet(id string) domain.Wallet {
	return domain.Wallet{
		ID:           id,
		IdentityDNI:  "40123456",
		PhoneNumber:  "987654321",
		Balance:      decimal.NewFromFloat(150.50),
		LinkedCardID: uuid.NewString(),
	}
}

func TestWalletService_FindByID_ColdThenWarm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	id := uuid.NewString()
	w := testWallet(id)

	// First call: cache miss, store hit, cache populated.
	mockCache.EXPECT().Get(gomock.Any(), ports.WalletCacheNamespace, id).Return(nil, nil)
	mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(&w, nil).Times(1)
	mockCache.EXPECT().Put(gomock.Any(), ports.WalletCacheNamespace, id, w).Return(nil)

	got, err := svc.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)

	// Second call: served from the cache, store untouched.
	mockCache.EXPECT().Get(gomock.Any(), ports.WalletCacheNamespace, id).Return(&w, nil)

	got, err = svc.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "40123456", got.IdentityDNI)
}

func TestWalletService_FindByID_AbsentYieldsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	id := uuid.NewString()
	mockCache.EXPECT().Get(gomock.Any(), ports.WalletCacheNamespace, id).Return(nil, nil)
	mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(nil, nil)

	got, err := svc.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWalletService_FindByID_StoreErrorDegradesToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	id := uuid.NewString()
	mockCache.EXPECT().Get(gomock.Any(), ports.WalletCacheNamespace, id).Return(nil, nil)
	mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(nil, errors.New("connection refused"))

	got, err := svc.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWalletService_FindAll_WarmCacheIsAuthoritative(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	cached := []domain.Wallet{testWallet(uuid.NewString()), testWallet(uuid.NewString())}
	mockCache.EXPECT().Values(gomock.Any(), ports.WalletCacheNamespace).Return(cached, nil)

	got, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWalletService_FindAll_ColdCacheFallsThroughAndPopulates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	stored := []domain.Wallet{testWallet(uuid.NewString()), testWallet(uuid.NewString())}
	mockCache.EXPECT().Values(gomock.Any(), ports.WalletCacheNamespace).Return(nil, nil)
	mockRepo.EXPECT().FindAll(gomock.Any()).Return(stored, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	mockCache.EXPECT().Put(gomock.Any(), ports.WalletCacheNamespace, gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, ns, key string, w domain.Wallet) error {
			wg.Done()
			return nil
		},
	).Times(2)

	got, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cache not populated in time")
	}
}

func TestWalletService_FindAll_PopulationFailureDoesNotAffectResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	stored := []domain.Wallet{testWallet(uuid.NewString())}
	mockCache.EXPECT().Values(gomock.Any(), ports.WalletCacheNamespace).Return(nil, nil)
	mockRepo.EXPECT().FindAll(gomock.Any()).Return(stored, nil)

	done := make(chan struct{})
	mockCache.EXPECT().Put(gomock.Any(), ports.WalletCacheNamespace, gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, ns, key string, w domain.Wallet) error {
			close(done)
			return errors.New("redis unavailable")
		},
	)

	got, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("population attempt not observed")
	}
}

func TestWalletService_FindByIdentityDNI_BypassesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	w := testWallet(uuid.NewString())
	mockRepo.EXPECT().FindByIdentityDNI(gomock.Any(), "40123456").Return(&w, nil)

	got, err := svc.FindByIdentityDNI(context.Background(), "40123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.ID, got.ID)
}

func TestWalletService_Create_ReturnsPersistedRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	input := testWallet("")
	persisted := input
	persisted.ID = uuid.NewString()
	mockRepo.EXPECT().Save(gomock.Any(), &input).Return(&persisted, nil)

	got, err := svc.Create(context.Background(), &input)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotEmpty(t, got.ID)
}

func TestWalletService_Create_DuplicateDegradesToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	input := testWallet("")
	mockRepo.EXPECT().Save(gomock.Any(), &input).Return(nil, errors.New("duplicate identity_dni"))

	got, err := svc.Create(context.Background(), &input)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWalletService_Update_MergesAllFieldsExceptID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	id := uuid.NewString()
	existing := testWallet(id)
	patch := domain.Wallet{
		IdentityDNI:  "40123456",
		PhoneNumber:  "911111111",
		Balance:      decimal.NewFromInt(999),
		LinkedCardID: existing.LinkedCardID,
	}

	mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(&existing, nil)
	mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, w *domain.Wallet) (*domain.Wallet, error) {
			assert.Equal(t, id, w.ID)
			assert.Equal(t, "911111111", w.PhoneNumber)
			assert.True(t, w.Balance.Equal(decimal.NewFromInt(999)))
			return w, nil
		},
	)

	got, err := svc.Update(context.Background(), id, &patch)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "911111111", got.PhoneNumber)
}

func TestWalletService_Update_AbsentRecordDoesNotCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	id := uuid.NewString()
	patch := testWallet("")

	// No Save expectation: update of a missing id must not write.
	mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(nil, nil)

	got, err := svc.Update(context.Background(), id, &patch)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWalletService_Delete_ReturnsDeletedRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	id := uuid.NewString()
	existing := testWallet(id)
	mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(&existing, nil)
	mockRepo.EXPECT().Delete(gomock.Any(), &existing).Return(nil)

	got, err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestWalletService_Delete_AbsentRecordIssuesNoDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)
	svc := newCachedService(t, mockRepo, mockCache)

	id := uuid.NewString()
	mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(nil, nil)

	got, err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWalletService_OpenCircuitShortCircuitsReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	mockCache := mocks.NewMockCacheStore(ctrl)

	// Window of 1 so a single failure trips the breaker.
	reads := resilience.NewPolicy("walletCircuit", resilience.Config{
		FailureRateThreshold: 0.5,
		SlidingWindowSize:    1,
		OpenStateWait:        time.Minute,
		HalfOpenCalls:        1,
		CallTimeout:          time.Second,
	}, newTestLogger())
	svc := NewWalletService(mockRepo, mockCache, reads, newTestPolicy(t, "recordCircuit"), newTestLogger())

	id := uuid.NewString()
	mockCache.EXPECT().Get(gomock.Any(), ports.WalletCacheNamespace, id).Return(nil, errors.New("redis down"))

	got, err := svc.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Breaker is now open: neither cache nor store may be touched, yet every
	// read still gets an empty result immediately.
	got, err = svc.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, all)

	got, err = svc.FindByIdentityDNI(context.Background(), "40123456")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDirectWalletService_SkipsCacheEntirely(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewDirectWalletService(mockRepo,
		newTestPolicy(t, "walletCircuit"),
		newTestPolicy(t, "recordCircuit"),
		newTestLogger())

	id := uuid.NewString()
	w := testWallet(id)
	mockRepo.EXPECT().FindByID(gomock.Any(), id).Return(&w, nil).Times(2)

	for i := 0; i < 2; i++ {
		got, err := svc.FindByID(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
	}

	stored := []domain.Wallet{w}
	mockRepo.EXPECT().FindAll(gomock.Any()).Return(stored, nil)
	all, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
