package postgres

import (
	"context"
	"errors"
	"fmt"

	"yanki-wallet-service/internal/core/domain"
	"yanki-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// WalletRepo implements ports.WalletRepository over the wallets table.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// FindAll returns every wallet in store order.
func (r *WalletRepo) FindAll(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT id, identity_dni, phone_number, balance, linked_card_id, date_register, scan_available, prefetch
		FROM wallets`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(
			&w.ID, &w.IdentityDNI, &w.PhoneNumber, &w.Balance,
			&w.LinkedCardID, &w.DateRegister, &w.ScanAvailable, &w.Prefetch,
		); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// FindByID fetches a wallet by its ID. Returns nil, nil when absent.
func (r *WalletRepo) FindByID(ctx context.Context, id string) (*domain.Wallet, error) {
	query := `SELECT id, identity_dni, phone_number, balance, linked_card_id, date_register, scan_available, prefetch
		FROM wallets WHERE id = $1`

	return r.queryOne(ctx, query, id)
}

// FindByIdentityDNI fetches a wallet by its unique identity document
// number. Returns nil, nil when absent.
func (r *WalletRepo) FindByIdentityDNI(ctx context.Context, identityDNI string) (*domain.Wallet, error) {
	query := `SELECT id, identity_dni, phone_number, balance, linked_card_id, date_register, scan_available, prefetch
		FROM wallets WHERE identity_dni = $1`

	return r.queryOne(ctx, query, identityDNI)
}

func (r *WalletRepo) queryOne(ctx context.Context, query string, arg any) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&w.ID, &w.IdentityDNI, &w.PhoneNumber, &w.Balance,
		&w.LinkedCardID, &w.DateRegister, &w.ScanAvailable, &w.Prefetch,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// Save inserts the wallet when its ID is empty, assigning a fresh one, and
// updates the existing row otherwise. The unique index on identity_dni
// surfaces as apperror.ErrDuplicateDNI.
func (r *WalletRepo) Save(ctx context.Context, w *domain.Wallet) (*domain.Wallet, error) {
	if w.ID == "" {
		saved := *w
		saved.ID = uuid.NewString()

		query := `INSERT INTO wallets (id, identity_dni, phone_number, balance, linked_card_id, date_register, scan_available, prefetch)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

		_, err := r.pool.Exec(ctx, query,
			saved.ID, saved.IdentityDNI, saved.PhoneNumber, saved.Balance,
			saved.LinkedCardID, saved.DateRegister, saved.ScanAvailable, saved.Prefetch,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, apperror.ErrDuplicateDNI(saved.IdentityDNI)
			}
			return nil, fmt.Errorf("insert wallet: %w", err)
		}
		return &saved, nil
	}

	query := `UPDATE wallets
		SET identity_dni = $1, phone_number = $2, balance = $3, linked_card_id = $4,
			date_register = $5, scan_available = $6, prefetch = $7
		WHERE id = $8`

	tag, err := r.pool.Exec(ctx, query,
		w.IdentityDNI, w.PhoneNumber, w.Balance, w.LinkedCardID,
		w.DateRegister, w.ScanAvailable, w.Prefetch, w.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.ErrDuplicateDNI(w.IdentityDNI)
		}
		return nil, fmt.Errorf("update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("wallet not found: %s", w.ID)
	}
	return w, nil
}

// Delete removes the wallet row. Deleting an already-absent row is a no-op.
func (r *WalletRepo) Delete(ctx context.Context, w *domain.Wallet) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, w.ID); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
