package dto

import (
	"fmt"
	"time"

	"yanki-wallet-service/internal/core/domain"

	"github.com/shopspring/decimal"
)

// dateLayout is the wire format for the registration date.
const dateLayout = "2006-01-02"

// WalletRequest is the request body for creating or updating a wallet.
type WalletRequest struct {
	IdentityDNI  string          `json:"identity_dni" binding:"required,dni"`
	PhoneNumber  string          `json:"phone_number" binding:"required,max=9"`
	Balance      decimal.Decimal `json:"balance" binding:"required"`
	LinkedCardID string          `json:"linked_card_id" binding:"required,max=36"`
	DateRegister *string         `json:"date_register,omitempty"`
}

// ToDomain converts the request into a domain record. The id is never
// taken from the body; routes that need one carry it in the path.
func (r *WalletRequest) ToDomain() (*domain.Wallet, error) {
	w := &domain.Wallet{
		IdentityDNI:  r.IdentityDNI,
		PhoneNumber:  r.PhoneNumber,
		Balance:      r.Balance,
		LinkedCardID: r.LinkedCardID,
	}
	if r.DateRegister != nil && *r.DateRegister != "" {
		d, err := time.Parse(dateLayout, *r.DateRegister)
		if err != nil {
			return nil, fmt.Errorf("invalid date_register %q: expected YYYY-MM-DD", *r.DateRegister)
		}
		w.DateRegister = &d
	}
	return w, nil
}

// WalletResponse is the response body for a single wallet.
type WalletResponse struct {
	ID           string          `json:"id"`
	IdentityDNI  string          `json:"identity_dni"`
	PhoneNumber  string          `json:"phone_number"`
	Balance      decimal.Decimal `json:"balance"`
	LinkedCardID string          `json:"linked_card_id"`
	DateRegister *string         `json:"date_register,omitempty"`
}

// FromDomain maps a domain record onto the wire shape.
func FromDomain(w *domain.Wallet) WalletResponse {
	resp := WalletResponse{
		ID:           w.ID,
		IdentityDNI:  w.IdentityDNI,
		PhoneNumber:  w.PhoneNumber,
		Balance:      w.Balance,
		LinkedCardID: w.LinkedCardID,
	}
	if w.DateRegister != nil {
		d := w.DateRegister.Format(dateLayout)
		resp.DateRegister = &d
	}
	return resp
}

// FromDomainList maps a slice of domain records, preserving order.
func FromDomainList(wallets []domain.Wallet) []WalletResponse {
	out := make([]WalletResponse, 0, len(wallets))
	for i := range wallets {
		out = append(out, FromDomain(&wallets[i]))
	}
	return out
}
