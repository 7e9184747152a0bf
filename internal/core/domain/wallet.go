package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet represents a Yanki digital wallet record.
// Identity is defined by IdentityDNI alone: two records carrying the same
// document number are the same wallet even when their store-assigned IDs
// differ. The store enforces this with a unique index.
type Wallet struct {
	ID           string          `json:"id"`
	IdentityDNI  string          `json:"identity_dni"`
	PhoneNumber  string          `json:"phone_number"`
	Balance      decimal.Decimal `json:"balance"`
	LinkedCardID string          `json:"linked_card_id"`
	DateRegister *time.Time      `json:"date_register,omitempty"`

	// Internal processing flags, never serialized outward.
	ScanAvailable bool `json:"-"`
	Prefetch      int  `json:"-"`
}

// Equal reports whether two wallets identify the same holder.
func (w *Wallet) Equal(other *Wallet) bool {
	if other == nil {
		return false
	}
	return w.IdentityDNI == other.IdentityDNI
}

// Merge copies every field except ID from patch onto the receiver.
// Used by the update path: the store-assigned ID is immutable.
func (w *Wallet) Merge(patch *Wallet) {
	w.IdentityDNI = patch.IdentityDNI
	w.PhoneNumber = patch.PhoneNumber
	w.Balance = patch.Balance
	w.LinkedCardID = patch.LinkedCardID
	w.DateRegister = patch.DateRegister
	w.ScanAvailable = patch.ScanAvailable
	w.Prefetch = patch.Prefetch
}
