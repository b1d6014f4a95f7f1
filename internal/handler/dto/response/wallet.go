package response

import (
	"time"

	"rental-engine/internal/domain/wallet"
	"rental-engine/internal/usecase/commands"
	"rental-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type WalletTransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Status        string          `json:"status"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

type WalletResponse struct {
	ID           *uuid.UUID                  `json:"id,omitempty"`
	UserID       uuid.UUID                   `json:"user_id"`
	Balance      decimal.Decimal             `json:"balance"`
	Currency     string                      `json:"currency"`
	IsActive     bool                        `json:"is_active"`
	Transactions []WalletTransactionResponse `json:"transactions"`
}

func FromWalletView(v *queries.WalletView) (*WalletResponse, error) {
	res := &WalletResponse{}
	if err := copier.Copy(res, v); err != nil {
		return nil, err
	}
	if res.Transactions == nil {
		res.Transactions = []WalletTransactionResponse{}
	}
	return res, nil
}

func FromWalletTransaction(t *wallet.Transaction) (*WalletTransactionResponse, error) {
	if t == nil {
		return nil, nil
	}
	res := &WalletTransactionResponse{}
	if err := copier.Copy(res, t); err != nil {
		return nil, err
	}
	res.Type = string(t.Type)
	res.Status = string(t.Status)
	res.ReferenceType = string(t.ReferenceType)
	return res, nil
}

type WalletEntryResponse struct {
	WalletID    uuid.UUID                  `json:"wallet_id"`
	Balance     decimal.Decimal            `json:"balance"`
	Transaction *WalletTransactionResponse `json:"transaction"`
}

func FromWalletEntry(r *commands.WalletEntryResult) (*WalletEntryResponse, error) {
	tx, err := FromWalletTransaction(r.Transaction)
	if err != nil {
		return nil, err
	}
	return &WalletEntryResponse{WalletID: r.WalletID, Balance: r.Balance, Transaction: tx}, nil
}
