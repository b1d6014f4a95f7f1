package wallet

import (
	"time"

	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound    = errs.Mark(errs.New("wallet not found"), errs.ErrNotFound)
	ErrWalletInactive    = errs.Mark(errs.New("wallet is inactive"), errs.ErrValidation)
	ErrNonPositiveAmount = errs.Mark(errs.New("wallet amount must be positive"), errs.ErrValidation)
	ErrInsufficientFunds = errs.Mark(errs.New("wallet balance is lower than the amount"), errs.ErrInsufficientWalletBalance)
)

type TxType string

const (
	TxCredit TxType = "credit"
	TxDebit  TxType = "debit"
)

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
	TxRefunded  TxStatus = "refunded"
)

type ReferenceType string

const (
	RefInvoicePayment          ReferenceType = "INVOICE_PAYMENT"
	RefDepositRefund           ReferenceType = "DEPOSIT_REFUND"
	RefOrderCancellationRefund ReferenceType = "ORDER_CANCELLATION_REFUND"
	RefOverpaymentRefund       ReferenceType = "OVERPAYMENT_REFUND"
	RefTopUp                   ReferenceType = "TOP_UP"
	RefWithdrawal              ReferenceType = "WITHDRAWAL"
)

// Reference ties a ledger entry to what caused it.
type Reference struct {
	Type        ReferenceType
	ID          *uuid.UUID
	Description string
}

// Transaction is one append-only ledger entry.
type Transaction struct {
	ID            uuid.UUID
	WalletID      uuid.UUID
	Type          TxType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Status        TxStatus
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	Description   string
	CreatedAt     time.Time
}

type Wallet struct {
	id        uuid.UUID
	userID    uuid.UUID
	balance   decimal.Decimal
	currency  string
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

func NewWallet(userID uuid.UUID, currency string, now time.Time) *Wallet {
	return &Wallet{
		id:        uuid.New(),
		userID:    userID,
		balance:   decimal.Zero,
		currency:  currency,
		isActive:  true,
		createdAt: now,
		updatedAt: now,
	}
}

func Reconstruct(id, userID uuid.UUID, balance decimal.Decimal, currency string, isActive bool, createdAt, updatedAt time.Time) *Wallet {
	return &Wallet{
		id:        id,
		userID:    userID,
		balance:   balance,
		currency:  currency,
		isActive:  isActive,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Debit takes amount out of the wallet. On error the balance is unchanged.
func (w *Wallet) Debit(amount decimal.Decimal, ref Reference, now time.Time) (*Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if !w.isActive {
		return nil, errs.Wrapf(ErrWalletInactive, "wallet %s", w.id)
	}
	if w.balance.LessThan(amount) {
		return nil, errs.Wrapf(ErrInsufficientFunds, "balance %s, requested %s", w.balance, amount)
	}
	return w.append(TxDebit, amount, ref, now), nil
}

// Credit adds amount to the wallet. Inactive wallets still accept refunds.
func (w *Wallet) Credit(amount decimal.Decimal, ref Reference, now time.Time) (*Transaction, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if !w.isActive && ref.Type == RefTopUp {
		return nil, errs.Wrapf(ErrWalletInactive, "wallet %s", w.id)
	}
	return w.append(TxCredit, amount, ref, now), nil
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return money.CheckCents(amount)
}

func (w *Wallet) append(typ TxType, amount decimal.Decimal, ref Reference, now time.Time) *Transaction {
	before := w.balance
	after := before.Add(amount)
	if typ == TxDebit {
		after = before.Sub(amount)
	}
	w.balance = after
	w.updatedAt = now
	return &Transaction{
		ID:            uuid.New(),
		WalletID:      w.id,
		Type:          typ,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Status:        TxCompleted,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		Description:   ref.Description,
		CreatedAt:     now,
	}
}

func (w *Wallet) ID() uuid.UUID            { return w.id }
func (w *Wallet) UserID() uuid.UUID        { return w.userID }
func (w *Wallet) Balance() decimal.Decimal { return w.balance }
func (w *Wallet) Currency() string         { return w.currency }
func (w *Wallet) IsActive() bool           { return w.isActive }
func (w *Wallet) CreatedAt() time.Time     { return w.createdAt }
func (w *Wallet) UpdatedAt() time.Time     { return w.updatedAt }
