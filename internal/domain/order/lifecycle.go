package order

import (
	"time"

	"rental-engine/internal/domain/actor"
	"rental-engine/internal/pkg/errs"
	"rental-engine/internal/pkg/money"

	"github.com/shopspring/decimal"
)

// Command is one lifecycle event with its optional payload.
type Command struct {
	Event      Event
	Actor      actor.Actor
	PickupDate *time.Time
	ReturnDate *time.Time
	LateFee    *decimal.Decimal
}

// Settlement is the deposit reconciliation performed when a return is recorded.
type Settlement struct {
	Deposit           decimal.Decimal
	LateFee           decimal.Decimal
	RefundableDeposit decimal.Decimal
	// Refund is what goes back to the customer given what was actually collected.
	Refund decimal.Decimal
	// AdditionalDue is the part of the fee (or unpaid rent) the deposit did not cover.
	AdditionalDue decimal.Decimal
}

// Outcome lists the side effects the caller must carry out in the same transaction.
type Outcome struct {
	From             Status
	To               Status
	ReleaseInventory bool
	Refund           decimal.Decimal
	Settlement       *Settlement
}

// Apply runs cmd through the state machine. On error the order is unchanged.
func (o *Order) Apply(cmd Command, now time.Time) (Outcome, error) {
	if !cmd.Event.IsValid() {
		return Outcome{}, errs.Wrapf(ErrUnknownEvent, "event %q", cmd.Event)
	}
	if err := o.authorize(cmd); err != nil {
		return Outcome{}, err
	}

	to, err := next(o.status, cmd.Event)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{From: o.status, To: to, Refund: decimal.Zero}
	switch cmd.Event {
	case EventConfirm:
	case EventSchedulePickup:
		if cmd.PickupDate == nil {
			return Outcome{}, ErrPickupDateMissing
		}
		d := cmd.PickupDate.UTC()
		o.pickupDate = &d
	case EventMarkPickedUp:
		switch {
		case cmd.PickupDate != nil:
			d := cmd.PickupDate.UTC()
			o.pickupDate = &d
		case o.pickupDate == nil:
			d := now
			o.pickupDate = &d
		}
	case EventMarkReturned:
		s, serr := o.settleReturn(cmd, now)
		if serr != nil {
			return Outcome{}, serr
		}
		out.Settlement = s
		out.Refund = s.Refund
	case EventCancel:
		out.ReleaseInventory = true
		out.Refund = money.NonNegative(o.NetPaid())
		o.refundedAmount = o.refundedAmount.Add(out.Refund)
		o.cancelledAt = &now
	}

	o.status = to
	o.updatedAt = now
	return out, nil
}

func (o *Order) authorize(cmd Command) error {
	a := cmd.Actor
	if a.IsAdmin() {
		return nil
	}
	if cmd.Event.VendorOnly() {
		if a.ID != o.vendorID {
			return errs.Wrapf(ErrNotOrderParty, "%s requires the order's vendor", cmd.Event)
		}
		return nil
	}
	if !o.IsParty(a.ID) {
		return errs.Wrapf(ErrNotOrderParty, "%s requires the order's customer or vendor", cmd.Event)
	}
	return nil
}

// settleReturn assesses the late fee, releases the deposit and works out the
// refund or extra charge against what the customer has paid so far.
func (o *Order) settleReturn(cmd Command, now time.Time) (*Settlement, error) {
	fee := decimal.Zero
	if cmd.LateFee != nil {
		if cmd.LateFee.IsNegative() {
			return nil, ErrNegativeLateFee
		}
		fee = money.Round(*cmd.LateFee)
	}

	returned := now
	if cmd.ReturnDate != nil {
		returned = cmd.ReturnDate.UTC()
	}
	if o.pickupDate != nil && returned.Before(*o.pickupDate) {
		return nil, ErrReturnBeforePick
	}

	o.lateFee = &fee
	o.returnDate = &returned
	o.recalculateTotal()
	o.depositSettled = true

	netPaid := o.NetPaid()
	consumed := o.BillableAmount()
	s := &Settlement{
		Deposit:           o.securityDeposit,
		LateFee:           fee,
		RefundableDeposit: money.NonNegative(o.securityDeposit.Sub(fee)),
		Refund:            money.NonNegative(netPaid.Sub(consumed)),
		AdditionalDue:     money.NonNegative(consumed.Sub(netPaid)),
	}
	o.refundedAmount = o.refundedAmount.Add(s.Refund)
	return s, nil
}

// RecordPayment applies up to the balance due and returns the applied amount.
// Anything above the balance is not accepted.
func (o *Order) RecordPayment(amount decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrNonPositivePay
	}
	if o.status == StatusCancelled {
		return decimal.Zero, errs.Wrapf(ErrOrderNotPayable, "order %s is %s", o.number, o.status)
	}
	due := o.AmountDue()
	if !due.IsPositive() {
		return decimal.Zero, errs.Wrapf(ErrNothingDue, "order %s", o.number)
	}

	applied := money.Min(amount, due)
	o.paidAmount = o.paidAmount.Add(applied)
	o.updatedAt = now
	return applied, nil
}

// IsFullyPaid reports whether the billable amount has been collected.
func (o *Order) IsFullyPaid() bool {
	return o.status != StatusCancelled && !o.AmountDue().IsPositive()
}
