package domain

import (
	"errors"
	"time"
)

var (
	ErrNegativeFunding    = errors.New("funding amount must not be negative")
	ErrOverfunded         = errors.New("funding amount exceeds remaining capacity")
	ErrNonPositiveAmount  = errors.New("full amount must be positive")
	ErrFullBelowInvested  = errors.New("full amount cannot be lower than invested amount")
	ErrBrokenFundingState = errors.New("funding record violates its invariants")
)

// Investable is what the allocator moves money between. Charity projects and
// donations both satisfy it through the embedded Funding.
type Investable interface {
	Remaining() int64
	ApplyFunding(amount int64, at time.Time) error
}

// Funding is the money state shared by charity projects and donations.
//
// Invariants: 0 <= InvestedAmount <= FullAmount, FullAmount > 0,
// FullyInvested == (InvestedAmount == FullAmount), CloseDate != nil iff FullyInvested.
type Funding struct {
	FullAmount     int64      `gorm:"column:full_amount;not null;check:full_amount > 0" json:"full_amount"`
	InvestedAmount int64      `gorm:"column:invested_amount;not null;default:0;check:invested_amount >= 0 AND invested_amount <= full_amount" json:"invested_amount"`
	FullyInvested  bool       `gorm:"column:fully_invested;not null;default:false;index" json:"fully_invested"`
	CreateDate     time.Time  `gorm:"column:create_date;not null;index" json:"create_date"`
	CloseDate      *time.Time `gorm:"column:close_date" json:"close_date,omitempty"`
}

// NewFunding returns an open record created at the given time. A seed equal to
// the full amount produces a record that is already closed.
func NewFunding(full, seed int64, at time.Time) (Funding, error) {
	if full <= 0 {
		return Funding{}, ErrNonPositiveAmount
	}
	f := Funding{FullAmount: full, CreateDate: at}
	if err := f.ApplyFunding(seed, at); err != nil {
		return Funding{}, err
	}
	return f, nil
}

// Remaining is the amount still needed (or still available) to close the record.
func (f *Funding) Remaining() int64 {
	return f.FullAmount - f.InvestedAmount
}

// ApplyFunding moves amount into the record and closes it once it is fully invested.
// A closed record is never reopened and its CloseDate never changes.
func (f *Funding) ApplyFunding(amount int64, at time.Time) error {
	if amount < 0 {
		return ErrNegativeFunding
	}
	if amount > f.Remaining() {
		return ErrOverfunded
	}
	f.InvestedAmount += amount
	if f.InvestedAmount == f.FullAmount {
		f.close(at)
	}
	return nil
}

// Resize changes the full amount. Lowering it to exactly the invested amount closes the record.
func (f *Funding) Resize(full int64, at time.Time) error {
	if full <= 0 {
		return ErrNonPositiveAmount
	}
	if full < f.InvestedAmount {
		return ErrFullBelowInvested
	}
	f.FullAmount = full
	if f.InvestedAmount == f.FullAmount {
		f.close(at)
	}
	return nil
}

func (f *Funding) close(at time.Time) {
	if f.FullyInvested {
		return
	}
	f.FullyInvested = true
	closed := at
	f.CloseDate = &closed
}

// IsClosed reports whether the record reached its full amount.
func (f *Funding) IsClosed() bool {
	return f.FullyInvested
}

// CompletionTime is how long the record took to close; zero while it is open.
func (f *Funding) CompletionTime() time.Duration {
	if f.CloseDate == nil {
		return 0
	}
	return f.CloseDate.Sub(f.CreateDate)
}

// Validate checks the invariants listed on Funding.
func (f *Funding) Validate() error {
	switch {
	case f.FullAmount <= 0,
		f.InvestedAmount < 0,
		f.InvestedAmount > f.FullAmount,
		f.FullyInvested != (f.InvestedAmount == f.FullAmount),
		f.FullyInvested != (f.CloseDate != nil):
		return ErrBrokenFundingState
	}
	return nil
}
