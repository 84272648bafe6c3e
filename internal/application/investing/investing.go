// Package investing spreads money between a newly created project or donation
// and the open records of the opposite kind.
package investing

import (
	"time"

	"charity-fund/internal/domain"
)

// Transfer is one source-to-target movement produced by an allocation pass.
type Transfer[S domain.Investable] struct {
	Source S
	Amount int64
}

// Distribute runs one allocation pass. Sources must be open records ordered
// oldest first; they are consumed in that order until target is full or the
// sources run out. Only in-memory state is touched.
//
// A source with nothing left is skipped rather than read as "target is full".
func Distribute[S domain.Investable](target domain.Investable, sources []S, now time.Time) ([]Transfer[S], error) {
	var transfers []Transfer[S]
	for _, source := range sources {
		if target.Remaining() <= 0 {
			break
		}
		amount := min(target.Remaining(), source.Remaining())
		if amount <= 0 {
			continue
		}
		if err := target.ApplyFunding(amount, now); err != nil {
			return transfers, err
		}
		if err := source.ApplyFunding(amount, now); err != nil {
			return transfers, err
		}
		transfers = append(transfers, Transfer[S]{Source: source, Amount: amount})
	}
	return transfers, nil
}

// Invest is Distribute reduced to the list of sources that were modified.
// The target is always considered modified by the caller.
func Invest[S domain.Investable](target domain.Investable, sources []S, now time.Time) ([]S, error) {
	transfers, err := Distribute(target, sources, now)
	if err != nil {
		return nil, err
	}
	modified := make([]S, 0, len(transfers))
	for _, t := range transfers {
		modified = append(modified, t.Source)
	}
	return modified, nil
}

// Moved is the total amount carried by transfers.
func Moved[S domain.Investable](transfers []Transfer[S]) int64 {
	var total int64
	for _, t := range transfers {
		total += t.Amount
	}
	return total
}
