// Package split derives per-member obligations from an expense amount and a
// split strategy, and validates that a derived set of shares is consistent
// with the expense before anything is persisted.
package split

import (
	"errors"

	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
	"splitcircle/internal/money"
)

var (
	// ErrInputRequired is returned when PERCENTAGE or CUSTOM is requested
	// without explicit shares.
	ErrInputRequired = errors.New("splits are required for this split type")

	// ErrInvariantViolation is returned when shares do not sum back to the
	// expense amount (CUSTOM) or to 100 percent (PERCENTAGE) within
	// money.Epsilon.
	ErrInvariantViolation = errors.New("splits do not sum to the expense amount")

	ErrNoMembers        = errors.New("cannot split an expense with no members")
	ErrUnknownSplitType = errors.New("unknown split type")
)

// ShareInput is a caller-supplied share for PERCENTAGE or CUSTOM splits.
type ShareInput struct {
	UserID     string
	Amount     *decimal.Decimal
	Percentage *decimal.Decimal
}

// Share is one member's computed portion of an expense.
type Share struct {
	UserID     string
	Amount     decimal.Decimal
	Percentage *decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Compute turns an expense amount into per-member shares.
//
// EQUAL divides across every current member, rounding each share down to the
// cent and handing the leftover cents one at a time to the earliest members
// (memberIDs must arrive in join order), so the shares always sum exactly to
// the amount. PERCENTAGE and CUSTOM take the caller's shares as given; their
// totals are checked by Validate.
func Compute(amount decimal.Decimal, splitType models.SplitType, memberIDs []string, inputs []ShareInput) ([]Share, error) {
	switch splitType {
	case models.SplitEqual:
		return computeEqual(amount, memberIDs)
	case models.SplitPercentage:
		if len(inputs) == 0 {
			return nil, ErrInputRequired
		}
		return computePercentage(amount, inputs), nil
	case models.SplitCustom:
		if len(inputs) == 0 {
			return nil, ErrInputRequired
		}
		return computeCustom(inputs), nil
	default:
		return nil, ErrUnknownSplitType
	}
}

func computeEqual(amount decimal.Decimal, memberIDs []string) ([]Share, error) {
	count := int64(len(memberIDs))
	if count == 0 {
		return nil, ErrNoMembers
	}
	base := amount.Div(decimal.NewFromInt(count)).RoundDown(2)
	leftover := amount.Sub(base.Mul(decimal.NewFromInt(count)))
	cents := leftover.Mul(hundred).IntPart()

	shares := make([]Share, 0, count)
	for i, userID := range memberIDs {
		share := base
		if int64(i) < cents {
			share = share.Add(money.Epsilon)
		}
		shares = append(shares, Share{UserID: userID, Amount: share})
	}
	return shares, nil
}

func computePercentage(amount decimal.Decimal, inputs []ShareInput) []Share {
	shares := make([]Share, 0, len(inputs))
	for _, input := range inputs {
		pct := decimal.Zero
		if input.Percentage != nil {
			pct = *input.Percentage
		}
		derived := amount.Mul(pct).Div(hundred).Round(2)
		pctCopy := pct
		shares = append(shares, Share{UserID: input.UserID, Amount: derived, Percentage: &pctCopy})
	}
	return shares
}

func computeCustom(inputs []ShareInput) []Share {
	shares := make([]Share, 0, len(inputs))
	for _, input := range inputs {
		amt := decimal.Zero
		if input.Amount != nil {
			amt = *input.Amount
		}
		shares = append(shares, Share{UserID: input.UserID, Amount: amt})
	}
	return shares
}

// Validate checks the ledger invariant for a set of shares before they are
// written. EQUAL shares are calculator-derived and always pass; PERCENTAGE
// shares must carry percentages summing to 100 within money.Epsilon and
// derived amounts summing back to the expense amount; CUSTOM shares must sum
// to the expense amount within money.Epsilon. No obligation may carry a
// negative amount or percentage, even when the totals balance.
func Validate(amount decimal.Decimal, splitType models.SplitType, shares []Share) error {
	switch splitType {
	case models.SplitEqual:
		return nil
	case models.SplitPercentage:
		pctSum := decimal.Zero
		amountSum := decimal.Zero
		for _, share := range shares {
			if share.Amount.IsNegative() {
				return ErrInvariantViolation
			}
			if share.Percentage != nil {
				if share.Percentage.IsNegative() {
					return ErrInvariantViolation
				}
				pctSum = pctSum.Add(*share.Percentage)
			}
			amountSum = amountSum.Add(share.Amount)
		}
		if !money.WithinEpsilon(pctSum, hundred) {
			return ErrInvariantViolation
		}
		// Per-share rounding can drift the derived total past epsilon even
		// when the percentages are exactly 100 (e.g. 16.67x5 + 16.65 of 0.99).
		if !money.WithinEpsilon(amountSum, amount) {
			return ErrInvariantViolation
		}
		return nil
	case models.SplitCustom:
		sum := decimal.Zero
		for _, share := range shares {
			if share.Amount.IsNegative() {
				return ErrInvariantViolation
			}
			sum = sum.Add(share.Amount)
		}
		if !money.WithinEpsilon(sum, amount) {
			return ErrInvariantViolation
		}
		return nil
	default:
		return ErrUnknownSplitType
	}
}
