// Package accounting holds the pure double-entry math shared by services
// and repositories so both sides apply identical sign conventions.
package accounting

import (
	"fmt"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta returns the balance effect of a journal entry on its account,
// sign-adjusted by the account category's normal-balance side.
// Debit-normal accounts (assets, expenses) grow with debits; credit-normal
// accounts (liabilities, equity, income) grow with credits.
func SignedDelta(entry domain.JournalEntry, category domain.AccountCategory) (decimal.Decimal, error) {
	if !category.Valid() {
		return decimal.Zero, fmt.Errorf("unknown account category %q for account %s", category, entry.AccountID)
	}
	delta := entry.DebitAmount.Sub(entry.CreditAmount)
	if category.NormalSide() == domain.CreditNormal {
		delta = delta.Neg()
	}
	return delta, nil
}

// Totals sums the debit and credit sides over a set of entries.
func Totals(entries []domain.JournalEntry) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debits = debits.Add(e.DebitAmount)
		credits = credits.Add(e.CreditAmount)
	}
	return debits, credits
}

// ValidateEntries enforces the structural rules for journal entries:
// at least two lines touching at least two distinct accounts, exactly one
// non-zero side per line, and debits equal to credits overall.
func ValidateEntries(entries []domain.JournalEntry) error {
	if len(entries) < 2 {
		return fmt.Errorf("%w: journal must have at least two entries", apperrors.ErrValidation)
	}

	accounts := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		accounts[e.AccountID] = struct{}{}

		debitSet := e.DebitAmount.IsPositive()
		creditSet := e.CreditAmount.IsPositive()
		if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
			return fmt.Errorf("%w: entry amounts must not be negative for account %s", apperrors.ErrValidation, e.AccountID)
		}
		if debitSet == creditSet {
			return fmt.Errorf("%w: exactly one of debit/credit must be set for account %s", apperrors.ErrValidation, e.AccountID)
		}
		if debitSet && e.Side != domain.Debit {
			return fmt.Errorf("%w: entry side does not match debit amount for account %s", apperrors.ErrValidation, e.AccountID)
		}
		if creditSet && e.Side != domain.Credit {
			return fmt.Errorf("%w: entry side does not match credit amount for account %s", apperrors.ErrValidation, e.AccountID)
		}
	}

	if len(accounts) < 2 {
		return fmt.Errorf("%w: journal must affect at least two different accounts", apperrors.ErrValidation)
	}

	debits, credits := Totals(entries)
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum to %s, credits sum to %s",
			apperrors.ErrUnbalanced, debits.String(), credits.String())
	}
	return nil
}

// ClosingBalance computes an account's balance from its opening balance and
// period debit/credit totals, per the category's normal side.
func ClosingBalance(category domain.AccountCategory, opening, totalDebits, totalCredits decimal.Decimal) decimal.Decimal {
	delta := totalDebits.Sub(totalCredits)
	if category.NormalSide() == domain.CreditNormal {
		delta = delta.Neg()
	}
	return opening.Add(delta)
}
