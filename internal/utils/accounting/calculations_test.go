package accounting_test

import (
	"testing"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/retailops/ledger_service/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debitEntry(accountID string, amount int64) domain.JournalEntry {
	return domain.JournalEntry{
		AccountID:   accountID,
		Side:        domain.Debit,
		DebitAmount: decimal.NewFromInt(amount),
	}
}

func creditEntry(accountID string, amount int64) domain.JournalEntry {
	return domain.JournalEntry{
		AccountID:    accountID,
		Side:         domain.Credit,
		CreditAmount: decimal.NewFromInt(amount),
	}
}

func TestSignedDelta(t *testing.T) {
	testCases := []struct {
		name     string
		entry    domain.JournalEntry
		category domain.AccountCategory
		expected int64
	}{
		{"debit to asset increases", debitEntry("cash", 1000), domain.Asset, 1000},
		{"credit to asset decreases", creditEntry("cash", 1000), domain.Asset, -1000},
		{"debit to expense increases", debitEntry("rent", 250), domain.Expense, 250},
		{"credit to liability increases", creditEntry("creditors", 1000), domain.Liability, 1000},
		{"debit to liability decreases", debitEntry("creditors", 400), domain.Liability, -400},
		{"credit to income increases", creditEntry("revenue", 900), domain.Income, 900},
		{"credit to equity increases", creditEntry("capital", 5000), domain.Equity, 5000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			delta, err := accounting.SignedDelta(tc.entry, tc.category)
			require.NoError(t, err)
			assert.True(t, delta.Equal(decimal.NewFromInt(tc.expected)),
				"expected %d, got %s", tc.expected, delta.String())
		})
	}
}

func TestSignedDeltaUnknownCategory(t *testing.T) {
	_, err := accounting.SignedDelta(debitEntry("cash", 10), domain.AccountCategory("BOGUS"))
	assert.Error(t, err)
}

func TestValidateEntriesBalanced(t *testing.T) {
	entries := []domain.JournalEntry{
		debitEntry("cash", 1000),
		creditEntry("revenue", 1000),
	}
	assert.NoError(t, accounting.ValidateEntries(entries))
}

func TestValidateEntriesUnbalanced(t *testing.T) {
	entries := []domain.JournalEntry{
		debitEntry("cash", 1000),
		creditEntry("revenue", 900),
	}
	err := accounting.ValidateEntries(entries)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnbalanced)
}

func TestValidateEntriesRejectsSingleLine(t *testing.T) {
	err := accounting.ValidateEntries([]domain.JournalEntry{debitEntry("cash", 10)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateEntriesRejectsSingleAccount(t *testing.T) {
	entries := []domain.JournalEntry{
		debitEntry("cash", 10),
		creditEntry("cash", 10),
	}
	err := accounting.ValidateEntries(entries)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateEntriesRejectsBothSidesSet(t *testing.T) {
	entries := []domain.JournalEntry{
		{
			AccountID:    "cash",
			Side:         domain.Debit,
			DebitAmount:  decimal.NewFromInt(10),
			CreditAmount: decimal.NewFromInt(10),
		},
		creditEntry("revenue", 10),
	}
	err := accounting.ValidateEntries(entries)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateEntriesRejectsZeroLine(t *testing.T) {
	entries := []domain.JournalEntry{
		{AccountID: "cash", Side: domain.Debit},
		creditEntry("revenue", 10),
	}
	err := accounting.ValidateEntries(entries)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestClosingBalance(t *testing.T) {
	// Debit-normal: opening 100, debits 50, credits 30 -> 120.
	got := accounting.ClosingBalance(domain.Asset,
		decimal.NewFromInt(100), decimal.NewFromInt(50), decimal.NewFromInt(30))
	assert.True(t, got.Equal(decimal.NewFromInt(120)))

	// Credit-normal: opening 100, debits 50, credits 30 -> 80.
	got = accounting.ClosingBalance(domain.Liability,
		decimal.NewFromInt(100), decimal.NewFromInt(50), decimal.NewFromInt(30))
	assert.True(t, got.Equal(decimal.NewFromInt(80)))
}
