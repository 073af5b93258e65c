package accounting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fincore/erp-accounting/internal/core/domain"
)

func TestSignedAmount(t *testing.T) {
	debitLine := domain.JournalLine{AccountID: "a1", Debit: decimal.NewFromInt(100)}
	creditLine := domain.JournalLine{AccountID: "a1", Credit: decimal.NewFromInt(100)}

	// Debit-natural account: debits increase, credits decrease.
	signed, err := SignedAmount(debitLine, domain.DebitBalance)
	assert.NoError(t, err)
	assert.True(t, signed.Equal(decimal.NewFromInt(100)))

	signed, err = SignedAmount(creditLine, domain.DebitBalance)
	assert.NoError(t, err)
	assert.True(t, signed.Equal(decimal.NewFromInt(-100)))

	// Credit-natural account: the mirror image.
	signed, err = SignedAmount(debitLine, domain.CreditBalance)
	assert.NoError(t, err)
	assert.True(t, signed.Equal(decimal.NewFromInt(-100)))

	signed, err = SignedAmount(creditLine, domain.CreditBalance)
	assert.NoError(t, err)
	assert.True(t, signed.Equal(decimal.NewFromInt(100)))

	_, err = SignedAmount(debitLine, domain.BalanceType("SIDEWAYS"))
	assert.Error(t, err, "Unknown balance type should be rejected")
}

func TestEntryTotals(t *testing.T) {
	lines := []domain.JournalLine{
		{Debit: decimal.NewFromInt(70)},
		{Debit: decimal.NewFromInt(30)},
		{Credit: decimal.NewFromInt(100)},
	}

	debitTotal, creditTotal := EntryTotals(lines)
	assert.True(t, debitTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, creditTotal.Equal(decimal.NewFromInt(100)))
}

func TestIsBalanced(t *testing.T) {
	assert.True(t, IsBalanced(decimal.NewFromInt(100), decimal.NewFromInt(100)))
	assert.True(t, IsBalanced(decimal.NewFromFloat(100.00), decimal.NewFromFloat(99.99)),
		"Divergence equal to the tolerance should still balance")
	assert.False(t, IsBalanced(decimal.NewFromFloat(100.00), decimal.NewFromFloat(99.98)))
	assert.True(t, IsBalanced(decimal.NewFromFloat(99.99), decimal.NewFromFloat(100.00)),
		"Tolerance applies in both directions")
}

func TestValidateLineSides(t *testing.T) {
	valid := []domain.JournalLine{
		{Debit: decimal.NewFromInt(50)},
		{Credit: decimal.NewFromInt(50)},
	}
	assert.NoError(t, ValidateLineSides(valid))

	bothSides := []domain.JournalLine{
		{Debit: decimal.NewFromInt(50), Credit: decimal.NewFromInt(50)},
	}
	assert.Error(t, ValidateLineSides(bothSides), "A line with both sides set is invalid")

	neitherSide := []domain.JournalLine{
		{},
	}
	assert.Error(t, ValidateLineSides(neitherSide), "A line with neither side set is invalid")

	negative := []domain.JournalLine{
		{Debit: decimal.NewFromInt(-10), Credit: decimal.Zero},
	}
	assert.Error(t, ValidateLineSides(negative))
}

func TestDaysPastDue(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysPastDue(asOf, asOf))
	assert.Equal(t, 45, DaysPastDue(asOf.AddDate(0, 0, -45), asOf))
	assert.Equal(t, -10, DaysPastDue(asOf.AddDate(0, 0, 10), asOf), "Items not yet due report negative days")
}

func TestBucketIndexAR(t *testing.T) {
	assert.Equal(t, 0, BucketIndexAR(-5), "Not yet due lands in current")
	assert.Equal(t, 0, BucketIndexAR(30))
	assert.Equal(t, 1, BucketIndexAR(31))
	assert.Equal(t, 1, BucketIndexAR(60))
	assert.Equal(t, 2, BucketIndexAR(61))
	assert.Equal(t, 2, BucketIndexAR(90))
	assert.Equal(t, 3, BucketIndexAR(91))
	assert.Len(t, ReceivableBucketLabels, 4)
}

func TestBucketIndexAP(t *testing.T) {
	assert.Equal(t, 0, BucketIndexAP(30))
	assert.Equal(t, 1, BucketIndexAP(31))
	assert.Equal(t, 1, BucketIndexAP(60))
	assert.Equal(t, 2, BucketIndexAP(61))
	assert.Len(t, PayableBucketLabels, 3)
}
