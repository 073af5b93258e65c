package accounting

import (
	"fmt"
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the maximum debit/credit divergence accepted on a
// journal entry. Amounts are decimal throughout, so the engine itself never
// introduces rounding; the tolerance only absorbs rounding already present in
// caller-supplied figures.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// SignedAmount applies the correct sign to a journal line amount based on the
// target account's natural polarity: a debit increases a debit-natural
// account and decreases a credit-natural one, and symmetrically for credits.
func SignedAmount(line domain.JournalLine, balanceType domain.BalanceType) (decimal.Decimal, error) {
	amount := line.Amount()
	switch balanceType {
	case domain.DebitBalance:
		if !line.IsDebit() {
			amount = amount.Neg()
		}
	case domain.CreditBalance:
		if line.IsDebit() {
			amount = amount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown balance type %q for account %s", balanceType, line.AccountID)
	}
	return amount, nil
}

// EntryTotals sums the debit and credit sides of an entry's lines.
func EntryTotals(lines []domain.JournalLine) (debitTotal, creditTotal decimal.Decimal) {
	debitTotal = decimal.Zero
	creditTotal = decimal.Zero
	for _, line := range lines {
		debitTotal = debitTotal.Add(line.Debit)
		creditTotal = creditTotal.Add(line.Credit)
	}
	return debitTotal, creditTotal
}

// IsBalanced reports whether the debit and credit totals agree within
// BalanceTolerance.
func IsBalanced(debitTotal, creditTotal decimal.Decimal) bool {
	return debitTotal.Sub(creditTotal).Abs().LessThanOrEqual(BalanceTolerance)
}

// ValidateLineSides checks that every line has exactly one non-zero side and
// that the non-zero side is positive.
func ValidateLineSides(lines []domain.JournalLine) error {
	for i, line := range lines {
		debitSet := !line.Debit.IsZero()
		creditSet := !line.Credit.IsZero()
		if debitSet == creditSet {
			return fmt.Errorf("line %d must have exactly one of debit or credit set", i)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("line %d amount must be positive", i)
		}
	}
	return nil
}

// DaysPastDue computes whole days between an item's due date and the report
// date. Items not yet due report zero or negative.
func DaysPastDue(dueDate, asOf time.Time) int {
	return int(asOf.Sub(dueDate).Hours() / 24)
}

// ReceivableBucketLabels are the AR aging buckets, oldest last.
var ReceivableBucketLabels = []string{"current", "31-60", "61-90", "90+"}

// PayableBucketLabels are the AP aging buckets.
var PayableBucketLabels = []string{"current", "31-60", "60+"}

// BucketIndexAR classifies days past due into the four receivable buckets.
func BucketIndexAR(daysPastDue int) int {
	switch {
	case daysPastDue <= 30:
		return 0
	case daysPastDue <= 60:
		return 1
	case daysPastDue <= 90:
		return 2
	default:
		return 3
	}
}

// BucketIndexAP classifies days past due into the three payable buckets.
func BucketIndexAP(daysPastDue int) int {
	switch {
	case daysPastDue <= 30:
		return 0
	case daysPastDue <= 60:
		return 1
	default:
		return 2
	}
}
