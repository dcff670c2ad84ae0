package returns

import (
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SettlementLine is one (unit price, returned quantity) pair fed into the
// settlement calculation
type SettlementLine struct {
	UnitPrice        decimal.Decimal
	QuantityReturned decimal.Decimal
}

// Settlement is the monetary outcome of a return: the gross amount owed for
// the returned goods and the net amount after fees. Both calculations are
// pure; the same function runs at creation (provisional) and again at
// approval with possibly overridden fees (authoritative).
type Settlement struct {
	ReturnAmount     decimal.Decimal // Σ(unit_price × quantity_returned)
	ProcessingFee    decimal.Decimal
	RestockingFee    decimal.Decimal
	SettlementAmount decimal.Decimal // ReturnAmount − ProcessingFee − RestockingFee
}

// CalculateSettlement computes the return amount and net settlement for the
// given lines and fees. Negative fees are rejected outright. A negative
// settlement (fees exceeding the return amount) is returned as a validation
// error, never clamped to zero; the caller decides whether that aborts the
// operation (it does at approval).
func CalculateSettlement(lines []SettlementLine, processingFee, restockingFee decimal.Decimal) (Settlement, error) {
	if processingFee.IsNegative() {
		return Settlement{}, shared.NewDomainError("INVALID_FEE", "Processing fee cannot be negative")
	}
	if restockingFee.IsNegative() {
		return Settlement{}, shared.NewDomainError("INVALID_FEE", "Restocking fee cannot be negative")
	}

	returnAmount := decimal.Zero
	for _, line := range lines {
		returnAmount = returnAmount.Add(line.UnitPrice.Mul(line.QuantityReturned))
	}

	settlementAmount := returnAmount.Sub(processingFee).Sub(restockingFee)
	if settlementAmount.IsNegative() {
		return Settlement{}, shared.NewDomainError("NEGATIVE_SETTLEMENT",
			"Fees exceed the return amount")
	}

	return Settlement{
		ReturnAmount:     returnAmount,
		ProcessingFee:    processingFee,
		RestockingFee:    restockingFee,
		SettlementAmount: settlementAmount,
	}, nil
}

// SettlementLinesFromItems converts return items into settlement inputs
func SettlementLinesFromItems(items []ReturnItem) []SettlementLine {
	lines := make([]SettlementLine, len(items))
	for idx := range items {
		lines[idx] = SettlementLine{
			UnitPrice:        items[idx].UnitPrice,
			QuantityReturned: items[idx].QuantityReturned,
		}
	}
	return lines
}
