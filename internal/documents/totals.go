package documents

import (
	"github.com/shopspring/decimal"

	"invoicedesk/backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// priceItems fills each item's unitTotal and taxAmount and returns the
// document's subTotal, taxTotal and total.
func priceItems(items []domain.Item, taxPercent decimal.Decimal) (subTotal, taxTotal, total float64) {
	sub := decimal.Zero
	tax := decimal.Zero
	for i := range items {
		unitTotal := decimal.NewFromInt(int64(items[i].Quantity)).Mul(decimal.NewFromFloat(items[i].UnitPrice)).Round(2)
		taxAmount := unitTotal.Mul(taxPercent).Div(hundred).Round(2)
		items[i].UnitTotal = round2(unitTotal)
		items[i].TaxAmount = round2(taxAmount)
		sub = sub.Add(unitTotal)
		tax = tax.Add(taxAmount)
	}
	return round2(sub), round2(tax), round2(sub.Add(tax))
}

// pricePurchase defaults a missing taxTotal to the configured percentage of
// subTotal.
func pricePurchase(p *domain.Purchase, taxPercent decimal.Decimal) {
	sub := decimal.NewFromFloat(p.SubTotal)
	var tax decimal.Decimal
	if p.TaxTotal != nil {
		tax = decimal.NewFromFloat(*p.TaxTotal)
	} else {
		tax = sub.Mul(taxPercent).Div(hundred)
	}
	taxTotal := round2(tax)
	p.SubTotal = round2(sub)
	p.TaxTotal = &taxTotal
	p.Total = round2(sub.Round(2).Add(tax.Round(2)))
}

func repairCost(repair []domain.RepairItem) float64 {
	sum := decimal.Zero
	for _, r := range repair {
		sum = sum.Add(decimal.NewFromFloat(r.Price))
	}
	return round2(sum)
}
