package model

// LineTotal is price × quantity for one item.
func (it InvoiceItem) LineTotal() float64 {
	return it.Price * float64(it.Quantity)
}

// LineProfit is (price − buyPrice) × quantity for one item.
func (it InvoiceItem) LineProfit() float64 {
	return (it.Price - it.BuyPrice) * float64(it.Quantity)
}

// LineCost is buyPrice × quantity for one item.
func (it InvoiceItem) LineCost() float64 {
	return it.BuyPrice * float64(it.Quantity)
}

// Totals returns Σ price×quantity and Σ (price−buyPrice)×quantity over items.
func Totals(items []InvoiceItem) (total, profit float64) {
	for _, it := range items {
		total += it.LineTotal()
		profit += it.LineProfit()
	}
	return total, profit
}

// Cost returns the buy cost of everything sold on the invoice.
func (inv Invoice) Cost() float64 {
	var cost float64
	for _, it := range inv.Items {
		cost += it.LineCost()
	}
	return cost
}

// ItemFromProduct snapshots p into an invoice line at the current prices.
func ItemFromProduct(p Product, quantity int) InvoiceItem {
	return InvoiceItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.SellPrice,
		BuyPrice:  p.BuyPrice,
		Quantity:  quantity,
	}
}
