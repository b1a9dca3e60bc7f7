package domain

// Portfolio is the mutable state of one simulation. Each strategy run owns
// its own Portfolio; nothing here is shared across concurrent runs.
type Portfolio struct {
	Cash        float64   // quote currency held, never negative
	Units       float64   // asset quantity held, never negative
	BuyCount    int       // buys applied so far
	SellCount   int       // liquidations applied so far
	FeesPaid    float64   // cumulative fees in quote currency
	EntryPrices []float64 // fill prices of the current holdings, cleared on sell
}

// TradeCount returns the total number of applied buy and sell events.
func (p *Portfolio) TradeCount() int {
	return p.BuyCount + p.SellCount
}

// AvgEntryPrice returns the arithmetic mean of the current holdings' fill
// prices, or 0 when nothing is held.
func (p *Portfolio) AvgEntryPrice() float64 {
	if len(p.EntryPrices) == 0 {
		return 0
	}
	sum := 0.0
	for _, price := range p.EntryPrices {
		sum += price
	}
	return sum / float64(len(p.EntryPrices))
}

// Value returns the mark-to-market portfolio value at the given price.
func (p *Portfolio) Value(price float64) float64 {
	return p.Cash + p.Units*price
}
