package ledger

// OrderSide distinguishes bids from asks in a book snapshot
type OrderSide string

const (
	SideBid OrderSide = "bid"
	SideAsk OrderSide = "ask"
)

// Order is one row of an order-book ladder. Orders are ephemeral: they
// exist only inside the current snapshot and are never persisted.
type Order struct {
	Price  float64   `json:"price"`
	Amount float64   `json:"amount"`
	Total  float64   `json:"total"`
	Side   OrderSide `json:"type"`
}

// BookSnapshot is a bid/ask ladder for one pair at a point in time
type BookSnapshot struct {
	Pair string  `json:"pair"`
	Bids []Order `json:"bids"`
	Asks []Order `json:"asks"`
}

// DemoBook returns the static XRP/USD ladder the dashboard renders.
func DemoBook() BookSnapshot {
	return BookSnapshot{
		Pair: PairKey("XRP", "USD"),
		Bids: []Order{
			{Price: 0.5490, Amount: 12000, Total: 6588, Side: SideBid},
			{Price: 0.5485, Amount: 8500, Total: 4662, Side: SideBid},
			{Price: 0.5480, Amount: 25000, Total: 13700, Side: SideBid},
			{Price: 0.5475, Amount: 5000, Total: 2737, Side: SideBid},
			{Price: 0.5460, Amount: 15400, Total: 8408, Side: SideBid},
		},
		Asks: []Order{
			{Price: 0.5510, Amount: 4500, Total: 2479, Side: SideAsk},
			{Price: 0.5515, Amount: 12000, Total: 6618, Side: SideAsk},
			{Price: 0.5520, Amount: 8000, Total: 4416, Side: SideAsk},
			{Price: 0.5535, Amount: 6500, Total: 3597, Side: SideAsk},
			{Price: 0.5550, Amount: 21000, Total: 11655, Side: SideAsk},
		},
	}
}
