package settlement

// Payment is the local-only settlement record that triggers letter issuance.
// It has no ledger counterpart; the id is a local sequence, not a ledger key.
type Payment struct {
	ID         int64  `json:"id"`
	Order      string `json:"order"`
	Price      int64  `json:"price"`
	ProducerID int64  `json:"producer"`
}

// PaymentLetter is the local index row for a ledger payment letter. Price and
// date live on the ledger.
type PaymentLetter struct {
	ID     string `json:"id"`
	BankID int64  `json:"bank"`
	Order  string `json:"order"`
}

// Deal ties the winning producer to the letter that settles the order.
type Deal struct {
	ID         string `json:"id"`
	ProducerID int64  `json:"producer"`
	Letter     string `json:"letter"`
}

// Delivery is the local index row for a ledger delivery. Status is ledger
// truth; the deal reference exists so listings can join the two locally.
type Delivery struct {
	ID         string `json:"id"`
	ProducerID int64  `json:"producer"`
	Deal       string `json:"deal"`
}
