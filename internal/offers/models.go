package offers

// ProducerOffer is the local index row for a supply-side bid. The id is the
// ledger offer id; Order is the regulator order the bid targets. Offer value,
// status and acceptance state are ledger truth and never cached here.
type ProducerOffer struct {
	ID         string `json:"id"`
	ProducerID int64  `json:"producer"`
	Order      string `json:"order"`
}
