package ledger

// OrderInfo is the ledger's view of a regulator (ministry) order. Winner is
// nil until an offer has been accepted; the ledger encodes "no winner" as the
// literal string "none".
type OrderInfo struct {
	ID       string  `json:"id"`
	Amount   int64   `json:"amount"`
	EndDate  string  `json:"endDate"`
	OpenDate string  `json:"openDate"`
	Winner   *string `json:"winner"`
}

// HospitalOrderInfo is the ledger's view of a demand-side (hospital) order.
// DateMillis keeps the raw timestamp for sorting; Date is the display form.
type HospitalOrderInfo struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	Urgency    int64  `json:"urgency"`
	Date       string `json:"date"`
	DateMillis int64  `json:"-"`
	Status     string `json:"status"`
}

// DeliveryInfo is the ledger's view of a delivery.
type DeliveryInfo struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// OfferInfo is the ledger's view of a producer offer. Producer is the
// producer's ledger key, not a local organization id.
type OfferInfo struct {
	ID       string `json:"id"`
	Producer string `json:"producer"`
	Order    string `json:"order"`
	Offer    string `json:"offer"`
	Status   string `json:"status"`
	Date     string `json:"date"`
}

// LetterInfo is the ledger's view of a payment letter.
type LetterInfo struct {
	ID    string `json:"id"`
	Bank  string `json:"bank"`
	Price int64  `json:"price"`
	Date  string `json:"date"`
}
