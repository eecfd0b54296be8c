package orders

import "maskchain/internal/ledger"

// MinistryOrder is the local index row for a regulator order. The id is the
// ledger order id, generated client-side before the ledger call. No status or
// amount is cached locally; those are ledger truth.
type MinistryOrder struct {
	ID         string `json:"id"`
	MinistryID int64  `json:"ministry"`
}

// HospitalOrder is the local index row for a demand-side order.
type HospitalOrder struct {
	ID         string `json:"id"`
	HospitalID int64  `json:"hospital"`
}

// HospitalOrders is the reconciled per-hospital view. Dirty means at least
// one of the hospital's orders could not be confirmed against the ledger
// (lookup failed or the quantity sentinel came back); such orders are omitted
// from Orders but the hospital entry itself is always present, so callers can
// tell "no orders" apart from "ledger state inconsistent".
type HospitalOrders struct {
	ID     int64                       `json:"id"`
	Name   string                      `json:"name"`
	Orders []*ledger.HospitalOrderInfo `json:"orders"`
	Dirty  bool                        `json:"dirty"`
}
