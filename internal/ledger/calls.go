package ledger

import (
	"context"
	"strconv"
)

// Transaction names of the ledger smart contract.
const (
	txGetMinistryInfo        = "getMinistryInfo"
	txGetProducerInfo        = "getProducerInfo"
	txGetMinistryOrderInfo   = "getMinistryOrderInfo"
	txMakeMinistryOrder      = "makeMinistryOrder"
	txUpdateMask             = "updateMask"
	txMakeHospitalOrder      = "makeHospitalOrder"
	txUpdateHospitalDelivery = "updateHospitalDelivery"
	txGetHospitalOrderInfo   = "getHospitalOrderInfo"
	txGetDeliveryInfo        = "getDeliveryInfo"
	txGetProducerOfferInfo   = "getProducerOfferInfo"
	txMakeProducerOffer      = "makeProducerOffer"
	txAcceptOffer            = "acceptOffer"
	txCreateDeal             = "createDeal"
	txCreateDelivery         = "createDelivery"
	txUpdateDelivery         = "updateDelivery"
	txGetPaymentLetterInfo   = "getPaymentLetterInfo"
	txCreatePaymentLetter    = "createPaymentLetter"
)

// noWinner is how the ledger encodes an order without an accepted offer.
const noWinner = "none"

// AmountUnknown is the -1 sentinel the ledger uses for "unknown or
// unreachable" quantities, on producer stock queries and hospital order
// amounts alike. Callers use it to mark listings as dirty rather than
// dropping the entry.
const AmountUnknown int64 = -1

// GetMinistryInfo returns the regulator-held stock quantity.
func (c *Client) GetMinistryInfo(ctx context.Context) (int64, error) {
	resp, err := c.invoke(ctx, txGetMinistryInfo, nil)
	if err != nil {
		return 0, err
	}
	amount, ok := resp.Int("maskAmount")
	if !ok {
		return 0, shapeError(txGetMinistryInfo, "maskAmount")
	}
	return amount, nil
}

// GetProducerInfo returns the stock quantity held by the producer with the
// given ledger key, or AmountUnknown when the ledger cannot answer.
// Unlike the other read calls this one never returns an error: the sentinel
// is part of the read-reconciliation contract.
func (c *Client) GetProducerInfo(ctx context.Context, producerKey string) int64 {
	resp, err := c.invoke(ctx, txGetProducerInfo, map[string]string{"coID": producerKey})
	if err != nil {
		return AmountUnknown
	}
	amount, ok := resp.Int("amount")
	if !ok {
		return AmountUnknown
	}
	return amount
}

// GetMinistryOrderInfo returns ledger truth for a regulator order.
func (c *Client) GetMinistryOrderInfo(ctx context.Context, orderID string) (*OrderInfo, error) {
	resp, err := c.invoke(ctx, txGetMinistryOrderInfo, map[string]string{"orderID": orderID})
	if err != nil {
		return nil, err
	}

	id, ok := resp.String("orderID")
	if !ok {
		return nil, shapeError(txGetMinistryOrderInfo, "orderID")
	}
	amount, ok := resp.Int("amount")
	if !ok {
		return nil, shapeError(txGetMinistryOrderInfo, "amount")
	}
	endDate, ok := resp.String("endDate")
	if !ok {
		return nil, shapeError(txGetMinistryOrderInfo, "endDate")
	}
	openMillis, ok := resp.Int("openDate")
	if !ok {
		return nil, shapeError(txGetMinistryOrderInfo, "openDate")
	}

	info := &OrderInfo{
		ID:       id,
		Amount:   amount,
		EndDate:  endDate,
		OpenDate: millisToString(openMillis),
	}
	if winner, ok := resp.String("winnerOffer"); ok && winner != noWinner {
		info.Winner = &winner
	}
	return info, nil
}

// MakeMinistryOrder records a new regulator order on the ledger. orderID is
// generated by the caller before this call and doubles as the idempotency key.
func (c *Client) MakeMinistryOrder(ctx context.Context, orderID string, maskAmount int64, endDate string) error {
	_, err := c.invoke(ctx, txMakeMinistryOrder, map[string]string{
		"orderID":    orderID,
		"maskAmount": strconv.FormatInt(maskAmount, 10),
		"endDate":    endDate,
		"date":       c.timestampMillis(),
	})
	return err
}

// UpdateMask adds stock to a producer's ledger balance.
func (c *Client) UpdateMask(ctx context.Context, producerKey string, amount int64) error {
	_, err := c.invoke(ctx, txUpdateMask, map[string]string{
		"coID":   producerKey,
		"amount": strconv.FormatInt(amount, 10),
	})
	return err
}

// MakeHospitalOrder records a new demand-side order. Delivery status starts
// at zero on the wire.
func (c *Client) MakeHospitalOrder(ctx context.Context, orderID string, maskAmount int64, hospitalKey string, urgency int64) error {
	_, err := c.invoke(ctx, txMakeHospitalOrder, map[string]string{
		"orderID":        orderID,
		"maskAmount":     strconv.FormatInt(maskAmount, 10),
		"hosID":          hospitalKey,
		"urgency":        strconv.FormatInt(urgency, 10),
		"date":           c.timestampMillis(),
		"deliveryStatus": "0",
	})
	return err
}

// UpdateHospitalDelivery sets the delivery status of a hospital order.
func (c *Client) UpdateHospitalDelivery(ctx context.Context, orderID, status string) error {
	_, err := c.invoke(ctx, txUpdateHospitalDelivery, map[string]string{
		"orderID":        orderID,
		"deliveryStatus": status,
	})
	return err
}

// GetHospitalOrderInfo returns ledger truth for a hospital order.
func (c *Client) GetHospitalOrderInfo(ctx context.Context, orderID string) (*HospitalOrderInfo, error) {
	resp, err := c.invoke(ctx, txGetHospitalOrderInfo, map[string]string{"orderID": orderID})
	if err != nil {
		return nil, err
	}

	amount, ok := resp.Int("amount")
	if !ok {
		return nil, shapeError(txGetHospitalOrderInfo, "amount")
	}
	urgency, ok := resp.Int("urgency")
	if !ok {
		return nil, shapeError(txGetHospitalOrderInfo, "urgency")
	}
	dateMillis, ok := resp.Int("date")
	if !ok {
		return nil, shapeError(txGetHospitalOrderInfo, "date")
	}
	status, ok := resp.String("deliveryStatus")
	if !ok {
		if n, numOK := resp.Int("deliveryStatus"); numOK {
			status = strconv.FormatInt(n, 10)
		} else {
			return nil, shapeError(txGetHospitalOrderInfo, "deliveryStatus")
		}
	}

	return &HospitalOrderInfo{
		ID:         orderID,
		Amount:     amount,
		Urgency:    urgency,
		Date:       millisToString(dateMillis),
		DateMillis: dateMillis,
		Status:     status,
	}, nil
}

// GetDeliveryInfo returns ledger truth for a delivery.
func (c *Client) GetDeliveryInfo(ctx context.Context, deliveryID string) (*DeliveryInfo, error) {
	resp, err := c.invoke(ctx, txGetDeliveryInfo, map[string]string{"delID": deliveryID})
	if err != nil {
		return nil, err
	}

	id, ok := resp.String("delID")
	if !ok {
		return nil, shapeError(txGetDeliveryInfo, "delID")
	}
	dateMillis, ok := resp.Int("date")
	if !ok {
		return nil, shapeError(txGetDeliveryInfo, "date")
	}
	status, ok := resp.String("status")
	if !ok {
		if n, numOK := resp.Int("status"); numOK {
			status = strconv.FormatInt(n, 10)
		} else {
			return nil, shapeError(txGetDeliveryInfo, "status")
		}
	}

	return &DeliveryInfo{ID: id, Date: millisToString(dateMillis), Status: status}, nil
}

// GetProducerOfferInfo returns ledger truth for a producer offer.
func (c *Client) GetProducerOfferInfo(ctx context.Context, offerID string) (*OfferInfo, error) {
	resp, err := c.invoke(ctx, txGetProducerOfferInfo, map[string]string{"offerID": offerID})
	if err != nil {
		return nil, err
	}

	id, ok := resp.String("offerID")
	if !ok {
		return nil, shapeError(txGetProducerOfferInfo, "offerID")
	}
	producer, ok := resp.String("coID")
	if !ok {
		return nil, shapeError(txGetProducerOfferInfo, "coID")
	}
	order, ok := resp.String("orderID")
	if !ok {
		return nil, shapeError(txGetProducerOfferInfo, "orderID")
	}
	dateMillis, ok := resp.Int("date")
	if !ok {
		return nil, shapeError(txGetProducerOfferInfo, "date")
	}

	info := &OfferInfo{
		ID:       id,
		Producer: producer,
		Order:    order,
		Date:     millisToString(dateMillis),
	}
	if offer, ok := resp.String("offer"); ok {
		info.Offer = offer
	} else if n, ok := resp.Int("offer"); ok {
		info.Offer = strconv.FormatInt(n, 10)
	}
	if status, ok := resp.String("status"); ok {
		info.Status = status
	} else if n, ok := resp.Int("status"); ok {
		info.Status = strconv.FormatInt(n, 10)
	}
	return info, nil
}

// MakeProducerOffer records a bid against a regulator order.
func (c *Client) MakeProducerOffer(ctx context.Context, offerID, producerKey, orderID string, offer int64) error {
	_, err := c.invoke(ctx, txMakeProducerOffer, map[string]string{
		"offerID": offerID,
		"coID":    producerKey,
		"orderID": orderID,
		"offer":   strconv.FormatInt(offer, 10),
		"date":    c.timestampMillis(),
	})
	return err
}

// AcceptOffer marks the given offer as the winner of the order.
func (c *Client) AcceptOffer(ctx context.Context, offerID, orderID string) error {
	_, err := c.invoke(ctx, txAcceptOffer, map[string]string{
		"offerID": offerID,
		"orderID": orderID,
	})
	return err
}

// CreateDeal records a deal tying the winning producer, the payment letter
// and the order amount together.
func (c *Client) CreateDeal(ctx context.Context, dealID, producerKey string, dealPrice int64, letterID string, maskAmount int64) error {
	_, err := c.invoke(ctx, txCreateDeal, map[string]string{
		"dealID":     dealID,
		"coID":       producerKey,
		"dealPrice":  strconv.FormatInt(dealPrice, 10),
		"letterID":   letterID,
		"maskAmount": strconv.FormatInt(maskAmount, 10),
		"date":       c.timestampMillis(),
	})
	return err
}

// CreateDelivery records a new delivery for a producer.
func (c *Client) CreateDelivery(ctx context.Context, deliveryID, producerKey, status string) error {
	_, err := c.invoke(ctx, txCreateDelivery, map[string]string{
		"delID":  deliveryID,
		"coID":   producerKey,
		"status": status,
		"date":   c.timestampMillis(),
	})
	return err
}

// UpdateDelivery sets the status of a delivery.
func (c *Client) UpdateDelivery(ctx context.Context, deliveryID, status string) error {
	_, err := c.invoke(ctx, txUpdateDelivery, map[string]string{
		"delID":  deliveryID,
		"status": status,
	})
	return err
}

// GetPaymentLetterInfo returns ledger truth for a payment letter.
func (c *Client) GetPaymentLetterInfo(ctx context.Context, letterID string) (*LetterInfo, error) {
	resp, err := c.invoke(ctx, txGetPaymentLetterInfo, map[string]string{"letterID": letterID})
	if err != nil {
		return nil, err
	}

	id, ok := resp.String("letterID")
	if !ok {
		return nil, shapeError(txGetPaymentLetterInfo, "letterID")
	}
	bank, ok := resp.String("bankID")
	if !ok {
		return nil, shapeError(txGetPaymentLetterInfo, "bankID")
	}
	price, ok := resp.Int("price")
	if !ok {
		return nil, shapeError(txGetPaymentLetterInfo, "price")
	}
	dateMillis, ok := resp.Int("date")
	if !ok {
		return nil, shapeError(txGetPaymentLetterInfo, "date")
	}

	return &LetterInfo{ID: id, Bank: bank, Price: price, Date: millisToString(dateMillis)}, nil
}

// CreatePaymentLetter records a payment letter issued by a finance org.
// The "Date" key really is capitalized on this one transaction; the contract
// is inconsistent and the gateway matches it byte for byte.
func (c *Client) CreatePaymentLetter(ctx context.Context, letterID, bankKey string, price int64) error {
	_, err := c.invoke(ctx, txCreatePaymentLetter, map[string]string{
		"letterID": letterID,
		"bankID":   bankKey,
		"price":    strconv.FormatInt(price, 10),
		"Date":     c.timestampMillis(),
	})
	return err
}
