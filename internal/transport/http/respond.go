package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"maskchain/internal/settlement/chain"
	dErrors "maskchain/pkg/domain-errors"
)

type errorBody struct {
	Code  dErrors.Code  `json:"code"`
	Error string        `json:"error"`
	Chain *chainContext `json:"chain,omitempty"`
}

// chainContext spells out the committed prefix of a halted settlement chain
// so API callers know which entities already exist.
type chainContext struct {
	Payment  int64      `json:"payment"`
	Order    string     `json:"order"`
	Letter   string     `json:"letter,omitempty"`
	Deal     string     `json:"deal,omitempty"`
	Delivery string     `json:"delivery,omitempty"`
	Step     chain.Step `json:"step"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and writes the coded
// body. Incomplete-chain errors additionally carry the committed prefix.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Code: code, Error: "internal error"}

	var de *dErrors.Error
	if errors.As(err, &de) {
		body.Error = de.Message
	}

	var inc *chain.IncompleteError
	if errors.As(err, &inc) {
		body.Chain = &chainContext{
			Payment:  inc.PaymentID,
			Order:    inc.OrderID,
			Letter:   inc.LetterID,
			Deal:     inc.DealID,
			Delivery: inc.DeliveryID,
			Step:     inc.Step,
		}
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

func invalidParam(name string) error {
	return dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", name)
}

// decodeJSON decodes a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
