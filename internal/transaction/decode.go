package transaction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// FieldTransactions is the payload field holding the batch.
const FieldTransactions = "transactions"

// minExponent bounds the decimal exponent of an amount. The smallest float64
// subnormal is about 4.9e-324, so anything finer cannot reach the response
// and would only inflate the exact sum.
const minExponent = -400

// Decoder turns a raw total request payload into a Batch.
type Decoder struct {
	// MaxTransactions caps the batch length. 0 means unlimited.
	MaxTransactions int
}

// DecodeBatch decodes a payload with no limit on the batch length.
func DecodeBatch(data []byte) (Batch, error) {
	return Decoder{}.Decode(data)
}

// Decode validates the payload and returns its batch, or an *InputError when
// the body is not an object, the transactions field is missing or not an
// array, or an element is not a finite number.
func (d Decoder) Decode(data []byte) (Batch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var payload map[string]json.RawMessage
	if err := dec.Decode(&payload); err != nil {
		return nil, invalid("", "request body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, invalid("", "request body must contain a single JSON object")
	}

	raw, ok := payload[FieldTransactions]
	if !ok {
		return nil, invalid(FieldTransactions, "field is required")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, invalid(FieldTransactions, "must be an array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalid(FieldTransactions, "must be an array")
	}
	if d.MaxTransactions > 0 && len(items) > d.MaxTransactions {
		return nil, invalid(FieldTransactions, fmt.Sprintf("at most %d entries allowed", d.MaxTransactions))
	}

	batch := make(Batch, len(items))
	for i, item := range items {
		v, err := parseAmount(item)
		if err != nil {
			return nil, invalid(fmt.Sprintf("%s[%d]", FieldTransactions, i), err.Error())
		}
		batch[i] = v
	}
	return batch, nil
}

var errOutOfRange = errors.New("number out of range")

func parseAmount(item json.RawMessage) (decimal.Decimal, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || !(item[0] == '-' || (item[0] >= '0' && item[0] <= '9')) {
		return decimal.Decimal{}, errors.New("must be a number")
	}
	// Amounts must stay representable in the float64 response.
	f, err := strconv.ParseFloat(string(item), 64)
	if err != nil {
		return decimal.Decimal{}, errOutOfRange
	}
	v, err := decimal.NewFromString(string(item))
	if err != nil {
		return decimal.Decimal{}, errors.New("must be a number")
	}
	if v.IsZero() {
		return decimal.Zero, nil
	}
	// ParseFloat reports underflow as 0 with no error.
	if f == 0 || v.Exponent() < minExponent {
		return decimal.Decimal{}, errOutOfRange
	}
	return v, nil
}
