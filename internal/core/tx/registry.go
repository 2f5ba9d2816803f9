package tx

import (
	"encoding/json"
	"errors"
)

// ErrUnknownTransactionType is returned when a transaction type is unknown
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// Factory creates an empty template of a given type
type Factory func() Template

var registry = map[Type]Factory{}

// Register registers a template factory for a transaction type.
// Called from init() in each template file.
func Register(t Type, f Factory) {
	registry[t] = f
}

// NewFromType creates an empty template of the given type
func NewFromType(t Type) (Template, error) {
	f, ok := registry[t]
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return f(), nil
}

// FromJSON decodes a serialized template into its concrete type.
// Round-trips every registered template without field loss.
func FromJSON(data []byte) (Template, error) {
	var raw struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	txType, ok := TypeFromName(raw.TransactionType)
	if !ok {
		return nil, ErrUnknownTransactionType
	}

	tpl, err := NewFromType(txType)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}
