package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Record is one row of a logical key-value table. The payload is kept as raw
// JSON end to end so numeric values round-trip without floating-point drift.
type Record struct {
	Table        string
	PartitionKey string
	SortKey      string
	Payload      json.RawMessage
	CreatedAt    time.Time
}

// DecodePayload unmarshals the record payload into target. Numbers are decoded
// as json.Number when the target field is of interface or json.Number type.
func (r Record) DecodePayload(target any) error {
	dec := json.NewDecoder(bytes.NewReader(r.Payload))
	dec.UseNumber()
	return dec.Decode(target)
}

// QueryOptions controls QueryByOwner.
type QueryOptions struct {
	// Limit caps the number of returned records; <= 0 means no limit.
	Limit int
	// Descending returns records ordered by sort key descending when true.
	Descending bool
	// SortKeyFrom and SortKeyTo bound the sort key range (inclusive).
	// Empty strings leave the corresponding bound open.
	SortKeyFrom string
	SortKeyTo   string
}
