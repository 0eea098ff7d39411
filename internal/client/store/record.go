package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is one stored document.
//
// Fields are written by Put and Add; records returned by reads carry only
// Key, Data and the timestamps.
type Record struct {
	Key       string
	Data      []byte
	Fields    map[string]string
	UpdatedAt time.Time
	StoredAt  time.Time
}

// Encode marshals v to JSON and wraps it in a Record.
func Encode[T any](key string, updatedAt time.Time, v T, fields map[string]string) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Record{Key: key, Data: b, Fields: fields, UpdatedAt: updatedAt}, nil
}

// Decode unmarshals the record's document. A document that cannot be read
// back is treated as a storage failure.
func Decode[T any](rec Record) (T, error) {
	var v T
	if err := json.Unmarshal(rec.Data, &v); err != nil {
		return v, unavailable(fmt.Sprintf("decode %s", rec.Key), err)
	}
	return v, nil
}

// DecodeAll decodes every record, preserving order.
func DecodeAll[T any](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		v, err := Decode[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
