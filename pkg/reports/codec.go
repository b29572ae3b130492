package reports

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeRecord serializes r with msgpack.
func EncodeRecord(r Record) ([]byte, error) {
	b, err := msgpack.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("reports: encode record: %w", err)
	}
	return b, nil
}

// DecodeRecord is the inverse of EncodeRecord.
func DecodeRecord(b []byte) (Record, error) {
	var r Record
	if err := msgpack.Unmarshal(b, &r); err != nil {
		return Record{}, fmt.Errorf("reports: decode record: %w", err)
	}
	return r, nil
}
