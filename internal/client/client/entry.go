package client

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Entry is the content of one stored record.
type Entry struct {
	Password string `cbor:"1,keyasint"`
	Notes    string `cbor:"2,keyasint,omitempty"`
}

// EncodeEntry serializes e into a record payload.
func EncodeEntry(e Entry) ([]byte, error) {
	return cbor.Marshal(e)
}

// DecodeEntry parses a payload written by EncodeEntry.
func DecodeEntry(payload []byte) (Entry, error) {
	var e Entry
	if err := cbor.Unmarshal(payload, &e); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}
