package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// HashSize is the size of Hash in bytes.
const HashSize = 32

// Hash is a 32 byte long block or transaction identifier. It's displayed
// and serialized as a plain hex string in the natural byte order.
type Hash [HashSize]byte

// HashDecodeStringBE attempts to decode the given hex string into a Hash.
func HashDecodeStringBE(s string) (h Hash, err error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != HashSize*2 {
		return h, fmt.Errorf("expected string size of %d got %d", HashSize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	return HashDecodeBytesBE(b)
}

// HashDecodeBytesBE attempts to decode the given slice into a Hash.
func HashDecodeBytesBE(b []byte) (h Hash, err error) {
	if len(b) != HashSize {
		return h, fmt.Errorf("expected []byte of size %d got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// BytesBE returns a copy of the hash bytes.
func (h Hash) BytesBE() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// Equals returns true if both Hash values are the same.
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// String implements the fmt.Stringer interface.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (h *Hash) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*h, err = HashDecodeStringBE(js)
	return err
}

// MarshalJSON implements the json.Marshaler interface.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}
