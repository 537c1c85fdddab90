/*
Package address contains the address type used by UTXO-related
notifications and subscription filters.
*/
package address

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Prefixes of the known networks.
const (
	PrefixMainnet = "kaspa"
	PrefixTestnet = "kaspatest"
	PrefixSimnet  = "kaspasim"
	PrefixDevnet  = "kaspadev"
)

// charset is the bech32 character set used by address payloads.
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// ErrInvalid is returned for strings that can't be an address.
var ErrInvalid = errors.New("invalid address")

// Address is a network-prefixed address string in its canonical
// (lower-case) form.
type Address struct {
	prefix  string
	payload string
}

// Parse converts the given string into an Address. Only the form is checked,
// the payload checksum is a business of the node that produces addresses.
func Parse(s string) (Address, error) {
	s = strings.ToLower(s)
	prefix, payload, ok := strings.Cut(s, ":")
	if !ok {
		return Address{}, fmt.Errorf("%w: no prefix in %q", ErrInvalid, s)
	}
	switch prefix {
	case PrefixMainnet, PrefixTestnet, PrefixSimnet, PrefixDevnet:
	default:
		return Address{}, fmt.Errorf("%w: unknown prefix %q", ErrInvalid, prefix)
	}
	if len(payload) == 0 {
		return Address{}, fmt.Errorf("%w: empty payload", ErrInvalid)
	}
	for i := 0; i < len(payload); i++ {
		if strings.IndexByte(charset, payload[i]) < 0 {
			return Address{}, fmt.Errorf("%w: bad character %q at %d", ErrInvalid, payload[i], i)
		}
	}
	return Address{prefix: prefix, payload: payload}, nil
}

// MustParse is like Parse, but panics on error. It's intended for tests and
// constants.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Prefix returns the network prefix of the address.
func (a Address) Prefix() string {
	return a.prefix
}

// IsZero returns true for the zero value.
func (a Address) IsZero() bool {
	return a.prefix == "" && a.payload == ""
}

// String implements the fmt.Stringer interface.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	return a.prefix + ":" + a.payload
}

// MarshalJSON implements the json.Marshaler interface.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	res, err := Parse(s)
	if err != nil {
		return err
	}
	*a = res
	return nil
}

// Set is a set of addresses.
type Set map[Address]struct{}

// NewSet creates a Set from the given addresses.
func NewSet(addrs ...Address) Set {
	s := make(Set, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

// Contains checks whether a is in the set.
func (s Set) Contains(a Address) bool {
	_, ok := s[a]
	return ok
}

// Sorted returns set members in lexicographic order.
func (s Set) Sorted() []Address {
	res := make([]Address, 0, len(s))
	for a := range s {
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].String() < res[j].String()
	})
	return res
}
