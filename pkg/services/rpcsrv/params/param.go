package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/util"
)

// Param represents a param either passed to the server or to be sent to a
// server using the client.
type Param struct {
	json.RawMessage
	cache any
}

var (
	jsonNullBytes       = []byte("null")
	jsonFalseBytes      = []byte("false")
	jsonTrueBytes       = []byte("true")
	errMissingParameter = errors.New("parameter is missing")
	errNotAString       = errors.New("not a string")
	errNotAnInt         = errors.New("not an integer")
	errNotABool         = errors.New("not a boolean")
	errNotAnArray       = errors.New("not an array")
)

func (p Param) String() string {
	str, _ := p.GetString()
	return str
}

// GetStringStrict returns a string value of the parameter.
func (p *Param) GetStringStrict() (string, error) {
	if p == nil {
		return "", errMissingParameter
	}
	if p.IsNull() {
		return "", errNotAString
	}
	if p.cache == nil {
		var s string
		err := json.Unmarshal(p.RawMessage, &s)
		if err != nil {
			return "", errNotAString
		}
		p.cache = s
	}
	if s, ok := p.cache.(string); ok {
		return s, nil
	}
	return "", errNotAString
}

// GetString returns a string value of the parameter or tries to cast the parameter to a string value.
func (p *Param) GetString() (string, error) {
	if p == nil {
		return "", errMissingParameter
	}
	if p.IsNull() {
		return "", errNotAString
	}
	if p.cache == nil {
		if err := p.fillScalarCache(); err != nil {
			return "", errNotAString
		}
	}
	switch t := p.cache.(type) {
	case string:
		return t, nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", errNotAString
	}
}

// GetBooleanStrict returns boolean value of the parameter.
func (p *Param) GetBooleanStrict() (bool, error) {
	if p == nil {
		return false, errMissingParameter
	}
	if bytes.Equal(p.RawMessage, jsonTrueBytes) {
		p.cache = true
		return true, nil
	}
	if bytes.Equal(p.RawMessage, jsonFalseBytes) {
		p.cache = false
		return false, nil
	}
	return false, errNotABool
}

// GetBoolean returns a boolean value of the parameter or tries to cast the parameter to a bool value.
func (p *Param) GetBoolean() (bool, error) {
	if p == nil {
		return false, errMissingParameter
	}
	if p.IsNull() {
		return false, errNotABool
	}
	if p.cache == nil {
		if err := p.fillScalarCache(); err != nil {
			return false, errNotABool
		}
	}
	switch t := p.cache.(type) {
	case bool:
		return t, nil
	case string:
		return t != "", nil
	case int64:
		return t != 0, nil
	default:
		return false, errNotABool
	}
}

// GetIntStrict returns an int value of the parameter if the parameter is an integer.
func (p *Param) GetIntStrict() (int, error) {
	if p == nil {
		return 0, errMissingParameter
	}
	if p.IsNull() {
		return 0, errNotAnInt
	}
	if p.cache == nil {
		if err := p.fillScalarCache(); err != nil {
			return 0, errNotAnInt
		}
	}
	if i, ok := p.cache.(int64); ok && i == int64(int(i)) {
		return int(i), nil
	}
	return 0, errNotAnInt
}

// GetInt returns an int value of the parameter or tries to cast the parameter to an int value.
func (p *Param) GetInt() (int, error) {
	if p == nil {
		return 0, errMissingParameter
	}
	if p.IsNull() {
		return 0, errNotAnInt
	}
	if p.cache == nil {
		if err := p.fillScalarCache(); err != nil {
			return 0, errNotAnInt
		}
	}
	switch t := p.cache.(type) {
	case int64:
		if t == int64(int(t)) {
			return int(t), nil
		}
		return 0, errNotAnInt
	case string:
		return strconv.Atoi(t)
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errNotAnInt
	}
}

// fillScalarCache caches the first scalar interpretation of the parameter
// that works: integer, string or boolean. JSON reliably supports numbers up
// to 53 bits in size, so there is no uint64 attempt.
func (p *Param) fillScalarCache() error {
	var i int64
	if err := json.Unmarshal(p.RawMessage, &i); err == nil {
		p.cache = i
		return nil
	}
	var s string
	if err := json.Unmarshal(p.RawMessage, &s); err == nil {
		p.cache = s
		return nil
	}
	var b bool
	if err := json.Unmarshal(p.RawMessage, &b); err == nil {
		p.cache = b
		return nil
	}
	return errors.New("not a scalar")
}

// GetArray returns a slice of Params stored in the parameter.
func (p *Param) GetArray() ([]Param, error) {
	if p == nil {
		return nil, errMissingParameter
	}
	if p.IsNull() {
		return nil, errNotAnArray
	}
	if p.cache == nil {
		a := []Param{}
		err := json.Unmarshal(p.RawMessage, &a)
		if err != nil {
			return nil, errNotAnArray
		}
		p.cache = a
	}
	if a, ok := p.cache.([]Param); ok {
		return a, nil
	}
	return nil, errNotAnArray
}

// GetHash returns a hash value of the parameter given as a hex string.
func (p *Param) GetHash() (util.Hash, error) {
	s, err := p.GetStringStrict()
	if err != nil {
		return util.Hash{}, err
	}
	return util.HashDecodeStringBE(s)
}

// GetAddress returns an address value of the parameter.
func (p *Param) GetAddress() (address.Address, error) {
	s, err := p.GetStringStrict()
	if err != nil {
		return address.Address{}, err
	}
	return address.Parse(s)
}

// GetAddresses returns a list of addresses stored in the parameter.
func (p *Param) GetAddresses() ([]address.Address, error) {
	arr, err := p.GetArray()
	if err != nil {
		return nil, err
	}
	res := make([]address.Address, len(arr))
	for i := range arr {
		res[i], err = arr[i].GetAddress()
		if err != nil {
			return nil, fmt.Errorf("address %d: %w", i, err)
		}
	}
	return res, nil
}

// GetEvent returns an event type given by its name.
func (p *Param) GetEvent() (events.Type, error) {
	s, err := p.GetStringStrict()
	if err != nil {
		return events.Invalid, err
	}
	return events.FromString(strings.ToLower(s))
}

// IsNull returns whether the parameter represents JSON nil value.
func (p *Param) IsNull() bool {
	return bytes.Equal(p.RawMessage, jsonNullBytes)
}
