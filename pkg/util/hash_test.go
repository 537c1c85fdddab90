package util

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashDecodeString(t *testing.T) {
	hexStr := "f037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	h, err := HashDecodeStringBE(hexStr)
	require.NoError(t, err)
	require.Equal(t, hexStr, h.String())

	h2, err := HashDecodeStringBE("0x" + hexStr)
	require.NoError(t, err)
	require.True(t, h.Equals(h2))

	_, err = HashDecodeStringBE(hexStr[2:])
	require.Error(t, err)

	_, err = HashDecodeStringBE(strings.Repeat("z", HashSize*2))
	require.Error(t, err)
}

func TestHashDecodeBytes(t *testing.T) {
	b := make([]byte, HashSize)
	b[0] = 0xff
	h, err := HashDecodeBytesBE(b)
	require.NoError(t, err)
	require.Equal(t, b, h.BytesBE())

	_, err = HashDecodeBytesBE(b[1:])
	require.Error(t, err)
}

func TestHashJSON(t *testing.T) {
	h := Hash{1, 2, 3}
	data, err := json.Marshal(h)
	require.NoError(t, err)
	require.Equal(t, `"`+h.String()+`"`, string(data))

	var actual Hash
	require.NoError(t, json.Unmarshal(data, &actual))
	require.Equal(t, h, actual)

	require.Error(t, json.Unmarshal([]byte(`"abc"`), &actual))
	require.Error(t, json.Unmarshal([]byte(`123`), &actual))
}
