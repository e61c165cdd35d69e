package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_Windows1251(t *testing.T) {
	for _, name := range []string{"windows-1251", "WIN1251", "cp1251", " Windows-1251 "} {
		decode, err := Lookup(name)
		require.NoError(t, err, name)
		require.NotNil(t, decode, name)

		// "Привет" in cp1251
		s, err := decode([]byte{0xcf, 0xf0, 0xe8, 0xe2, 0xe5, 0xf2})
		require.NoError(t, err)
		assert.Equal(t, "Привет", s, name)
	}
}

func TestLookup_Raw(t *testing.T) {
	for _, name := range []string{"", "raw", "RAW"} {
		decode, err := Lookup(name)
		require.NoError(t, err)
		assert.Nil(t, decode, "%q must pass bytes through", name)
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("klingon-42")
	require.Error(t, err)
}

func TestEncoder_RoundTrip(t *testing.T) {
	encode, err := Encoder("windows-1252")
	require.NoError(t, err)
	decode, err := Lookup("windows-1252")
	require.NoError(t, err)

	raw, err := encode("Café")
	require.NoError(t, err)
	assert.Len(t, raw, 4)

	s, err := decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Café", s)
}
