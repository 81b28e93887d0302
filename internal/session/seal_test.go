package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudkipdev/rephoton/internal/errors"
)

const testMasterKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer(testMasterKey)
	require.NoError(t, err)

	sealed, err := s.Seal("tok", []byte(`{"did":"did:plc:me"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "did:plc:me")

	plain, err := s.Open("tok", sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"did":"did:plc:me"}`, string(plain))
}

func TestSealer_SameKeyAcrossInstances(t *testing.T) {
	a, err := NewSealer(testMasterKey)
	require.NoError(t, err)
	b, err := NewSealer(testMasterKey)
	require.NoError(t, err)

	sealed, err := a.Seal("tok", []byte("x"))
	require.NoError(t, err)
	_, err = b.Open("tok", sealed)
	assert.NoError(t, err)
}

func TestSealer_Rejects(t *testing.T) {
	s, err := NewSealer(testMasterKey)
	require.NoError(t, err)
	sealed, err := s.Seal("tok", []byte("x"))
	require.NoError(t, err)

	_, err = s.Open("other", sealed)
	assert.True(t, errors.IsUnauthenticated(err), "bound to token")

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = s.Open("tok", tampered)
	assert.True(t, errors.IsUnauthenticated(err))

	_, err = s.Open("tok", sealed[:10])
	assert.True(t, errors.IsUnauthenticated(err))

	random, err := NewSealer("")
	require.NoError(t, err)
	_, err = random.Open("tok", sealed)
	assert.Error(t, err)
}

func TestNewSealer_BadKey(t *testing.T) {
	_, err := NewSealer("zz")
	assert.Equal(t, errors.KindInvalid, errors.KindOf(err))

	_, err = NewSealer(strings.Repeat("ab", 16))
	assert.NoError(t, err)

	// 15 bytes
	_, err = NewSealer(strings.Repeat("ab", 15))
	assert.Equal(t, errors.KindInvalid, errors.KindOf(err))
}
