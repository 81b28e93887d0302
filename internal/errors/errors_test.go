package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindRemoteFailure, "remote_failure"},
		{KindUnauthenticated, "unauthenticated"},
		{KindNotFound, "not_found"},
		{KindUnsupported, "unsupported"},
		{KindInvalid, "invalid"},
		{Kind(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.kind.String())
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"plain error", fmt.Errorf("boom"), KindRemoteFailure},
		{"not found sentinel", ErrNotFound, KindNotFound},
		{"wrapped not found sentinel", fmt.Errorf("ctx: %w", ErrNotFound), KindNotFound},
		{"not found ctor", NotFound("idmap", "Resolve", "handle 7"), KindNotFound},
		{"unsupported ctor", Unsupported("adapter", "LockPost"), KindUnsupported},
		{"unauthenticated ctor", Unauthenticated(nil, "session", "Resume"), KindUnauthenticated},
		{"invalid session sentinel", ErrInvalidSession, KindUnauthenticated},
		{"invalid ctor", Invalid("server", "decode", "bad body"), KindInvalid},
		{"remote wrap", WrapRemote(fmt.Errorf("502"), "bsky", "GetTimeline", "xrpc"), KindRemoteFailure},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, KindOf(test.err))
		})
	}
}

func TestWrapRemote_KeepsInnerKind(t *testing.T) {
	inner := Unauthenticated(fmt.Errorf("ExpiredToken"), "bsky", "call")
	err := WrapRemote(inner, "adapter", "ListPosts", "timeline")

	assert.True(t, IsUnauthenticated(err))
	assert.False(t, IsRemoteFailure(err))
	assert.ErrorIs(t, err, inner)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, WrapRemote(nil, "c", "op", "a"))
	assert.Nil(t, Wrap(KindNotFound, nil, "c", "op", "m"))
}

func TestError_Message(t *testing.T) {
	err := NotFound("idmap", "Resolve", "handle 42")
	assert.Equal(t, "idmap.Resolve: handle 42: not found, please refresh", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	err = Unsupported("adapter", "BanPerson")
	assert.Equal(t, "adapter.BanPerson: not supported by the remote service", err.Error())
}

func TestIsHelpers_Nil(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsUnsupported(nil))
	assert.False(t, IsUnauthenticated(nil))
	assert.False(t, IsRemoteFailure(nil))
}
