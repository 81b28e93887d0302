// Package idmap maps Bluesky at-uri addressed records onto the dense int32
// ids a Lemmy client routes by.
//
// Ids are derived from the record key (last path segment) of a uri by a
// 31-multiplier rolling hash. The mapping is one-way and not injective: two
// record keys can derive the same id. A Cache remembers the reference behind
// each id it has seen so later actions can be sent to the right record.
package idmap

import (
	"math"
	"strings"
	"unicode/utf16"
)

// Derive returns the local id for uri. It is deterministic and always
// non-negative.
func Derive(uri string) int32 {
	return hashKey(lastSegment(uri))
}

func lastSegment(uri string) string {
	uri = strings.TrimRight(uri, "/")
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// hashKey accumulates UTF-16 code units so ids match the ones a browser
// client computes for the same key.
func hashKey(key string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(key)) {
		h = h*31 + int32(c)
	}
	if h == math.MinInt32 {
		// -MinInt32 does not fit in 32 bits
		return math.MaxInt32
	}
	if h < 0 {
		return -h
	}
	return h
}
