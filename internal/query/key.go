// Package query is the client-side server-state cache: keyed entries with a
// staleness window, shared in-flight fetches, invalidation, an optional
// Redis-backed persistence layer and debounced watches over filter stores.
package query

import (
	"net/url"
	"strings"
)

const keySep = "/"

// Key identifies a cached query, e.g. ["suppliers", "list", "acme", "1"].
type Key []string

// String renders the key with each part escaped, so prefixes of the string
// correspond to prefixes of the key.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, p := range k {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, keySep)
}

// HasPrefix reports whether prefix is a leading subsequence of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

// Entity is the first key element.
func (k Key) Entity() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// ParseKey reverses String.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, nil
	}
	raw := strings.Split(s, keySep)
	key := make(Key, len(raw))
	for i, p := range raw {
		v, err := url.QueryUnescape(p)
		if err != nil {
			return nil, err
		}
		key[i] = v
	}
	return key, nil
}
