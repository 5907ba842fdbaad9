// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package query

import "strings"

// Feature keys, in canonical order.
const (
	KeyPrice        = "price"
	KeyType         = "type"
	KeySize         = "size"
	KeyState        = "state"
	KeyDelegation   = "delegation"
	KeyJurisdiction = "jurisdiction"
)

// Features holds the attributes recognized in one search query.
// An empty field means the attribute was not detected.
type Features struct {
	// Price is the first all-digit token, kept as written.
	Price string `json:"price,omitempty"`

	// Type is the canonical property type name.
	Type string `json:"type,omitempty"`

	// Size is a normalized size code such as "s+3".
	Size string `json:"size,omitempty"`

	// State is the canonical region name.
	State string `json:"state,omitempty"`

	// Delegation is the canonical sub-region name.
	Delegation string `json:"delegation,omitempty"`

	// Jurisdiction is the canonical district name.
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

// Empty reports whether nothing was recognized.
func (f Features) Empty() bool {
	return f == Features{}
}

// Values returns the detected values in canonical key order.
func (f Features) Values() []string {
	out := make([]string, 0, 6)
	for _, v := range []string{f.Price, f.Type, f.Size, f.State, f.Delegation, f.Jurisdiction} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// String joins the detected values with spaces. Notifications quote it as the
// search that matched.
func (f Features) String() string {
	return strings.Join(f.Values(), " ")
}

// Map returns only the detected keys.
func (f Features) Map() map[string]string {
	m := make(map[string]string, 6)
	for _, kv := range [...]struct{ k, v string }{
		{KeyPrice, f.Price},
		{KeyType, f.Type},
		{KeySize, f.Size},
		{KeyState, f.State},
		{KeyDelegation, f.Delegation},
		{KeyJurisdiction, f.Jurisdiction},
	} {
		if kv.v != "" {
			m[kv.k] = kv.v
		}
	}
	return m
}
