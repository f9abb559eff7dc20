package types

// ResolvedID is a platform identifier that may not have been resolved yet.
// Spreadsheet rows arrive with free-text names; the resolvers fill these in
// best-effort, and "unresolved" stays a visible state instead of an empty
// string discovered downstream.
type ResolvedID struct {
	id       string
	resolved bool
}

// NewResolvedID wraps a known platform identifier.
func NewResolvedID(id string) ResolvedID {
	return ResolvedID{id: id, resolved: true}
}

// UnresolvedID is the zero value, spelled out for readability at call sites.
func UnresolvedID() ResolvedID {
	return ResolvedID{}
}

// IsResolved reports whether a platform identifier was found.
func (r ResolvedID) IsResolved() bool {
	return r.resolved
}

// String returns the identifier, or "" when unresolved. The empty string is
// what the upload formats expect for an unset ID column.
func (r ResolvedID) String() string {
	return r.id
}
