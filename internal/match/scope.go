package match

import "encoding/json"

type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeFilter
)

// Scope restricts which descendant boosts a children-scoped permission
// applies to. It is a tagged variant: all boosts, no boosts, or the boosts
// matching a query. Filter holds the parsed query so the read path never
// re-parses; Raw keeps the serialized form for storage.
type Scope struct {
	Kind   ScopeKind
	Filter Query
	Raw    string
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeAll:
		return "*"
	case ScopeFilter:
		return s.Raw
	default:
		return ""
	}
}

// Matches reports whether the scope applies to a boost with the given
// attributes.
func (s Scope) Matches(attrs map[string]any) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeFilter:
		return Evaluate(s.Filter, attrs)
	default:
		return false
	}
}

// AllScope grants a permission on every descendant.
func AllScope() Scope { return Scope{Kind: ScopeAll} }

// ParseScope turns the serialized form of a permission scope into its
// tagged variant. "*" grants everything, the empty string (or an empty
// object) grants nothing, anything else must be a valid query.
func ParseScope(raw string) (Scope, error) {
	switch raw {
	case "*":
		return Scope{Kind: ScopeAll}, nil
	case "", "{}":
		return Scope{Kind: ScopeNone}, nil
	}

	q, err := ParseQuery([]byte(raw))
	if err != nil {
		return Scope{}, err
	}
	if len(q) == 0 {
		return Scope{Kind: ScopeNone}, nil
	}
	return Scope{Kind: ScopeFilter, Filter: q, Raw: raw}, nil
}

// ScopeCovers reports whether a caller holding the granted scope may hand
// out the requested one. An all-scope covers anything and anyone may grant
// the empty scope; a filter only covers the identical filter, since query
// implication is not decidable field-by-field.
func ScopeCovers(granted, requested Scope) bool {
	switch {
	case requested.Kind == ScopeNone:
		return true
	case granted.Kind == ScopeAll:
		return true
	case granted.Kind == ScopeNone:
		return false
	case requested.Kind == ScopeAll:
		return false
	default:
		return canonical(granted.Filter) == canonical(requested.Filter)
	}
}

func canonical(q Query) string {
	// json.Marshal sorts map keys, which is all the canonical form needs.
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}
