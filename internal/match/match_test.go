package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func attrs() map[string]any {
	return map[string]any{
		"id":       "b1",
		"name":     "Merit Badge",
		"category": "Achievement",
		"type":     "award",
		"status":   "LIVE",
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  bool
	}{
		{"equality match", `{"category":"Achievement"}`, true},
		{"equality mismatch", `{"category":"Social"}`, false},
		{"two fields both match", `{"category":"Achievement","type":"award"}`, true},
		{"two fields one mismatch", `{"category":"Achievement","type":"id"}`, false},
		{"in match", `{"type":{"$in":["award","id"]}}`, true},
		{"in mismatch", `{"type":{"$in":["id","social"]}}`, false},
		{"regex match", `{"name":{"$regex":"^Merit"}}`, true},
		{"regex mismatch", `{"name":{"$regex":"^Badge"}}`, false},
		{"regex case insensitive", `{"name":{"$regex":"^merit","$options":"i"}}`, true},
		{"missing field", `{"nope":"x"}`, false},
		{"empty query matches", `{}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := ParseQuery([]byte(tc.query))
			if err != nil {
				t.Fatal(err)
			}
			if got := Evaluate(q, attrs()); got != tc.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestEvaluateNumbers(t *testing.T) {
	q, err := ParseQuery([]byte(`{"level":3}`))
	if err != nil {
		t.Fatal(err)
	}
	if !Evaluate(q, map[string]any{"level": int64(3)}) {
		t.Error("int64 attribute should equal JSON number")
	}
	if Evaluate(q, map[string]any{"level": int64(4)}) {
		t.Error("int64 attribute should not equal a different JSON number")
	}
}

func TestParseQueryRejects(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"invalid json", `{"a":`},
		{"unknown operator", `{"a":{"$where":"x"}}`},
		{"bad regex", `{"a":{"$regex":"["}}`},
		{"trailing garbage", `{"a":"b"} extra`},
		{"top level array", `["a"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseQuery([]byte(tc.query)); err == nil {
				t.Errorf("ParseQuery(%s) should fail", tc.query)
			}
		})
	}
}

func TestParseScope(t *testing.T) {
	all, err := ParseScope("*")
	if err != nil || all.Kind != ScopeAll {
		t.Fatalf("ParseScope(*) = %v, %v", all, err)
	}
	none, err := ParseScope("")
	if err != nil || none.Kind != ScopeNone {
		t.Fatalf("ParseScope(empty) = %v, %v", none, err)
	}
	empty, err := ParseScope("{}")
	if err != nil || empty.Kind != ScopeNone {
		t.Fatalf("ParseScope({}) = %v, %v", empty, err)
	}

	filter, err := ParseScope(`{"category":"Achievement"}`)
	if err != nil {
		t.Fatal(err)
	}
	if filter.Kind != ScopeFilter {
		t.Fatalf("expected filter scope, got %v", filter.Kind)
	}
	if !filter.Matches(attrs()) {
		t.Error("filter scope should match")
	}
	if filter.Matches(map[string]any{"category": "Social"}) {
		t.Error("filter scope should not match a different category")
	}

	if _, err := ParseScope(`{"a":`); err == nil {
		t.Error("malformed scope should fail to parse")
	}
}

func TestScopeRoundTrip(t *testing.T) {
	for _, raw := range []string{"*", "", `{"category":"Achievement"}`} {
		s, err := ParseScope(raw)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(raw, s.String()); diff != "" {
			t.Errorf("scope round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestScopeCovers(t *testing.T) {
	all := AllScope()
	none := Scope{Kind: ScopeNone}
	filter, _ := ParseScope(`{"category":"Achievement"}`)
	sameFilter, _ := ParseScope(`{"category":"Achievement"}`)
	otherFilter, _ := ParseScope(`{"category":"Social"}`)

	cases := []struct {
		name               string
		granted, requested Scope
		want               bool
	}{
		{"all covers all", all, all, true},
		{"all covers filter", all, filter, true},
		{"anyone covers none", none, none, true},
		{"filter covers none", filter, none, true},
		{"none does not cover filter", none, filter, false},
		{"filter does not cover all", filter, all, false},
		{"filter covers identical filter", filter, sameFilter, true},
		{"filter does not cover different filter", filter, otherFilter, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScopeCovers(tc.granted, tc.requested); got != tc.want {
				t.Errorf("ScopeCovers = %v, want %v", got, tc.want)
			}
		})
	}
}
