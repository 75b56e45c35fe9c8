package core

import (
	"errors"
	"testing"

	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/match"
	"github.com/opencreds/boostnet/internal/service"
)

func TestBoostLifecycle(t *testing.T) {
	svc := newService(t)
	createProfile(t, svc, "bl-owner")
	createProfile(t, svc, "bl-holder")

	uri := createBoost(t, svc, "bl-owner", service.BoostInput{
		Name:   "course",
		Status: domain.StatusDraft,
	})

	// Drafts cannot be issued.
	if _, err := svc.SendBoost(ctx, "bl-owner", uri, "bl-holder", nil); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("send draft = %v, want ErrForbidden", err)
	}

	// Drafts are freely editable.
	err := svc.UpdateBoost(ctx, "bl-owner", uri, service.BoostUpdate{
		Name:     ptr("course 2026"),
		Category: ptr("education"),
	})
	if err != nil {
		t.Fatal(err)
	}
	live := domain.StatusLive
	if err := svc.UpdateBoost(ctx, "bl-owner", uri, service.BoostUpdate{Status: &live}); err != nil {
		t.Fatal(err)
	}

	boost, err := svc.GetBoost(ctx, "bl-owner", uri)
	if err != nil {
		t.Fatal(err)
	}
	if boost.Name != "course 2026" || boost.Category != "education" || boost.Status != domain.StatusLive {
		t.Errorf("boost after publish = %+v", boost)
	}

	// Once live, the template is frozen and there is no way back to draft.
	err = svc.UpdateBoost(ctx, "bl-owner", uri, service.BoostUpdate{Name: ptr("renamed")})
	if !errors.Is(err, service.ErrForbidden) {
		t.Errorf("edit live boost = %v, want ErrForbidden", err)
	}
	draft := domain.StatusDraft
	if err := svc.UpdateBoost(ctx, "bl-owner", uri, service.BoostUpdate{Status: &draft}); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("unpublish = %v, want ErrForbidden", err)
	}

	if _, err := svc.SendBoost(ctx, "bl-owner", uri, "bl-holder", nil); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateBoostRejections(t *testing.T) {
	svc := newService(t)
	createProfile(t, svc, "ur-owner")
	createProfile(t, svc, "ur-other")

	uri := createBoost(t, svc, "ur-owner", service.BoostInput{Name: "locked", Status: domain.StatusDraft})

	err := svc.UpdateBoost(ctx, "ur-other", uri, service.BoostUpdate{Name: ptr("mine now")})
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("edit without rights = %v, want ErrUnauthorized", err)
	}

	grant(t, svc, "ur-owner", uri, "ur-other", domain.PermissionsUpdate{CanEdit: ptr(true)})
	if err := svc.UpdateBoost(ctx, "ur-other", uri, service.BoostUpdate{Name: ptr("mine now")}); err != nil {
		t.Fatal(err)
	}

	bad := domain.BoostStatus("ARCHIVED")
	if err := svc.UpdateBoost(ctx, "ur-owner", uri, service.BoostUpdate{Status: &bad}); !errors.Is(err, service.ErrBadRequest) {
		t.Errorf("invalid status = %v, want ErrBadRequest", err)
	}

	if _, err := svc.CreateBoost(ctx, "ur-owner", service.BoostInput{Name: ""}); !errors.Is(err, service.ErrBadRequest) {
		t.Errorf("empty name = %v, want ErrBadRequest", err)
	}
}

func TestDeleteBoost(t *testing.T) {
	svc := newService(t)
	createProfile(t, svc, "del-owner")
	createProfile(t, svc, "del-editor")
	createProfile(t, svc, "del-holder")

	parent := createBoost(t, svc, "del-owner", service.BoostInput{Name: "parent"})
	child, err := svc.CreateChildBoost(ctx, "del-owner", parent, service.BoostInput{
		Name:       "child",
		Credential: []byte(`{"type":"cred"}`),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Deletion is reserved for the creator and blocked while anything
	// hangs off the boost.
	if err := svc.DeleteBoost(ctx, "del-editor", child); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("delete by non-creator = %v, want ErrUnauthorized", err)
	}
	if err := svc.DeleteBoost(ctx, "del-owner", parent); !errors.Is(err, service.ErrConflict) {
		t.Errorf("delete with children = %v, want ErrConflict", err)
	}
	if _, err := svc.SendBoost(ctx, "del-owner", child, "del-holder", nil); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteBoost(ctx, "del-owner", child); !errors.Is(err, service.ErrConflict) {
		t.Errorf("delete with recipients = %v, want ErrConflict", err)
	}

	if _, err := svc.RevokeBoostRecipient(ctx, "del-owner", child, "del-holder"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteBoost(ctx, "del-owner", child); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteBoost(ctx, "del-owner", parent); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetBoost(ctx, "del-owner", parent); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("get deleted = %v, want ErrNotFound", err)
	}
}

func TestListBoostsPagination(t *testing.T) {
	svc := newService(t)
	createProfile(t, svc, "lp-owner")

	uris := make([]string, 0, 3)
	for _, name := range []string{"alpha", "beta", "gamma"} {
		uris = append(uris, createBoost(t, svc, "lp-owner", service.BoostInput{
			Name:     name,
			Category: "badge",
		}))
	}

	page, cursor, err := svc.GetPaginatedBoosts(ctx, "lp-owner", nil, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || cursor == "" {
		t.Fatalf("first page = %d boosts, cursor %q", len(page), cursor)
	}
	rest, cursor, err := svc.GetPaginatedBoosts(ctx, "lp-owner", nil, 2, cursor)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || cursor != "" {
		t.Fatalf("second page = %d boosts, cursor %q", len(rest), cursor)
	}
	seen := map[string]bool{}
	for _, b := range append(page, rest...) {
		seen[b.URI] = true
	}
	for _, uri := range uris {
		if !seen[uri] {
			t.Errorf("boost %s missing from pages", uri)
		}
	}

	query, err := match.ParseQuery([]byte(`{"name": "beta"}`))
	if err != nil {
		t.Fatal(err)
	}
	count, err := svc.CountBoosts(ctx, "lp-owner", query)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("filtered count = %d, want 1", count)
	}

	if _, _, err := svc.GetPaginatedBoosts(ctx, "lp-owner", nil, 2, "not-a-cursor"); !errors.Is(err, service.ErrBadRequest) {
		t.Errorf("bad cursor = %v, want ErrBadRequest", err)
	}
}

func TestPaginationSameSecond(t *testing.T) {
	svc := newService(t)
	createProfile(t, svc, "ts-owner")

	// Freeze the clock so all three boosts share a creation second, the
	// routine case in production where timestamps have second resolution.
	prev := now
	frozen := prev()
	now = func() int64 { return frozen }
	defer func() { now = prev }()

	for _, name := range []string{"one", "two", "three"} {
		createBoost(t, svc, "ts-owner", service.BoostInput{Name: name})
	}

	seen := map[string]bool{}
	cursor := ""
	for {
		page, next, err := svc.GetPaginatedBoosts(ctx, "ts-owner", nil, 2, cursor)
		if err != nil {
			t.Fatal(err)
		}
		for _, b := range page {
			if seen[b.URI] {
				t.Errorf("boost %s returned twice", b.URI)
			}
			seen[b.URI] = true
		}
		if next == "" {
			break
		}
		cursor = next
	}
	if len(seen) != 3 {
		t.Errorf("pagination returned %d distinct boosts, want 3", len(seen))
	}
}
