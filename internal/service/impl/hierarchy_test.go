package core

import (
	"errors"
	"testing"

	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/service"
)

func TestBoostHierarchy(t *testing.T) {
	svc := newService(t)
	createProfile(t, svc, "hy-owner")
	createProfile(t, svc, "hy-editor")

	grand := createBoost(t, svc, "hy-owner", service.BoostInput{Name: "grand"})
	parent := createBoost(t, svc, "hy-owner", service.BoostInput{Name: "parent"})
	leaf := createBoost(t, svc, "hy-owner", service.BoostInput{Name: "leaf"})

	// Linking needs edit rights on both ends.
	if err := svc.MakeBoostParent(ctx, "hy-editor", grand, parent); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("link without rights = %v, want ErrUnauthorized", err)
	}
	grant(t, svc, "hy-owner", grand, "hy-editor", domain.PermissionsUpdate{CanEdit: ptr(true)})
	if err := svc.MakeBoostParent(ctx, "hy-editor", grand, parent); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("link with rights on one end = %v, want ErrUnauthorized", err)
	}
	grant(t, svc, "hy-owner", parent, "hy-editor", domain.PermissionsUpdate{CanEdit: ptr(true)})
	if err := svc.MakeBoostParent(ctx, "hy-editor", grand, parent); err != nil {
		t.Fatal(err)
	}
	if err := svc.MakeBoostParent(ctx, "hy-owner", parent, leaf); err != nil {
		t.Fatal(err)
	}

	// The hierarchy stays acyclic and minimal.
	if err := svc.MakeBoostParent(ctx, "hy-owner", leaf, grand); !errors.Is(err, service.ErrConflict) {
		t.Errorf("cycle = %v, want ErrConflict", err)
	}
	if err := svc.MakeBoostParent(ctx, "hy-owner", grand, leaf); !errors.Is(err, service.ErrConflict) {
		t.Errorf("shortcut edge = %v, want ErrConflict", err)
	}

	children, _, err := svc.GetBoostChildren(ctx, "hy-owner", grand, -1, nil, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 2 {
		t.Errorf("descendants = %d, want 2", len(children))
	}
	count, err := svc.CountBoostChildren(ctx, "hy-owner", grand, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("direct children = %d, want 1", count)
	}
	parents, _, err := svc.GetBoostParents(ctx, "hy-owner", leaf, -1, nil, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(parents) != 2 {
		t.Errorf("ancestors = %d, want 2", len(parents))
	}

	if err := svc.RemoveBoostParent(ctx, "hy-owner", parent, leaf); err != nil {
		t.Fatal(err)
	}
	count, err = svc.CountBoostParents(ctx, "hy-owner", leaf, -1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("ancestors after unlink = %d, want 0", count)
	}
}
