package impl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/opencreds/boostnet/internal/config"
	"github.com/opencreds/boostnet/internal/db"
	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/match"
)

var testDB db.DB
var ctx = context.Background()
var seq int64

func TestMain(m *testing.M) {
	conn, err := sql.Open("sqlite3", "file:impltest?mode=memory&cache=shared")
	if err != nil {
		fmt.Fprintln(os.Stderr, "tests setup failure:", err)
		os.Exit(1)
	}
	conn.SetMaxOpenConns(1)

	schema, err := os.ReadFile("../../../migrations/000001_init.up.sql")
	if err != nil {
		fmt.Fprintln(os.Stderr, "tests setup failure:", err)
		os.Exit(1)
	}
	if _, err = conn.Exec(string(schema)); err != nil {
		fmt.Fprintln(os.Stderr, "tests setup failure:", err)
		os.Exit(1)
	}

	testDB = New(config.Configuration{}, conn)
	code := m.Run()
	conn.Close()
	os.Exit(code)
}

func next() int64 {
	seq++
	return seq
}

func mkProfile(t *testing.T, id string) domain.Profile {
	t.Helper()
	p := domain.Profile{ProfileID: id, DisplayName: id, Created: next()}
	if err := testDB.CreateProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	return p
}

func mkBoost(t *testing.T, id, createdBy string) domain.Boost {
	t.Helper()
	b := domain.Boost{
		ID:         id,
		Status:     domain.StatusLive,
		Name:       id,
		Category:   "Achievement",
		Type:       "award",
		Credential: []byte(`{"name":"` + id + `"}`),
		CreatedBy:  createdBy,
		Created:    next(),
	}
	if err := testDB.CreateBoost(ctx, b); err != nil {
		t.Fatal(err)
	}
	return b
}

func edge(t *testing.T, parent, child string) {
	t.Helper()
	if err := testDB.MakeParent(ctx, parent, child); err != nil {
		t.Fatal(err)
	}
}

func TestProfiles(t *testing.T) {
	mkProfile(t, "alice")
	p, err := testDB.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.ProfileID != "alice" || p.DisplayName != "alice" {
		t.Errorf("unexpected profile %+v", p)
	}

	if err := testDB.CreateProfile(ctx, domain.Profile{ProfileID: "alice"}); !errors.Is(err, db.ErrConflict) {
		t.Errorf("duplicate profile = %v, want ErrConflict", err)
	}
	if _, err := testDB.GetProfile(ctx, "nobody"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("missing profile = %v, want ErrNotFound", err)
	}
}

func TestSigningAuthorities(t *testing.T) {
	mkProfile(t, "sa-owner")
	sa := domain.SigningAuthority{ProfileID: "sa-owner", Endpoint: "https://signer.test", Name: "main"}
	if err := testDB.RegisterSigningAuthority(ctx, sa); err != nil {
		t.Fatal(err)
	}
	// Registering the same pair again is a no-op.
	if err := testDB.RegisterSigningAuthority(ctx, sa); err != nil {
		t.Fatal(err)
	}

	got, err := testDB.GetSigningAuthority(ctx, "sa-owner", "https://signer.test", "main")
	if err != nil {
		t.Fatal(err)
	}
	if got.Endpoint != sa.Endpoint {
		t.Errorf("got endpoint %q", got.Endpoint)
	}
	if _, err := testDB.GetSigningAuthority(ctx, "sa-owner", "https://signer.test", "other"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("unknown authority = %v, want ErrNotFound", err)
	}
}

func TestHierarchyInvariants(t *testing.T) {
	mkProfile(t, "hier")
	mkBoost(t, "h-a", "hier")
	mkBoost(t, "h-b", "hier")
	mkBoost(t, "h-c", "hier")
	edge(t, "h-a", "h-b")
	edge(t, "h-b", "h-c")

	if err := testDB.MakeParent(ctx, "h-a", "h-a"); !errors.Is(err, db.ErrConflict) {
		t.Errorf("self edge = %v, want ErrConflict", err)
	}
	if err := testDB.MakeParent(ctx, "h-c", "h-a"); !errors.Is(err, db.ErrConflict) {
		t.Errorf("cycle edge = %v, want ErrConflict", err)
	}
	if err := testDB.MakeParent(ctx, "h-a", "h-c"); !errors.Is(err, db.ErrConflict) {
		t.Errorf("redundant ancestor edge = %v, want ErrConflict", err)
	}

	ok, err := testDB.IsAncestor(ctx, "h-a", "h-c")
	if err != nil || !ok {
		t.Errorf("IsAncestor(h-a, h-c) = %v, %v", ok, err)
	}
	ok, err = testDB.IsAncestor(ctx, "h-c", "h-a")
	if err != nil || ok {
		t.Errorf("IsAncestor(h-c, h-a) = %v, %v", ok, err)
	}

	if err := testDB.RemoveParent(ctx, "h-a", "h-c"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("removing an indirect edge = %v, want ErrNotFound", err)
	}
}

func boostIDs(boosts []domain.Boost) []string {
	ids := make([]string, len(boosts))
	for i, b := range boosts {
		ids[i] = b.ID
	}
	return ids
}

func TestTraversalDepth(t *testing.T) {
	mkProfile(t, "walker")
	for _, id := range []string{"w-a", "w-b", "w-c", "w-d"} {
		mkBoost(t, id, "walker")
	}
	edge(t, "w-a", "w-b")
	edge(t, "w-b", "w-c")
	edge(t, "w-c", "w-d")

	cases := []struct {
		depth int64
		want  int
	}{
		{1, 1},
		{2, 2},
		{db.InfiniteGenerations, 3},
	}
	for _, tc := range cases {
		children, err := testDB.Children(ctx, "w-a", tc.depth)
		if err != nil {
			t.Fatal(err)
		}
		if len(children) != tc.want {
			t.Errorf("Children(w-a, %d) = %v, want %d boosts", tc.depth, boostIDs(children), tc.want)
		}
	}

	parents, err := testDB.Parents(ctx, "w-d", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(parents) != 1 || parents[0].ID != "w-c" {
		t.Errorf("Parents(w-d, 1) = %v", boostIDs(parents))
	}
}

func TestTraversalDiamondDedup(t *testing.T) {
	mkProfile(t, "diamond")
	for _, id := range []string{"d-top", "d-l", "d-r", "d-bottom"} {
		mkBoost(t, id, "diamond")
	}
	edge(t, "d-top", "d-l")
	edge(t, "d-top", "d-r")
	edge(t, "d-l", "d-bottom")
	edge(t, "d-r", "d-bottom")

	children, err := testDB.Children(ctx, "d-top", db.InfiniteGenerations)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 3 {
		t.Errorf("diamond descendants = %v, want the bottom exactly once", boostIDs(children))
	}
}

func editorRole(boostID, profileID, scope string) domain.Role {
	p := domain.EmptyPermissions()
	p.Role = "editor"
	p.CanEdit = true
	if scope != "" {
		s, _ := match.ParseScope(scope)
		p.CanEditChildren = s
	}
	return domain.Role{BoostID: boostID, ProfileID: profileID, Permissions: p}
}

func TestRoles(t *testing.T) {
	mkProfile(t, "role-owner")
	mkProfile(t, "bob")
	mkBoost(t, "r-top", "role-owner")
	mkBoost(t, "r-mid", "role-owner")
	mkBoost(t, "r-leaf", "role-owner")
	edge(t, "r-top", "r-mid")
	edge(t, "r-mid", "r-leaf")

	if err := testDB.UpsertRole(ctx, editorRole("r-top", "bob", "*")); err != nil {
		t.Fatal(err)
	}
	if err := testDB.UpsertRole(ctx, editorRole("r-mid", "bob", `{"category":"Achievement"}`)); err != nil {
		t.Fatal(err)
	}

	role, err := testDB.GetRole(ctx, "r-top", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if role.CanEditChildren.Kind != match.ScopeAll {
		t.Errorf("stored scope = %v", role.CanEditChildren)
	}

	// Upsert overwrites the whole record.
	if err := testDB.UpsertRole(ctx, editorRole("r-top", "bob", "")); err != nil {
		t.Fatal(err)
	}
	role, err = testDB.GetRole(ctx, "r-top", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if role.CanEditChildren.Kind != match.ScopeNone {
		t.Errorf("scope after overwrite = %v", role.CanEditChildren)
	}

	nearest, err := testDB.NearestAncestorRole(ctx, "r-leaf", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if nearest.BoostID != "r-mid" {
		t.Errorf("nearest ancestor role on %s, want r-mid", nearest.BoostID)
	}

	ancestors, err := testDB.AncestorRoles(ctx, "r-leaf", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(ancestors) != 2 {
		t.Errorf("ancestor roles = %d, want 2", len(ancestors))
	}

	if err := testDB.DeleteRole(ctx, "r-mid", "bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := testDB.GetRole(ctx, "r-mid", "bob"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("deleted role = %v, want ErrNotFound", err)
	}
	if _, err := testDB.NearestAncestorRole(ctx, "r-mid", "nobody"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("no ancestor role = %v, want ErrNotFound", err)
	}
}

func claimRecord(id, boostID, to string) domain.CredentialRecord {
	return domain.CredentialRecord{
		ID:         id,
		BoostID:    boostID,
		From:       "link-owner",
		To:         to,
		Credential: []byte(`{}`),
		Sent:       next(),
		Received:   next(),
		ActivityID: id,
	}
}

func TestClaimLinkBudget(t *testing.T) {
	mkProfile(t, "link-owner")
	mkProfile(t, "claimer")
	mkBoost(t, "cl-boost", "link-owner")

	uses := int64(2)
	link := domain.ClaimLink{
		BoostID:    "cl-boost",
		Challenge:  "budget",
		Endpoint:   "https://signer.test",
		Name:       "main",
		TTLSeconds: domain.InfiniteTTL,
		Remaining:  &uses,
		Created:    next(),
	}
	if err := testDB.CreateClaimLink(ctx, link); err != nil {
		t.Fatal(err)
	}

	grant := []domain.RoleGrant{{
		BoostID:   "cl-boost",
		ProfileID: "claimer",
		IfAbsent:  ptrPermissions(domain.AdminPermissions()),
	}}

	for i := 0; i < 2; i++ {
		record := claimRecord(fmt.Sprintf("cl-cred-%d", i), "cl-boost", "claimer")
		if err := testDB.ConsumeClaimLink(ctx, "cl-boost", "budget", record.Sent, record, grant); err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
	}

	record := claimRecord("cl-cred-final", "cl-boost", "claimer")
	if err := testDB.ConsumeClaimLink(ctx, "cl-boost", "budget", record.Sent, record, grant); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("exhausted link claim = %v, want ErrNotFound", err)
	}

	got, err := testDB.GetClaimLink(ctx, "cl-boost", "budget")
	if err != nil {
		t.Fatal(err)
	}
	if got.Remaining == nil || *got.Remaining != 0 {
		t.Errorf("remaining uses = %v, want 0", got.Remaining)
	}

	role, err := testDB.GetRole(ctx, "cl-boost", "claimer")
	if err != nil {
		t.Fatal(err)
	}
	if role.Role != domain.RoleAdmin {
		t.Errorf("granted role = %s, want admin", role.Role)
	}
}

func TestClaimLinkExpiry(t *testing.T) {
	mkProfile(t, "exp-owner")
	mkBoost(t, "exp-boost", "exp-owner")

	link := domain.ClaimLink{
		BoostID:    "exp-boost",
		Challenge:  "expired",
		Endpoint:   "https://signer.test",
		Name:       "main",
		TTLSeconds: 60,
		ExpiresAt:  100,
		Created:    40,
	}
	if err := testDB.CreateClaimLink(ctx, link); err != nil {
		t.Fatal(err)
	}

	record := claimRecord("exp-cred", "exp-boost", "exp-owner")
	if err := testDB.ConsumeClaimLink(ctx, "exp-boost", "expired", 101, record, nil); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expired link claim = %v, want ErrNotFound", err)
	}
	if err := testDB.ConsumeClaimLink(ctx, "exp-boost", "expired", 99, record, nil); err != nil {
		t.Errorf("claim before expiry = %v", err)
	}
}

func TestAcceptCredential(t *testing.T) {
	mkProfile(t, "issuer")
	mkProfile(t, "holder")
	mkBoost(t, "ac-boost", "issuer")

	record := domain.CredentialRecord{
		ID:         "ac-cred",
		BoostID:    "ac-boost",
		From:       "issuer",
		To:         "holder",
		Credential: []byte(`{}`),
		Sent:       next(),
		ActivityID: "ac-cred",
	}
	if err := testDB.CreateCredential(ctx, record); err != nil {
		t.Fatal(err)
	}

	yes := true
	grants := []domain.RoleGrant{{
		BoostID:   "ac-boost",
		ProfileID: "holder",
		Update:    &domain.PermissionsUpdate{CanIssue: &yes},
	}}
	receivedAt := next()
	if err := testDB.AcceptCredential(ctx, "ac-cred", receivedAt, grants); err != nil {
		t.Fatal(err)
	}

	got, err := testDB.GetCredential(ctx, "ac-cred")
	if err != nil {
		t.Fatal(err)
	}
	if got.Received != receivedAt {
		t.Errorf("received = %d, want %d", got.Received, receivedAt)
	}
	role, err := testDB.GetRole(ctx, "ac-boost", "holder")
	if err != nil {
		t.Fatal(err)
	}
	if !role.CanIssue {
		t.Error("grant was not applied")
	}

	if err := testDB.AcceptCredential(ctx, "ac-cred", next(), nil); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("double accept = %v, want ErrNotFound", err)
	}
}

func TestRevokeRecipient(t *testing.T) {
	mkProfile(t, "rev-owner")
	mkProfile(t, "victim")
	mkBoost(t, "rev-claim", "rev-owner")
	mkBoost(t, "rev-target", "rev-owner")
	mkBoost(t, "rev-other", "rev-owner")

	if err := testDB.CreateCredential(ctx, claimRecord("rev-cred", "rev-claim", "victim")); err != nil {
		t.Fatal(err)
	}
	for _, boostID := range []string{"rev-target", "rev-other"} {
		if err := testDB.UpsertRole(ctx, editorRole(boostID, "victim", "*")); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := testDB.RevokeRecipient(ctx, "rev-claim", "victim", []string{"rev-target"})
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Error("expected something to be removed")
	}

	if _, err := testDB.GetCredential(ctx, "rev-cred"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("credential after revoke = %v, want ErrNotFound", err)
	}
	if _, err := testDB.GetRole(ctx, "rev-target", "victim"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("target role after revoke = %v, want ErrNotFound", err)
	}
	// Roles on boosts outside the hook targets stay.
	if _, err := testDB.GetRole(ctx, "rev-other", "victim"); err != nil {
		t.Errorf("unrelated role after revoke = %v", err)
	}

	removed, err = testDB.RevokeRecipient(ctx, "rev-claim", "victim", nil)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("second revoke should remove nothing")
	}
}

func TestBoostsForProfile(t *testing.T) {
	mkProfile(t, "lister")
	mkProfile(t, "grantee")
	var last domain.Boost
	for _, id := range []string{"l-1", "l-2", "l-3"} {
		last = mkBoost(t, id, "lister")
	}
	if err := testDB.UpsertRole(ctx, editorRole("l-1", "grantee", "")); err != nil {
		t.Fatal(err)
	}

	boosts, err := testDB.BoostsForProfile(ctx, "lister", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(boosts) != 3 || boosts[0].ID != "l-3" {
		t.Errorf("BoostsForProfile(lister) = %v", boostIDs(boosts))
	}

	// The cursor excludes its own entry and everything newer.
	boosts, err = testDB.BoostsForProfile(ctx, "lister", last.Created, last.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(boosts) != 2 {
		t.Errorf("cursored list = %v", boostIDs(boosts))
	}

	boosts, err = testDB.BoostsForProfile(ctx, "grantee", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(boosts) != 1 || boosts[0].ID != "l-1" {
		t.Errorf("BoostsForProfile(grantee) = %v", boostIDs(boosts))
	}
}

func TestBoostsForProfileSameSecond(t *testing.T) {
	mkProfile(t, "tied")
	when := next()
	for _, id := range []string{"t-1", "t-2", "t-3"} {
		b := domain.Boost{
			ID:         id,
			Status:     domain.StatusLive,
			Name:       id,
			Credential: []byte(`{}`),
			CreatedBy:  "tied",
			Created:    when,
		}
		if err := testDB.CreateBoost(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	// Walking the whole list two ids at a time must visit every boost
	// even though they share a created timestamp.
	first, err := testDB.BoostsForProfile(ctx, "tied", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 || first[0].ID != "t-1" {
		t.Fatalf("tied list = %v", boostIDs(first))
	}
	rest, err := testDB.BoostsForProfile(ctx, "tied", first[1].Created, first[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0].ID != "t-3" {
		t.Errorf("resume inside a tied second = %v", boostIDs(rest))
	}
}

func ptrPermissions(p domain.Permissions) *domain.Permissions { return &p }
