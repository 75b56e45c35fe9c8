package domain

import (
	"encoding/json"

	"github.com/opencreds/boostnet/internal/match"
)

// Permissions is the full permission record a profile holds on a boost.
// The boolean fields govern the boost itself; the scope fields govern its
// descendants.
type Permissions struct {
	Role                      string
	CanEdit                   bool
	CanIssue                  bool
	CanRevoke                 bool
	CanManagePermissions      bool
	CanManageChildrenProfiles bool
	CanViewAnalytics          bool

	CanIssueChildren             match.Scope
	CanCreateChildren            match.Scope
	CanEditChildren              match.Scope
	CanRevokeChildren            match.Scope
	CanManageChildrenPermissions match.Scope
}

// Role is a stored permission record. At most one exists per
// (boost, profile) pair; the creator's role is implicit and never stored.
type Role struct {
	BoostID   string
	ProfileID string
	Permissions
}

// PermissionsUpdate is a partial update. Nil fields are left untouched.
// Scope fields arrive in their serialized form and are parsed and validated
// before anything is written.
type PermissionsUpdate struct {
	Role                      *string `json:"role,omitempty"`
	CanEdit                   *bool   `json:"canEdit,omitempty"`
	CanIssue                  *bool   `json:"canIssue,omitempty"`
	CanRevoke                 *bool   `json:"canRevoke,omitempty"`
	CanManagePermissions      *bool   `json:"canManagePermissions,omitempty"`
	CanManageChildrenProfiles *bool   `json:"canManageChildrenProfiles,omitempty"`
	CanViewAnalytics          *bool   `json:"canViewAnalytics,omitempty"`

	CanIssueChildren             *string `json:"canIssueChildren,omitempty"`
	CanCreateChildren            *string `json:"canCreateChildren,omitempty"`
	CanEditChildren              *string `json:"canEditChildren,omitempty"`
	CanRevokeChildren            *string `json:"canRevokeChildren,omitempty"`
	CanManageChildrenPermissions *string `json:"canManageChildrenPermissions,omitempty"`
}

// RoleGrant describes one role write applied during credential acceptance.
// Update is merged into the existing role, or into an empty role when none
// exists yet. IfAbsent is written as-is only when the pair has no role at
// all, which is what makes re-claiming idempotent.
type RoleGrant struct {
	BoostID   string
	ProfileID string
	Update    *PermissionsUpdate
	IfAbsent  *Permissions
}

const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
	RoleEmpty   = "empty"
)

// CreatorPermissions is what the boost creator always resolves to. It is
// never stored and cannot be weakened.
func CreatorPermissions() Permissions {
	return Permissions{
		Role:                         RoleCreator,
		CanEdit:                      true,
		CanIssue:                     true,
		CanRevoke:                    true,
		CanManagePermissions:         true,
		CanManageChildrenProfiles:    true,
		CanViewAnalytics:             true,
		CanIssueChildren:             match.AllScope(),
		CanCreateChildren:            match.AllScope(),
		CanEditChildren:              match.AllScope(),
		CanRevokeChildren:            match.AllScope(),
		CanManageChildrenPermissions: match.AllScope(),
	}
}

func AdminPermissions() Permissions {
	p := CreatorPermissions()
	p.Role = RoleAdmin
	return p
}

func EmptyPermissions() Permissions {
	return Permissions{Role: RoleEmpty}
}

// Apply returns a copy of p with every set field of u written over it.
// Scope fields are parsed from their serialized form; a malformed scope
// aborts the whole merge.
func (p Permissions) Apply(u PermissionsUpdate) (Permissions, error) {
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.CanEdit != nil {
		p.CanEdit = *u.CanEdit
	}
	if u.CanIssue != nil {
		p.CanIssue = *u.CanIssue
	}
	if u.CanRevoke != nil {
		p.CanRevoke = *u.CanRevoke
	}
	if u.CanManagePermissions != nil {
		p.CanManagePermissions = *u.CanManagePermissions
	}
	if u.CanManageChildrenProfiles != nil {
		p.CanManageChildrenProfiles = *u.CanManageChildrenProfiles
	}
	if u.CanViewAnalytics != nil {
		p.CanViewAnalytics = *u.CanViewAnalytics
	}

	for _, scope := range []struct {
		raw  *string
		into *match.Scope
	}{
		{u.CanIssueChildren, &p.CanIssueChildren},
		{u.CanCreateChildren, &p.CanCreateChildren},
		{u.CanEditChildren, &p.CanEditChildren},
		{u.CanRevokeChildren, &p.CanRevokeChildren},
		{u.CanManageChildrenPermissions, &p.CanManageChildrenPermissions},
	} {
		if scope.raw == nil {
			continue
		}
		s, err := match.ParseScope(*scope.raw)
		if err != nil {
			return Permissions{}, err
		}
		*scope.into = s
	}
	return p, nil
}

type permissionsWire struct {
	Role                         string `json:"role"`
	CanEdit                      bool   `json:"canEdit"`
	CanIssue                     bool   `json:"canIssue"`
	CanRevoke                    bool   `json:"canRevoke"`
	CanManagePermissions         bool   `json:"canManagePermissions"`
	CanManageChildrenProfiles    bool   `json:"canManageChildrenProfiles"`
	CanViewAnalytics             bool   `json:"canViewAnalytics"`
	CanIssueChildren             string `json:"canIssueChildren"`
	CanCreateChildren            string `json:"canCreateChildren"`
	CanEditChildren              string `json:"canEditChildren"`
	CanRevokeChildren            string `json:"canRevokeChildren"`
	CanManageChildrenPermissions string `json:"canManageChildrenPermissions"`
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	return json.Marshal(permissionsWire{
		Role:                         p.Role,
		CanEdit:                      p.CanEdit,
		CanIssue:                     p.CanIssue,
		CanRevoke:                    p.CanRevoke,
		CanManagePermissions:         p.CanManagePermissions,
		CanManageChildrenProfiles:    p.CanManageChildrenProfiles,
		CanViewAnalytics:             p.CanViewAnalytics,
		CanIssueChildren:             p.CanIssueChildren.String(),
		CanCreateChildren:            p.CanCreateChildren.String(),
		CanEditChildren:              p.CanEditChildren.String(),
		CanRevokeChildren:            p.CanRevokeChildren.String(),
		CanManageChildrenPermissions: p.CanManageChildrenPermissions.String(),
	})
}

func (p *Permissions) UnmarshalJSON(b []byte) error {
	var w permissionsWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	scopes := make([]match.Scope, 5)
	for i, raw := range []string{
		w.CanIssueChildren,
		w.CanCreateChildren,
		w.CanEditChildren,
		w.CanRevokeChildren,
		w.CanManageChildrenPermissions,
	} {
		s, err := match.ParseScope(raw)
		if err != nil {
			return err
		}
		scopes[i] = s
	}

	*p = Permissions{
		Role:                         w.Role,
		CanEdit:                      w.CanEdit,
		CanIssue:                     w.CanIssue,
		CanRevoke:                    w.CanRevoke,
		CanManagePermissions:         w.CanManagePermissions,
		CanManageChildrenProfiles:    w.CanManageChildrenProfiles,
		CanViewAnalytics:             w.CanViewAnalytics,
		CanIssueChildren:             scopes[0],
		CanCreateChildren:            scopes[1],
		CanEditChildren:              scopes[2],
		CanRevokeChildren:            scopes[3],
		CanManageChildrenPermissions: scopes[4],
	}
	return nil
}
