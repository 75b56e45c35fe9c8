package domain

type HookType string

const (
	HookGrantPermissions HookType = "GRANT_PERMISSIONS"
	HookAddAdmin         HookType = "ADD_ADMIN"
)

// ClaimHook is an automation rule attached to a claim boost. Whenever a
// credential instance of the claim boost is accepted, the hook fires against
// the claiming profile: GRANT_PERMISSIONS merges Grant into the claimer's
// role on the target boost, ADD_ADMIN makes the claimer an admin of it.
type ClaimHook struct {
	ID            string
	Type          HookType
	ClaimBoostID  string
	TargetBoostID string
	Grant         *PermissionsUpdate
	Created       int64
}
