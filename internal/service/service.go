package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/opencreds/boostnet/internal/domain"
	"github.com/opencreds/boostnet/internal/match"
)

// The error taxonomy every operation surfaces. Unauthorized means the
// caller lacks identity or permission; Forbidden means the caller is known
// but the current state disallows the action.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrBadRequest         = errors.New("bad request")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// SigningAuthority is the external signer claim links reference. It takes
// an unsigned credential and returns the signed form. Timeouts and retries
// are its own business.
type SigningAuthority interface {
	IssueCredential(ctx context.Context, endpoint string, unsigned json.RawMessage) (json.RawMessage, error)
}

// Notifier delivers fire-and-forget notifications about credential
// activity. Implementations must not block the calling operation on
// delivery.
type Notifier interface {
	CredentialSent(ctx context.Context, to, credentialURI string) error
	CredentialAccepted(ctx context.Context, issuer, credentialURI string) error
}

// Boost is a boost plus the URI it is addressed by.
type Boost struct {
	domain.Boost
	URI string
}

type BoostInput struct {
	Credential       json.RawMessage
	Status           domain.BoostStatus
	Name             string
	Category         string
	Type             string
	ClaimPermissions *domain.Permissions
}

// BoostUpdate is a partial update; nil fields are untouched.
type BoostUpdate struct {
	Name       *string
	Category   *string
	Type       *string
	Credential json.RawMessage
	Status     *domain.BoostStatus
}

type ClaimHook struct {
	ID          string
	Type        domain.HookType
	ClaimURI    string
	TargetURI   string
	Permissions *domain.PermissionsUpdate
	Created     int64
}

type SigningAuthorityRef struct {
	Endpoint string
	Name     string
}

type ClaimLinkOptions struct {
	TTLSeconds *int64
	TotalUses  *int64
}

type ClaimLink struct {
	BoostURI   string
	Challenge  string
	Authority  SigningAuthorityRef
	TTLSeconds int64
	Remaining  *int64
}

type RecipientOptions struct {
	Generations       int64
	IncludeUnaccepted bool
	BoostQuery        match.Query
	ProfileQuery      match.Query
}

type Service interface {
	// CreateProfile registers a new profile; the public key is what
	// request signatures are verified against and cannot change later.
	CreateProfile(ctx context.Context, profile domain.Profile) error
	GetProfile(ctx context.Context, profileID string) (domain.Profile, error)
	RegisterSigningAuthority(ctx context.Context, caller, endpoint, name string) error

	CreateBoost(ctx context.Context, caller string, input BoostInput) (string, error)
	// CreateChildBoost creates the boost and its parent edge in one go;
	// the caller needs a matching create-children grant on the parent.
	CreateChildBoost(ctx context.Context, caller, parentURI string, input BoostInput) (string, error)
	UpdateBoost(ctx context.Context, caller, uri string, updates BoostUpdate) error
	DeleteBoost(ctx context.Context, caller, uri string) error
	GetBoost(ctx context.Context, caller, uri string) (Boost, error)
	GetPaginatedBoosts(ctx context.Context, caller string, query match.Query, limit int, cursor string) ([]Boost, string, error)
	CountBoosts(ctx context.Context, caller string, query match.Query) (int, error)

	MakeBoostParent(ctx context.Context, caller, parentURI, childURI string) error
	RemoveBoostParent(ctx context.Context, caller, parentURI, childURI string) error
	GetBoostChildren(ctx context.Context, caller, uri string, generations int64, query match.Query, limit int, cursor string) ([]Boost, string, error)
	GetBoostParents(ctx context.Context, caller, uri string, generations int64, query match.Query, limit int, cursor string) ([]Boost, string, error)
	CountBoostChildren(ctx context.Context, caller, uri string, generations int64, query match.Query) (int, error)
	CountBoostParents(ctx context.Context, caller, uri string, generations int64, query match.Query) (int, error)

	AddBoostAdmin(ctx context.Context, caller, uri, profileID string) error
	// RemoveBoostAdmin deletes an admin role. The creator can never be
	// removed; a non-creator admin may remove themselves.
	RemoveBoostAdmin(ctx context.Context, caller, uri, profileID string) error
	GetBoostAdmins(ctx context.Context, caller, uri string) ([]domain.Profile, error)

	GetBoostPermissions(ctx context.Context, caller, uri string) (domain.Permissions, error)
	GetOtherBoostPermissions(ctx context.Context, caller, uri, profileID string) (domain.Permissions, error)
	UpdateBoostPermissions(ctx context.Context, caller, uri string, updates domain.PermissionsUpdate) error
	UpdateOtherBoostPermissions(ctx context.Context, caller, uri, profileID string, updates domain.PermissionsUpdate) error

	// SendBoost issues the boost's credential to a recipient profile.
	// Requires canIssue on the boost or a matching issue-children grant on
	// any ancestor.
	SendBoost(ctx context.Context, caller, uri, profileID string, credential json.RawMessage) (string, error)
	// AcceptCredential marks a delivered credential as received and runs
	// the claim hooks of its boost against the caller, atomically.
	AcceptCredential(ctx context.Context, caller, credentialURI string) error
	RevokeBoostRecipient(ctx context.Context, caller, uri, profileID string) (bool, error)

	CreateClaimHook(ctx context.Context, caller string, hook ClaimHook) (string, error)
	GetClaimHooksForBoost(ctx context.Context, caller, uri string) ([]ClaimHook, error)
	// DeleteClaimHook stops future executions. Permissions already granted
	// by past executions stay in place.
	DeleteClaimHook(ctx context.Context, caller, id string) error

	GenerateClaimLink(ctx context.Context, caller, boostURI, challenge string, authority SigningAuthorityRef, options ClaimLinkOptions) (ClaimLink, error)
	// ClaimBoostWithLink issues the boost's credential to the caller via
	// the link's signing authority and accepts it in the same step,
	// consuming one use of the link.
	ClaimBoostWithLink(ctx context.Context, caller, boostURI, challenge string) (string, error)

	GetBoostRecipients(ctx context.Context, caller, uri string, includeUnaccepted bool, query match.Query, limit int, cursor string) ([]domain.BoostRecipient, string, error)
	GetBoostRecipientCount(ctx context.Context, caller, uri string, includeUnaccepted bool) (int, error)
	GetConnectedBoostRecipients(ctx context.Context, caller, uri string, options RecipientOptions) ([]domain.RecipientWithBoosts, error)
	CountBoostRecipientsWithChildren(ctx context.Context, caller, uri string, options RecipientOptions) (int, error)
}
