package domain

import "encoding/json"

type BoostStatus string

const (
	StatusDraft BoostStatus = "DRAFT"
	StatusLive  BoostStatus = "LIVE"
)

// Boost is a credential template. Name, Category, Type and the credential
// payload are only mutable while the boost is still a DRAFT; CreatedBy never
// changes after creation.
type Boost struct {
	ID               string
	Status           BoostStatus
	Name             string
	Category         string
	Type             string
	Credential       json.RawMessage
	ClaimPermissions *Permissions
	CreatedBy        string
	Created          int64
}

// Attributes returns the fields a boost query or a permission scope filter
// may match against.
func (b Boost) Attributes() map[string]any {
	return map[string]any{
		"id":       b.ID,
		"name":     b.Name,
		"category": b.Category,
		"type":     b.Type,
		"status":   string(b.Status),
	}
}
