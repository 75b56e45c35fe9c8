package domain

import "encoding/json"

// CredentialRecord ties a sending profile, a receiving profile and an
// issued credential together. Received stays 0 until the recipient accepts;
// ActivityID correlates the delivery with the later claim event.
type CredentialRecord struct {
	ID         string
	BoostID    string
	From       string
	To         string
	Credential json.RawMessage
	Sent       int64
	Received   int64
	ActivityID string
	Metadata   json.RawMessage
}

func (c CredentialRecord) Accepted() bool { return c.Received != 0 }

// BoostRecipient is one recipient of a boost, with the delivery timestamps
// of the credential that reached them.
type BoostRecipient struct {
	To           Profile
	From         string
	CredentialID string
	Sent         int64
	Received     int64
}

// RecipientWithBoosts is a recipient aggregated across a boost and its
// descendants; BoostIDs lists every contributing boost, each recipient
// appearing once no matter how many paths reached them.
type RecipientWithBoosts struct {
	To       Profile
	BoostIDs []string
}
