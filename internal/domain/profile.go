package domain

type Profile struct {
	ProfileID      string
	DID            string
	DisplayName    string
	PublicKeyPem   string
	NotifyEndpoint string
	Created        int64
}

// SigningAuthority is a signing endpoint a profile has registered under a
// name. Claim links reference one of these pairs; the endpoint is what
// actually signs issued credentials.
type SigningAuthority struct {
	ProfileID string
	Endpoint  string
	Name      string
}
