package domain

// InfiniteTTL marks a claim link that never expires.
const InfiniteTTL int64 = -1

// ClaimLink is an ephemeral claim token for a boost, keyed by
// (boost, challenge). RemainingUses is nil for unlimited links; it only
// ever decreases. ExpiresAt is the absolute unix deadline, 0 when the link
// never expires.
type ClaimLink struct {
	BoostID    string
	Challenge  string
	Endpoint   string
	Name       string
	TTLSeconds int64
	ExpiresAt  int64
	Remaining  *int64
	Created    int64
}

// TTLRemaining reports the seconds until expiry, or InfiniteTTL for links
// without a deadline.
func (l ClaimLink) TTLRemaining(now int64) int64 {
	if l.ExpiresAt == 0 {
		return InfiniteTTL
	}
	return l.ExpiresAt - now
}
