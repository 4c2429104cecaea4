package domain

// Credentials are the bearer tokens minted by the backend. Both tokens are
// opaque to the client; ExpiresIn is recorded but expiry is only ever
// discovered through a 401 response, never by clock comparison.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// StoredSession is the unit the credential store persists: the token pair plus
// the identity it was minted for. The pair is always read and written whole so
// no consumer can observe a half-written record.
type StoredSession struct {
	Credentials Credentials `json:"credentials"`
	Identity    *Identity   `json:"identity,omitempty"`
}

// Authenticated reports whether the record represents a usable session.
// A cached identity without an access token does not count: absence of a
// token always wins.
func (s StoredSession) Authenticated() bool {
	return s.Identity != nil && s.Credentials.AccessToken != ""
}
