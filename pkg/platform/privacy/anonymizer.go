package privacy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
)

// MinSecretLength is the shortest anonymizer secret accepted at startup.
const MinSecretLength = 32

// ActionToken is the stable, non-reversible identifier stored on likes, comments
// and reports instead of the principal ID.
type ActionToken string

// String returns the hex form of the token.
func (t ActionToken) String() string { return string(t) }

// Anonymizer derives ActionTokens with HMAC-SHA256 keyed by a server secret.
// Without the secret a token cannot be linked back to a principal.
type Anonymizer struct {
	secret []byte
}

// NewAnonymizer validates the secret and returns a ready Anonymizer.
// A missing or short secret is a configuration error and must abort startup.
func NewAnonymizer(secret string) (*Anonymizer, error) {
	if secret == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "anonymizer secret is not set")
	}
	if len(secret) < MinSecretLength {
		return nil, dErrors.New(dErrors.CodeConfiguration, "anonymizer secret is too short")
	}
	return &Anonymizer{secret: []byte(secret)}, nil
}

// Token maps a principal ID to its ActionToken. Same input, same secret, same token.
func (a *Anonymizer) Token(principalID id.PrincipalID) ActionToken {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(principalID.String()))
	return ActionToken(hex.EncodeToString(mac.Sum(nil)))
}
