package services

import (
	"context"

	"github.com/dmitrijs2005/mymind/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/cryptox"
)

// PasswordChallenge re-asks the password and checks it against the verifier
// cached at login.
type PasswordChallenge struct {
	meta   metadata.Repository
	owners OwnerSource
	read   func() ([]byte, error)
}

func NewPasswordChallenge(meta metadata.Repository, owners OwnerSource, read func() ([]byte, error)) *PasswordChallenge {
	return &PasswordChallenge{meta: meta, owners: owners, read: read}
}

func (c *PasswordChallenge) Attempt(ctx context.Context) ChallengeOutcome {
	creds, err := c.meta.LoadCredentials(ctx)
	if err != nil {
		return ChallengeUnavailable
	}
	if owner := c.owners.Owner(); owner != "" && owner != creds.UserID {
		return ChallengeUnavailable
	}

	password, err := c.read()
	if err != nil {
		return ChallengeUnavailable
	}
	defer common.WipeByteArray(password)

	if cryptox.Matches(creds.Verifier, cryptox.VerifierFor(password, creds.Salt)) {
		return ChallengeSucceeded
	}
	return ChallengeFailed
}
