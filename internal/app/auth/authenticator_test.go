package auth

import (
	"testing"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubVerifier map[string]domain.Identity

func (s stubVerifier) VerifyAccessToken(token string) (domain.Identity, error) {
	id, ok := s[token]
	if !ok {
		return domain.Identity{}, domain.ErrAuthInvalid
	}
	return id, nil
}

func TestConnectionAuthenticator(t *testing.T) {
	alice := domain.Identity{UserID: "u1", Username: "alice", Role: domain.RoleMember}
	authn := NewConnectionAuthenticator(stubVerifier{"good": alice})

	cases := []struct {
		name      string
		handshake Handshake
		state     State
		reason    string
	}{
		{"bearer header", Handshake{Authorization: "Bearer good"}, Authenticated, ""},
		{"lowercase scheme", Handshake{Authorization: "bearer good"}, Authenticated, ""},
		{"query", Handshake{QueryToken: "good"}, Authenticated, ""},
		{"cookie", Handshake{CookieToken: "good"}, Authenticated, ""},
		{"header wins over query", Handshake{Authorization: "Bearer bad", QueryToken: "good"}, Rejected, ReasonInvalidCredential},
		{"missing", Handshake{}, Rejected, ReasonMissingCredential},
		{"basic scheme", Handshake{Authorization: "Basic good"}, Rejected, ReasonMissingCredential},
		{"invalid", Handshake{QueryToken: "bad"}, Rejected, ReasonInvalidCredential},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := authn.Authenticate(tc.handshake)
			assert.Equal(t, tc.state, res.State, res.State.String())
			assert.Equal(t, tc.reason, res.Reason)
			if tc.state == Authenticated {
				assert.Equal(t, alice, res.Identity)
				assert.NoError(t, res.Err)
			} else {
				assert.True(t, res.Identity.IsZero())
				assert.Error(t, res.Err)
			}
		})
	}
}
