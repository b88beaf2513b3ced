package auth

import (
	"strings"

	"github.com/dkeye/Chat/internal/domain"
)

const (
	ReasonMissingCredential = "missing credential"
	ReasonInvalidCredential = "invalid or expired credential"
)

type State int

const (
	Pending State = iota
	Authenticated
	Rejected
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Handshake is the credential-bearing metadata of a connection attempt.
type Handshake struct {
	Authorization string
	QueryToken    string
	CookieToken   string
}

// Credential picks the bearer token: header, then query, then cookie.
func (h Handshake) Credential() string {
	if t := BearerToken(h.Authorization); t != "" {
		return t
	}
	if t := strings.TrimSpace(h.QueryToken); t != "" {
		return t
	}
	return strings.TrimSpace(h.CookieToken)
}

// BearerToken extracts the token from an "Authorization: Bearer" value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type Verifier interface {
	VerifyAccessToken(token string) (domain.Identity, error)
}

type Result struct {
	State    State
	Identity domain.Identity
	Reason   string
	Err      error
}

// ConnectionAuthenticator gates every realtime connection attempt.
type ConnectionAuthenticator struct {
	tokens Verifier
}

func NewConnectionAuthenticator(tokens Verifier) *ConnectionAuthenticator {
	return &ConnectionAuthenticator{tokens: tokens}
}

func (a *ConnectionAuthenticator) Authenticate(h Handshake) Result {
	cred := h.Credential()
	if cred == "" {
		return Result{State: Rejected, Reason: ReasonMissingCredential, Err: domain.ErrAuthMissing}
	}
	id, err := a.tokens.VerifyAccessToken(cred)
	if err != nil {
		return Result{State: Rejected, Reason: ReasonInvalidCredential, Err: err}
	}
	return Result{State: Authenticated, Identity: id}
}
