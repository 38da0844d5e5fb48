package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ancorit/notesauth"
)

// Kinds accepted by [New].
const (
	KindToken = "token"
	KindMock  = "mock"
)

// Provider resolves the user behind a bearer credential. It reports false
// when the credential does not identify a user; callers treat that as
// unauthenticated.
type Provider interface {
	Authenticate(ctx context.Context, token string) (notesauth.User, bool)
}

// Resolver is the part of [notesauth.Engine] the token provider needs.
type Resolver interface {
	ResolveCurrentUser(ctx context.Context, accessToken string) (notesauth.User, bool)
}

// Token authenticates access tokens through a [Resolver].
type Token struct {
	resolver Resolver
}

// NewToken returns a Token provider over r.
func NewToken(r Resolver) *Token {
	return &Token{resolver: r}
}

func (p *Token) Authenticate(ctx context.Context, token string) (notesauth.User, bool) {
	if p == nil || p.resolver == nil || token == "" {
		return notesauth.User{}, false
	}
	return p.resolver.ResolveCurrentUser(ctx, token)
}

// MockUser is the identity every request receives under [Mock].
var MockUser = notesauth.User{
	ID:    "mock-user-1",
	Email: "test@example.com",
	Name:  "Test User",
}

// Mock accepts any credential and returns [MockUser]. It disables
// authentication and exists for local development and tests only.
type Mock struct{}

// NewMock returns a Mock provider and logs a warning through logger.
func NewMock(logger *slog.Logger) Mock {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("mock auth provider enabled; every request is authenticated as the mock user",
		slog.String("user_id", MockUser.ID))
	return Mock{}
}

func (Mock) Authenticate(context.Context, string) (notesauth.User, bool) {
	return MockUser, true
}

// New selects a provider by kind. The resolver is ignored for [KindMock].
func New(kind string, resolver Resolver, logger *slog.Logger) (Provider, error) {
	switch kind {
	case KindToken, "":
		if resolver == nil {
			return nil, fmt.Errorf("provider %q requires a resolver", KindToken)
		}
		return NewToken(resolver), nil
	case KindMock:
		return NewMock(logger), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", kind)
	}
}
