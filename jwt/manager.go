package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod names the algorithm family a Manager signs and verifies with.
type SigningMethod string

const (
	// MethodHS256 signs with HMAC-SHA256 over a shared secret.
	MethodHS256 SigningMethod = "hs256"
	// MethodHS384 signs with HMAC-SHA384 over a shared secret.
	MethodHS384 SigningMethod = "hs384"
	// MethodHS512 signs with HMAC-SHA512 over a shared secret.
	MethodHS512 SigningMethod = "hs512"
	// MethodEd25519 signs with an Ed25519 key pair (EdDSA).
	MethodEd25519 SigningMethod = "ed25519"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	// TypeAccess marks a short-lived token that authorizes requests.
	TypeAccess TokenType = "access"
	// TypeRefresh marks a long-lived token that can only mint new pairs.
	TypeRefresh TokenType = "refresh"
)

var (
	// ErrMissingSubject is returned when a token is issued without a user id.
	ErrMissingSubject = errors.New("token subject required")
	// ErrFutureIssuedAt is returned when iat lies beyond MaxFutureIAT.
	ErrFutureIssuedAt = errors.New("token iat too far in the future")
)

// Config configures a Manager.
//
// For HMAC methods Secret is the shared key. For Ed25519, PrivateKey is
// required to issue and PublicKey (or VerifyKeys) to verify; both accept raw
// key bytes or PEM.
type Config struct {
	SigningMethod SigningMethod
	Secret        []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	MaxFutureIAT  time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte
}

// Claims is the payload carried by every token the Manager issues.
// Email is only present on access tokens.
type Claims struct {
	Email string    `json:"email,omitempty"`
	Type  TokenType `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Manager issues and verifies signed tokens with a single configured
// algorithm and key set. It is safe for concurrent use.
type Manager struct {
	config Config
	keys   keyset
	now    func() time.Time
}

// keyset holds keys decoded once at construction. sign is nil when the
// Manager can only verify.
type keyset struct {
	method jwt.SigningMethod
	sign   any
	verify any
	byKID  map[string]any
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("leeway must be between 0 and 2m")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("MaxFutureIAT must be between 0 and 24h")
	}
	cfg.SigningMethod = SigningMethod(strings.ToLower(strings.TrimSpace(string(cfg.SigningMethod))))
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)

	keys, err := loadKeys(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.KeyID != "" && keys.byKID != nil {
		if _, ok := keys.byKID[cfg.KeyID]; !ok {
			return nil, fmt.Errorf("KeyID %q is not in VerifyKeys", cfg.KeyID)
		}
	}

	return &Manager{config: cfg, keys: keys, now: time.Now}, nil
}

func loadKeys(cfg Config) (keyset, error) {
	var (
		ks     keyset
		decode func([]byte) (any, error)
	)

	switch cfg.SigningMethod {
	case MethodHS256, MethodHS384, MethodHS512:
		ks.method = hmacMethods[cfg.SigningMethod]
		if len(cfg.Secret) == 0 {
			return ks, fmt.Errorf("%s requires a secret", cfg.SigningMethod)
		}
		ks.sign, ks.verify = cfg.Secret, cfg.Secret
		decode = func(b []byte) (any, error) {
			if len(b) == 0 {
				return nil, errors.New("empty secret")
			}
			return b, nil
		}

	case MethodEd25519:
		ks.method = jwt.SigningMethodEdDSA
		if len(cfg.PublicKey) == 0 && len(cfg.VerifyKeys) == 0 {
			return ks, errors.New("ed25519 requires PublicKey or VerifyKeys")
		}
		if len(cfg.PrivateKey) > 0 {
			priv, err := parseEdPrivateKey(cfg.PrivateKey)
			if err != nil {
				return ks, err
			}
			ks.sign = priv
		}
		if len(cfg.PublicKey) > 0 {
			pub, err := parseEdPublicKey(cfg.PublicKey)
			if err != nil {
				return ks, err
			}
			ks.verify = pub
		}
		decode = func(b []byte) (any, error) { return parseEdPublicKey(b) }

	default:
		return ks, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}

	if len(cfg.VerifyKeys) > 0 {
		ks.byKID = make(map[string]any, len(cfg.VerifyKeys))
		for kid, raw := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return ks, errors.New("VerifyKeys contains an empty kid")
			}
			key, err := decode(raw)
			if err != nil {
				return ks, fmt.Errorf("verify key %q: %w", kid, err)
			}
			ks.byKID[kid] = key
		}
	}
	return ks, nil
}

var hmacMethods = map[SigningMethod]jwt.SigningMethod{
	MethodHS256: jwt.SigningMethodHS256,
	MethodHS384: jwt.SigningMethodHS384,
	MethodHS512: jwt.SigningMethodHS512,
}

// Method returns the configured signing method.
func (j *Manager) Method() SigningMethod {
	return j.config.SigningMethod
}

// IssueAccess signs an access token for userID carrying email, valid for ttl.
func (j *Manager) IssueAccess(userID, email string, ttl time.Duration) (string, error) {
	return j.issue(userID, email, TypeAccess, ttl)
}

// IssueRefresh signs a refresh token for userID valid for ttl. Refresh
// tokens never carry the email claim.
func (j *Manager) IssueRefresh(userID string, ttl time.Duration) (string, error) {
	return j.issue(userID, "", TypeRefresh, ttl)
}

// Every token gets a random jti, so two tokens issued within the same second
// still differ.
func (j *Manager) issue(userID, email string, typ TokenType, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}
	if ttl <= 0 {
		return "", errors.New("token TTL must be positive")
	}
	if j.keys.sign == nil {
		return "", errors.New("no signing key configured")
	}

	now := j.now()
	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
			ID:        uuid.NewString(),
		},
	}
	if j.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.config.Audience}
	}

	token := jwt.NewWithClaims(j.keys.method, claims)
	if j.config.KeyID != "" {
		token.Header["kid"] = j.config.KeyID
	}
	return token.SignedString(j.keys.sign)
}

// Parse verifies signature, algorithm, expiry, and configured issuer and
// audience, returning the claims or the reason verification failed.
func (j *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.keys.method.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(j.config.Leeway))
	}
	if j.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(j.config.Issuer))
	}
	if j.config.Audience != "" {
		options = append(options, jwt.WithAudience(j.config.Audience))
	}

	claims, err := j.parse(tokenStr, options)
	if err != nil {
		return nil, err
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Time.After(j.now().Add(j.config.MaxFutureIAT)) {
		return nil, ErrFutureIssuedAt
	}
	return claims, nil
}

// Verify reports whether tokenStr is a well-formed token signed by this
// Manager that has not expired. It never returns partial claims.
func (j *Manager) Verify(tokenStr string) (*Claims, bool) {
	if j == nil || tokenStr == "" {
		return nil, false
	}
	claims, err := j.Parse(tokenStr)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// DecodeUnverified checks the signature and algorithm but skips every
// time-based claim, so expired tokens still decode. It must not be used to
// authorize requests.
func (j *Manager) DecodeUnverified(tokenStr string) (*Claims, bool) {
	if j == nil || tokenStr == "" {
		return nil, false
	}
	claims, err := j.parse(tokenStr, []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.keys.method.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	})
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (j *Manager) parse(tokenStr string, options []jwt.ParserOption) (*Claims, error) {
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &Claims{}, j.verificationKey)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// verificationKey picks the key for t. With VerifyKeys the kid header
// selects it; with only KeyID the header must match; otherwise the single
// configured key is used.
func (j *Manager) verificationKey(t *jwt.Token) (any, error) {
	if t.Method.Alg() != j.keys.method.Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm %s", t.Method.Alg())
	}

	kid, _ := t.Header["kid"].(string)
	switch {
	case j.keys.byKID != nil:
		key, ok := j.keys.byKID[kid]
		if !ok {
			return nil, fmt.Errorf("unknown kid %q", kid)
		}
		return key, nil
	case j.config.KeyID != "" && kid != j.config.KeyID:
		return nil, fmt.Errorf("unknown kid %q", kid)
	case j.keys.verify == nil:
		return nil, errors.New("no verification key configured")
	default:
		return j.keys.verify, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, fmt.Errorf("ed25519 private key: %w", err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ed25519 private key: unexpected type %T", parsed)
	}
	return priv, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, fmt.Errorf("ed25519 public key: %w", err)
	}
	pub, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ed25519 public key: unexpected type %T", parsed)
	}
	return pub, nil
}
