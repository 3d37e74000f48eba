package identity

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"verifyapi/internal/config"
)

var (
	// ErrNoToken is returned when a request carries no bearer token.
	ErrNoToken = errors.New("missing bearer token")
	// ErrNoKey is returned by NewVerifier when no key is configured and
	// unverified tokens were not explicitly allowed.
	ErrNoKey = errors.New("no token key configured: set AUTH_PUBLIC_KEY_PATH or AUTH_HMAC_SECRET")
)

// Verifier turns bearer tokens into actors.
//
// Verification mode follows the configuration:
//   - PublicKeyPath set: RS256 signatures are verified
//   - HMACSecret set: HS256 signatures are verified
//   - InsecureSkipVerify: tokens are parsed without verification (trusted proxy mode)
type Verifier struct {
	rsaKey     *rsa.PublicKey
	hmacSecret []byte
	opts       []jwt.ParserOption
	rolesClaim string
	userClaim  string
}

// NewVerifier loads the key material named by cfg.
func NewVerifier(cfg config.AuthConfig, logger *zap.Logger) (*Verifier, error) {
	v := &Verifier{
		rolesClaim: cfg.RolesClaim,
		userClaim:  cfg.UserClaim,
	}
	if v.rolesClaim == "" {
		v.rolesClaim = "roles"
	}
	if v.userClaim == "" {
		v.userClaim = "sub"
	}
	if cfg.Issuer != "" {
		v.opts = append(v.opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		v.opts = append(v.opts, jwt.WithAudience(cfg.Audience))
	}

	switch {
	case cfg.PublicKeyPath != "":
		key, err := loadRSAPublicKey(cfg.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		v.rsaKey = key
		v.opts = append(v.opts, jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}))
		logger.Info("bearer tokens verified with RSA key", zap.String("key_path", cfg.PublicKeyPath))
	case cfg.HMACSecret != "":
		v.hmacSecret = []byte(cfg.HMACSecret)
		v.opts = append(v.opts, jwt.WithValidMethods([]string{"HS256"}))
		logger.Info("bearer tokens verified with shared secret")
	case cfg.InsecureSkipVerify:
		logger.Warn("AUTH_INSECURE_SKIP_VERIFY is set, bearer tokens are parsed without verification")
	default:
		return nil, ErrNoKey
	}
	return v, nil
}

func loadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("decode PEM block from %s", path)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not RSA (got %T)", parsed)
	}
	return key, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Verify parses raw and returns the actor it names.
func (v *Verifier) Verify(raw string) (Actor, error) {
	if raw == "" {
		return Actor{}, ErrNoToken
	}

	var (
		token *jwt.Token
		err   error
	)
	switch {
	case v.rsaKey != nil:
		token, err = jwt.Parse(raw, func(*jwt.Token) (any, error) { return v.rsaKey, nil }, v.opts...)
	case v.hmacSecret != nil:
		token, err = jwt.Parse(raw, func(*jwt.Token) (any, error) { return v.hmacSecret, nil }, v.opts...)
	default:
		token, _, err = jwt.NewParser(v.opts...).ParseUnverified(raw, jwt.MapClaims{})
	}
	if err != nil {
		return Actor{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, errors.New("unexpected claims type")
	}
	userID, _ := lookupClaim(claims, v.userClaim).(string)
	if userID == "" {
		return Actor{}, fmt.Errorf("token has no %q claim", v.userClaim)
	}
	return NewActor(userID, rolesFrom(lookupClaim(claims, v.rolesClaim))...), nil
}

// lookupClaim follows a dot-separated path such as "realm_access.roles".
func lookupClaim(claims jwt.MapClaims, path string) any {
	var current any = map[string]any(claims)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = m[part]; !ok {
			return nil
		}
	}
	return current
}

// rolesFrom accepts a single role string, a space or comma separated list,
// or a JSON array of strings.
func rolesFrom(v any) []string {
	switch val := v.(type) {
	case string:
		return strings.FieldsFunc(val, func(r rune) bool { return r == ',' || r == ' ' })
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
