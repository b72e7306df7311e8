package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA-256 hashing for stored token digests
    "encoding/hex"  // hex encoding
    "errors"        // sentinel errors for token verification
    "time"          // expiry computation

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token kinds carried in the "typ" claim.  Access tokens authorize admin
// requests directly; refresh tokens only mint new access tokens and are
// additionally persisted server-side; session tokens are the storefront's
// single longer-lived credential.
const (
    TokenTypeAccess  = "access"
    TokenTypeRefresh = "refresh"
    TokenTypeSession = "session"
)

// ErrInvalidToken is returned when a token fails signature validation,
// has expired, or carries an unexpected type claim.
var ErrInvalidToken = errors.New("invalid token")

// SignedToken bundles a serialized JWT with its expiry so callers can
// persist or report the expiration without re-parsing the token.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims are the verified contents of a token after parsing.
type Claims struct {
    UserID uint64 // subject
    Email  string // email claim (empty on refresh tokens)
    Role   string // role claim (empty outside access tokens)
    Type   string // typ claim
}

// NewAccessToken builds and signs an HS256 JWT carrying identity and role
// for an admin user.  Access tokens are short-lived and stateless: they
// cannot be revoked before expiry, which is why the auth middleware
// re-checks the account's active flag on every request.
func NewAccessToken(secret string, userID uint64, email, role string, ttlMin int) (SignedToken, error) {
    return sign(secret, jwt.MapClaims{
        "sub":   userID,
        "email": email,
        "role":  role,
        "typ":   TokenTypeAccess,
    }, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs an HS256 JWT carrying only identity.
// The caller must persist HashToken(token) so the refresh token can be
// individually revoked; verification checks both the signature and the
// stored record.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (SignedToken, error) {
    return sign(secret, jwt.MapClaims{
        "sub": userID,
        "typ": TokenTypeRefresh,
    }, time.Duration(ttlDays)*24*time.Hour)
}

// NewSessionToken builds the storefront session credential: one signed token
// per login, no access/refresh split.  Stored hashed like refresh tokens so
// logout can delete it.
func NewSessionToken(secret string, userID uint64, email string, ttlDays int) (SignedToken, error) {
    return sign(secret, jwt.MapClaims{
        "sub":   userID,
        "email": email,
        "typ":   TokenTypeSession,
    }, time.Duration(ttlDays)*24*time.Hour)
}

func sign(secret string, claims jwt.MapClaims, ttl time.Duration) (SignedToken, error) {
    exp := time.Now().UTC().Add(ttl)
    claims["exp"] = exp.Unix()
    claims["iat"] = time.Now().UTC().Unix()
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken validates the signature and expiry of a token and asserts that
// its "typ" claim matches wantType.  It returns ErrInvalidToken on any
// failure so callers do not leak parser internals to clients.
func ParseToken(secret, raw, wantType string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject any signing method other than HMAC.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    typ, _ := mc["typ"].(string)
    if typ != wantType {
        return Claims{}, ErrInvalidToken
    }
    var c Claims
    c.Type = typ
    switch sub := mc["sub"].(type) {
    case float64: // JSON numbers decode as float64
        c.UserID = uint64(sub)
    default:
        return Claims{}, ErrInvalidToken
    }
    c.Email, _ = mc["email"].(string)
    c.Role, _ = mc["role"].(string)
    return c, nil
}

// HashToken returns the SHA-256 hash of a token as a hex string.  Refresh
// and session tokens are stored hashed so database access alone cannot
// hijack a session.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.  Used for API key secrets.
func RandomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
