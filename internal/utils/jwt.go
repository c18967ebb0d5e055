package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"       // uuid supplies the jti claim
)

// ErrInvalidToken is returned when a token is malformed, expired, carries a
// bad signature, or was issued for a different purpose. Callers map it to
// HTTP 401 (auth) or 400 (password reset).
var ErrInvalidToken = errors.New("invalid token")

// AuthClaims is the decoded payload of an auth token: the authenticated
// user's id and role. Tokens are stateless; every request re-verifies them.
type AuthClaims struct {
    UserID uint64
    Role   string
}

// NewAuthToken builds and signs an HS256 JWT for a user. The JWT includes
// standard claims: subject (sub), role, expiration (exp), issued at (iat)
// and a unique token id (jti).
func NewAuthToken(secret string, userID uint64, role string, ttlMin int) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  now.Add(time.Duration(ttlMin) * time.Minute).Unix(),
        "iat":  now.Unix(),
        "jti":  uuid.NewString(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseAuthToken verifies signature and expiry and returns the claims.
func ParseAuthToken(secret, raw string) (AuthClaims, error) {
    claims, err := parse(secret, raw)
    if err != nil {
        return AuthClaims{}, err
    }
    uid, ok := subjectID(claims)
    if !ok {
        return AuthClaims{}, ErrInvalidToken
    }
    role, _ := claims["role"].(string)
    return AuthClaims{UserID: uid, Role: role}, nil
}

// NewResetToken signs a short-lived password-reset token encoding only the
// user id. The purpose claim keeps reset tokens from doubling as auth
// tokens. The token stays valid for its full TTL even after redemption.
func NewResetToken(secret string, userID uint64, ttlMin int) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub":     userID,
        "purpose": "reset",
        "exp":     now.Add(time.Duration(ttlMin) * time.Minute).Unix(),
        "iat":     now.Unix(),
        "jti":     uuid.NewString(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseResetToken verifies a reset token and returns the user id it names.
func ParseResetToken(secret, raw string) (uint64, error) {
    claims, err := parse(secret, raw)
    if err != nil {
        return 0, err
    }
    if purpose, _ := claims["purpose"].(string); purpose != "reset" {
        return 0, ErrInvalidToken
    }
    uid, ok := subjectID(claims)
    if !ok {
        return 0, ErrInvalidToken
    }
    return uid, nil
}

func parse(secret, raw string) (jwt.MapClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with anything other than HMAC.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, ErrInvalidToken
    }
    return claims, nil
}

// subjectID extracts the numeric sub claim. JWT numbers decode as float64.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
    switch v := claims["sub"].(type) {
    case float64:
        return uint64(v), true
    default:
        return 0, false
    }
}
