// Package utils issues the HS256 access tokens that JWTAuth accepts.
// Production tokens come from the building's identity provider; this
// helper signs the same shape for local runs and tests.
package utils

import (
    "errors"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// ErrEmptyHandle is returned when asked to sign a token with no subject.
var ErrEmptyHandle = errors.New("occupant handle is required")

// AccessToken is a signed JWT and its expiry.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// NewAccessToken signs a token whose sub claim is the occupant handle and
// whose role claim is role ("resident" or "committee").
func NewAccessToken(secret, handle, role string, ttl time.Duration) (AccessToken, error) {
    handle = strings.TrimSpace(handle)
    if handle == "" {
        return AccessToken{}, ErrEmptyHandle
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  handle,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
