package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Stamp    string   `json:"stamp,omitempty"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Issue signs a token for p. The subject carries the numeric user id.
func (j *JWTer) Issue(p *Principal) (string, time.Time, error) {
	if p == nil {
		return "", time.Time{}, errors.New("nil principal")
	}
	now := time.Now()
	exp := now.Add(j.TTL)
	claims := Claims{
		Username: p.Username,
		Roles:    p.Authorities,
		Stamp:    p.Stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// PrincipalFromToken parses tokenStr and rebuilds the principal it was issued for.
// The result only reflects the claims; callers check it against the user store.
func (j *JWTer) PrincipalFromToken(tokenStr string) (*Principal, error) {
	c, err := j.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, errors.New("invalid subject")
	}
	return &Principal{ID: id, Username: c.Username, Authorities: c.Roles, Stamp: c.Stamp}, nil
}
