package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const pushTokenType = "push"

// TokenService signs and checks the HS256 bearer tokens that guard the push
// endpoint.
type TokenService struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (t TokenService) Enabled() bool {
	return len(t.Secret) > 0
}

func (t TokenService) CreatePushToken(subject string, now time.Time) (string, int64, error) {
	now = now.UTC()
	claims := jwt.MapClaims{
		"iss": t.Issuer,
		"sub": subject,
		"typ": pushTokenType,
		"iat": now.Unix(),
	}
	var exp int64
	if t.TTL > 0 {
		exp = now.Add(t.TTL).Unix()
		claims["exp"] = exp
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	return signed, exp, err
}

// VerifyPushToken returns the token subject, or an Unauthorized error.
func (t TokenService) VerifyPushToken(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithIssuer(t.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrUnauthorized("Authentication failed")
	}
	if claims["typ"] != pushTokenType {
		return "", ErrUnauthorized("Authentication failed")
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", ErrUnauthorized("Authentication failed")
	}
	return subject, nil
}
