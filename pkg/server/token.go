package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"bytebeat/pkg/generator"
	"bytebeat/pkg/processor"
)

// Claims carry a compiled patch from /api/compile to /ws. The code is
// recompiled (or fetched from the cache) when the stream opens.
type Claims struct {
	Backend   string  `json:"backend"`
	Code      string  `json:"code"`
	Frequency float64 `json:"frequency"`
	Tempo     float64 `json:"tempo"`
	FloatMode bool    `json:"floatMode"`
	jwt.RegisteredClaims
}

func (c *Claims) backend() (generator.Backend, error) {
	return generator.ParseBackend(c.Backend)
}

func (c *Claims) processorConfig(sampleRate float64) processor.Config {
	return processor.Config{
		Frequency:  c.Frequency,
		SampleRate: sampleRate,
		Tempo:      c.Tempo,
		FloatMode:  c.FloatMode,
	}
}

// signToken issues an HS256 token for claims under a new session id.
func signToken(claims *Claims, secret []byte, ttl time.Duration, now time.Time) (session, signed string, err error) {
	session = ulid.Make().String()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        session,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err = token.SignedString(secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return session, signed, nil
}

func verifyToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
