package config

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenLifetime = time.Hour * 24 * 30

type JWT struct {
	signKey       any
	verifyKey     any
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

func loadPrivateKey() (*rsa.PrivateKey, error) {
	privateKeyStr, ok := os.LookupEnv("JWT_PRIVATE_KEY")
	if ok {
		return jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyStr))
	}
	privateKeyPath, ok := os.LookupEnv("JWT_PRIVATE_KEY_FILE")
	if !ok {
		return nil, fmt.Errorf("no JWT_PRIVATE_KEY or JWT_PRIVATE_KEY_FILE env variable set")
	}
	privateKeyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read JWT private key: %w", err)
	}
	return jwt.ParseRSAPrivateKeyFromPEM(privateKeyBytes)
}

func loadPublicKey() (*rsa.PublicKey, error) {
	publicKeyStr, ok := os.LookupEnv("JWT_PUBLIC_KEY")
	if ok {
		return jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyStr))
	}
	publicKeyPath, ok := os.LookupEnv("JWT_PUBLIC_KEY_FILE")
	if !ok {
		return nil, fmt.Errorf("no JWT_PUBLIC_KEY or JWT_PUBLIC_KEY_FILE env variable set")
	}
	publicKeyBytes, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read JWT public key: %w", err)
	}
	return jwt.ParseRSAPublicKeyFromPEM(publicKeyBytes)
}

func loadLifetime() (time.Duration, error) {
	lifetimeStr, ok := os.LookupEnv("JWT_LIFETIME")
	if !ok {
		return defaultTokenLifetime, nil
	}
	lifetime, err := time.ParseDuration(lifetimeStr)
	if err != nil {
		return 0, fmt.Errorf("invalid JWT_LIFETIME: %w", err)
	}
	if lifetime <= 0 {
		return 0, fmt.Errorf("JWT_LIFETIME must be positive")
	}
	return lifetime, nil
}

// NewJWT signs with HS256 when JWT_SECRET is set and with RS256 otherwise.
func NewJWT() (*JWT, error) {
	lifetime, err := loadLifetime()
	if err != nil {
		return nil, err
	}

	if secret, ok := os.LookupEnv("JWT_SECRET"); ok {
		if secret == "" {
			return nil, fmt.Errorf("JWT_SECRET env variable is empty")
		}
		return NewHMACJWT([]byte(secret), lifetime), nil
	}

	privateKey, err := loadPrivateKey()
	if err != nil {
		return nil, err
	}

	publicKey, err := loadPublicKey()
	if err != nil {
		return nil, err
	}

	j := &JWT{
		signKey:       privateKey,
		verifyKey:     publicKey,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: lifetime,
	}

	return j, nil
}

func NewHMACJWT(secret []byte, lifetime time.Duration) *JWT {
	return &JWT{
		signKey:       secret,
		verifyKey:     secret,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
	}
}

func (j *JWT) Lifetime() time.Duration {
	return j.tokenLifetime
}

func (j *JWT) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.signKey)
}

// SignPlayer stamps the registered claims and signs them.
func (j *JWT) SignPlayer(claims *PlayerClaims, now time.Time) (string, error) {
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.tokenLifetime))
	claims.Subject = claims.Username
	return j.Sign(claims)
}

func (j *JWT) ParseWithClaims(tokenString string, claims jwt.Claims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return j.verifyKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
}
