package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func restoreGlobals() {
	bcryptGenerateFromPassword = defaultGenerate
	bcryptCompareHashAndPassword = defaultCompare
	bcryptCost = DefaultBcryptCost
	timeNow = time.Now
	parseWithClaims = jwt.ParseWithClaims
	newTokenID = uuid.NewString
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	require.Error(t, err)
	_, err = NewTokenService("s", 0)
	require.Error(t, err)

	svc, err := NewTokenService("s", time.Hour)
	require.NoError(t, err)
	require.Equal(t, time.Hour, svc.TTL())
}

func TestIssueAndVerify(t *testing.T) {
	t.Cleanup(restoreGlobals)
	newTokenID = func() string { return "jti-1" }
	svc, err := NewTokenService("s", time.Minute)
	require.NoError(t, err)

	tok, err := svc.Issue(5)
	require.NoError(t, err)

	claims := &CustomClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return []byte("s"), nil })
	require.NoError(t, err)
	require.Equal(t, 5, claims.UserID)
	require.Equal(t, "5", claims.Subject)
	require.Equal(t, "jti-1", claims.ID)
	require.NotNil(t, claims.ExpiresAt)

	id, err := svc.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, 5, id)
}

func TestVerifyRejects(t *testing.T) {
	t.Cleanup(restoreGlobals)
	svc, _ := NewTokenService("s", time.Minute)

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.Verify("invalid")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, _ := NewTokenService("other", time.Minute)
		tok, err := other.Issue(1)
		require.NoError(t, err)
		_, err = svc.Verify(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		_, err := svc.Verify(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		timeNow = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, err := svc.Issue(1)
		require.NoError(t, err)
		timeNow = time.Now
		_, err = svc.Verify(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{UserID: 1}).SignedString([]byte("s"))
		_, err := svc.Verify(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		claims := CustomClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}}
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
		_, err := svc.Verify(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("invalid token object", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		parseWithClaims = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
			return &jwt.Token{Claims: jwt.MapClaims{}, Valid: false}, nil
		}
		_, err := svc.Verify("whatever")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("parse error", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		parseWithClaims = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
			return nil, errors.New("boom")
		}
		_, err := svc.Verify("whatever")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
