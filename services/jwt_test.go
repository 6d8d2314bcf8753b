package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	pair, err := svc.GenerateTokenPair("user-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := svc.VerifyJWTToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	other, err := svc.ToJWT("user-1")
	require.NoError(t, err)
	otherClaims, err := svc.VerifyJWTToken(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestJWTService_RejectsBadTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := NewJWTService("other-secret", time.Hour).ToJWT("user-1")
	require.NoError(t, err)
	_, err = svc.VerifyJWTToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyJWTToken("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "token-1",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.VerifyJWTToken(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTService_Expiry(t *testing.T) {
	issued := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc := NewJWTService("test-secret", time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.ToJWT("user-1")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = svc.VerifyJWTToken(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = svc.VerifyJWTToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_ExtractTokenFromHeader(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "missing", header: "", wantErr: ErrMissingAuthHeader},
		{name: "wrong scheme", header: "Basic abc", wantErr: ErrInvalidAuthHeader},
		{name: "bare scheme", header: "Bearer", wantErr: ErrInvalidAuthHeader},
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ExtractTokenFromHeader(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
