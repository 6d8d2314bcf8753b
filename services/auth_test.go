package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (*AuthService, *SqliteService, *fakeCache) {
	t.Helper()

	db := newTestDatabase(t)
	cache := newFakeCache()
	return NewAuthService(db, NewJWTService("test-secret", time.Hour), cache), db, cache
}

func signupRequest(email string) dto.SignupRequest {
	return dto.SignupRequest{
		FirstName: " Mia ",
		LastName:  "Nguyen",
		Email:     email,
		Password:  "SecurePass123!",
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Parent@example.com", normalizeEmail("  Parent@EXAMPLE.com "))
	assert.Equal(t, "no-at-sign", normalizeEmail("no-at-sign"))
}

func TestAuthService_SignupCreatesProgress(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuthService(t)
	mailer := newFakeMailer()
	auth.mailer = mailer

	profile, err := auth.Signup(ctx, signupRequest("parent@Example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "Mia", profile.FirstName)
	assert.Equal(t, "parent@example.com", profile.Email)

	select {
	case email := <-mailer.welcome:
		assert.Equal(t, "parent@example.com", email)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not sent")
	}

	me, err := auth.Authenticated(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, me.User.ID)
	assert.Equal(t, profile.ID, me.Progress.UserID)
	assert.Equal(t, 1, me.Progress.CurrentLevel)
	assert.Zero(t, me.Progress.CurrentStreak)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuthService(t)

	_, err := auth.Signup(ctx, signupRequest("parent@example.com"))
	require.NoError(t, err)

	_, err = auth.Signup(ctx, signupRequest("parent@EXAMPLE.COM"))
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	assert.Equal(t, "A user with that email already exists", appErr.Message)

	details, ok := appErr.Data.([]dto.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "email", details[0].Field)
}

func TestAuthService_Signin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuthService(t)

	profile, err := auth.Signup(ctx, signupRequest("parent@example.com"))
	require.NoError(t, err)

	_, err = auth.Signin(ctx, dto.SigninRequest{Email: "parent@example.com", Password: "WrongPass123!"})
	assert.True(t, shared.IsStatus(err, http.StatusUnauthorized))

	_, err = auth.Signin(ctx, dto.SigninRequest{Email: "nobody@example.com", Password: "SecurePass123!"})
	assert.True(t, shared.IsStatus(err, http.StatusUnauthorized))

	resp, err := auth.Signin(ctx, dto.SigninRequest{Email: "parent@EXAMPLE.com", Password: "SecurePass123!"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLogin)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, int64(3600), resp.Token.ExpiresIn)

	claims, err := auth.jwtSvc.VerifyJWTToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.UserID)
}

func newAuthTestApp(auth *AuthService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: (&HttpService{}).HandleError})

	app.Get("/me", auth.RequiredAuth(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(shared.UserID).(string))
	})
	app.Post("/signout", auth.RequiredAuth(), func(c *fiber.Ctx) error {
		return auth.Signout(c.UserContext(), c.Locals(shared.TokenID).(string), c.Locals(shared.TokenExpiresAt).(time.Time))
	})
	app.Get("/maybe", auth.OptionalAuth(), func(c *fiber.Ctx) error {
		userID, _ := c.Locals(shared.UserID).(string)
		return c.SendString("caller=" + userID)
	})

	return app
}

func request(t *testing.T, app *fiber.App, method, path, token string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthService_RequiredAuthAndSignout(t *testing.T) {
	ctx := context.Background()
	auth, _, cache := newTestAuthService(t)
	app := newAuthTestApp(auth)

	profile, err := auth.Signup(ctx, signupRequest("parent@example.com"))
	require.NoError(t, err)
	signin, err := auth.Signin(ctx, dto.SigninRequest{Email: "parent@example.com", Password: "SecurePass123!"})
	require.NoError(t, err)
	token := signin.Token.AccessToken

	status, body := request(t, app, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, ErrMissingAuthHeader.Error())

	status, _ = request(t, app, http.MethodGet, "/me", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = request(t, app, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, profile.ID, body)

	status, _ = request(t, app, http.MethodPost, "/signout", token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, cache.sets)

	status, body = request(t, app, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, ErrTokenInvalid.Error())
}

func TestAuthService_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuthService(t)
	app := newAuthTestApp(auth)

	_, err := auth.Signup(ctx, signupRequest("parent@example.com"))
	require.NoError(t, err)
	signin, err := auth.Signin(ctx, dto.SigninRequest{Email: "parent@example.com", Password: "SecurePass123!"})
	require.NoError(t, err)

	auth.jwtSvc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	status, body := request(t, app, http.MethodGet, "/me", signin.Token.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, ErrTokenExpired.Error())
}

func TestAuthService_DeletedUserRejected(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	app := newAuthTestApp(auth)

	token, err := auth.jwtSvc.ToJWT("ghost")
	require.NoError(t, err)

	status, body := request(t, app, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "User not found")
}

func TestAuthService_OptionalAuth(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newTestAuthService(t)
	app := newAuthTestApp(auth)

	profile, err := auth.Signup(ctx, signupRequest("parent@example.com"))
	require.NoError(t, err)
	token, err := auth.jwtSvc.ToJWT(profile.ID)
	require.NoError(t, err)

	_, body := request(t, app, http.MethodGet, "/maybe", "")
	assert.Equal(t, "caller=", body)

	_, body = request(t, app, http.MethodGet, "/maybe", "garbage")
	assert.Equal(t, "caller=", body)

	_, body = request(t, app, http.MethodGet, "/maybe", token)
	assert.Equal(t, "caller="+profile.ID, body)
}

func TestAuthService_SignoutWithoutCache(t *testing.T) {
	db := newTestDatabase(t)
	auth := NewAuthService(db, NewJWTService("test-secret", time.Hour), nil)

	require.NoError(t, auth.Signout(context.Background(), "token-1", time.Now().Add(time.Hour)))
	assert.False(t, auth.isRevoked(context.Background(), "token-1"))
}
