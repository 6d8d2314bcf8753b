package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/model"
	"github.com/brushy-app/brushy_api/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "user-1"

type fakeAuthService struct {
	signupReq   dto.SignupRequest
	signupErr   error
	signoutID   string
	signoutExp  time.Time
	signinCalls int
}

func (f *fakeAuthService) Signup(_ context.Context, req dto.SignupRequest) (*dto.UserProfileResponse, error) {
	f.signupReq = req
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &dto.UserProfileResponse{ID: testUserID, Email: req.Email}, nil
}

func (f *fakeAuthService) Signin(_ context.Context, req dto.SigninRequest) (*dto.SigninResponse, error) {
	f.signinCalls++
	return &dto.SigninResponse{Token: dto.TokenPair{AccessToken: "token", TokenType: "Bearer"}}, nil
}

func (f *fakeAuthService) Authenticated(_ context.Context, userID string) (*dto.AuthenticatedResponse, error) {
	return &dto.AuthenticatedResponse{User: dto.UserProfileResponse{ID: userID}}, nil
}

func (f *fakeAuthService) Signout(_ context.Context, tokenID string, expiresAt time.Time) error {
	f.signoutID = tokenID
	f.signoutExp = expiresAt
	return nil
}

type fakeProgressService struct {
	ProgressServiceInterface

	addedTime *int
	query     dto.ActivityRangeQuery
	sessions  int
}

func (f *fakeProgressService) RecordBrush(_ context.Context, userID string, addedTime *int) (*dto.SessionResponse, error) {
	f.addedTime = addedTime
	f.sessions++
	if f.sessions > 1 {
		return nil, shared.NewConflictError(nil, "Session already recorded")
	}
	return &dto.SessionResponse{
		Session:       model.ActivityMorning,
		StreakUpdated: true,
		DayCounted:    true,
		Progress:      dto.ProgressResponse{UserID: userID, CurrentStreak: 1},
	}, nil
}

func (f *fakeProgressService) SetParentPin(_ context.Context, userID, pin string) (*dto.ProgressResponse, error) {
	return &dto.ProgressResponse{UserID: userID, IsPinSet: true}, nil
}

func (f *fakeProgressService) GetActivitySummary(_ context.Context, userID string, query dto.ActivityRangeQuery) (*dto.ActivitySummaryResponse, error) {
	f.query = query
	return &dto.ActivitySummaryResponse{Days: []dto.DaySummaryResponse{}}, nil
}

type fakeUserService struct {
	UserServiceInterface

	limit      int
	callerID   string
	uploadName string
}

func (f *fakeUserService) GetLeaderboard(_ context.Context, limit int, currentUserID string) (*dto.LeaderboardResponse, error) {
	f.limit = limit
	f.callerID = currentUserID
	return &dto.LeaderboardResponse{TopUsers: []dto.LeaderboardUserResponse{}}, nil
}

func (f *fakeUserService) UploadThumbnail(_ context.Context, userID string, file *multipart.FileHeader) (*dto.ThumbnailResponse, error) {
	f.uploadName = file.Filename
	return &dto.ThumbnailResponse{Profile: dto.UserProfileResponse{ID: userID}}, nil
}

func (f *fakeUserService) DeleteAccount(_ context.Context, userID string) error {
	if userID != testUserID {
		return shared.NewNotFoundError(nil, "Resource not found")
	}
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}
	return shared.ResponseInternalError(c)
}

// withUser stands in for the auth middleware.
func withUser(c *fiber.Ctx) error {
	c.Locals(shared.UserID, testUserID)
	c.Locals(shared.TokenID, "token-1")
	c.Locals(shared.TokenExpiresAt, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))
	return c.Next()
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: errorHandler})
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestSignup_ValidationErrors(t *testing.T) {
	authSvc := &fakeAuthService{}
	h := NewAuthHandler(authSvc)
	app := newTestApp()
	app.Post("/signup", h.Signup)

	status, payload := doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"first_name": "Mia",
		"last_name":  "Nguyen",
		"email":      "not-an-email",
		"password":   "weak",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", payload["message"])
	errs, ok := payload["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 2)
	assert.Empty(t, authSvc.signupReq.Email)
}

func TestSignup_Success(t *testing.T) {
	authSvc := &fakeAuthService{}
	h := NewAuthHandler(authSvc)
	app := newTestApp()
	app.Post("/signup", h.Signup)

	status, payload := doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"first_name": "Mia",
		"last_name":  "Nguyen",
		"email":      "parent@example.com",
		"password":   "SecurePass123!",
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "parent@example.com", authSvc.signupReq.Email)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, testUserID, data["id"])
}

func TestSignup_Conflict(t *testing.T) {
	authSvc := &fakeAuthService{signupErr: shared.NewConflictError(errors.New("duplicate"), "A user with that email already exists")}
	h := NewAuthHandler(authSvc)
	app := newTestApp()
	app.Post("/signup", h.Signup)

	status, payload := doJSON(t, app, http.MethodPost, "/signup", map[string]string{
		"first_name": "Mia",
		"last_name":  "Nguyen",
		"email":      "parent@example.com",
		"password":   "SecurePass123!",
	})

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "A user with that email already exists", payload["message"])
}

func TestSignin_MalformedBody(t *testing.T) {
	authSvc := &fakeAuthService{}
	h := NewAuthHandler(authSvc)
	app := newTestApp()
	app.Post("/signin", h.Signin)

	req := httptest.NewRequest(http.MethodPost, "/signin", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, authSvc.signinCalls)
}

func TestSignout_UsesTokenLocals(t *testing.T) {
	authSvc := &fakeAuthService{}
	h := NewAuthHandler(authSvc)
	app := newTestApp()
	app.Post("/signout", withUser, h.Signout)

	status, _ := doJSON(t, app, http.MethodPost, "/signout", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "token-1", authSvc.signoutID)
	assert.Equal(t, 2030, authSvc.signoutExp.Year())
}

func TestRecordBrush_EmptyBodyAndConflict(t *testing.T) {
	progressSvc := &fakeProgressService{}
	h := NewProgressHandler(progressSvc)
	app := newTestApp()
	app.Post("/brush", withUser, h.RecordBrush)

	status, payload := doJSON(t, app, http.MethodPost, "/brush", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, progressSvc.addedTime)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "morning", data["session"])
	assert.Equal(t, true, data["day_counted"])

	status, _ = doJSON(t, app, http.MethodPost, "/brush", map[string]int{"added_time": 120})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, progressSvc.addedTime)
	assert.Equal(t, 120, *progressSvc.addedTime)
}

func TestRecordBrush_NegativeTimeRejected(t *testing.T) {
	progressSvc := &fakeProgressService{}
	h := NewProgressHandler(progressSvc)
	app := newTestApp()
	app.Post("/brush", withUser, h.RecordBrush)

	status, _ := doJSON(t, app, http.MethodPost, "/brush", map[string]int{"added_time": -5})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Zero(t, progressSvc.sessions)
}

func TestRecordBrush_ExcessiveTimeRejected(t *testing.T) {
	progressSvc := &fakeProgressService{}
	h := NewProgressHandler(progressSvc)
	app := newTestApp()
	app.Post("/brush", withUser, h.RecordBrush)

	status, _ := doJSON(t, app, http.MethodPost, "/brush", map[string]int{"added_time": 3601})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Zero(t, progressSvc.sessions)
}

func TestSetParentPin_RequiresSixDigits(t *testing.T) {
	h := NewProgressHandler(&fakeProgressService{})
	app := newTestApp()
	app.Post("/pin", withUser, h.SetParentPin)

	status, _ := doJSON(t, app, http.MethodPost, "/pin", map[string]string{"pin": "12ab"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, payload := doJSON(t, app, http.MethodPost, "/pin", map[string]string{"pin": "123456"})
	assert.Equal(t, http.StatusOK, status)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_pin_set"])
}

func TestGetActivitySummary_QueryParsing(t *testing.T) {
	progressSvc := &fakeProgressService{}
	h := NewProgressHandler(progressSvc)
	app := newTestApp()
	app.Get("/activities", withUser, h.GetActivitySummary)

	status, _ := doJSON(t, app, http.MethodGet, "/activities?from=2024-03-01&to=2024-03-31", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2024-03-01", progressSvc.query.From)
	assert.Equal(t, "2024-03-31", progressSvc.query.To)

	status, _ = doJSON(t, app, http.MethodGet, "/activities?from=03/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetLeaderboard_LimitAndCaller(t *testing.T) {
	userSvc := &fakeUserService{}
	h := NewLeaderboardHandler(userSvc)

	cases := []struct {
		name   string
		query  string
		auth   bool
		limit  int
		caller string
	}{
		{name: "default", query: "", limit: defaultLeaderboardLimit},
		{name: "custom", query: "?limit=10", limit: 10},
		{name: "too large", query: "?limit=500", limit: defaultLeaderboardLimit},
		{name: "not a number", query: "?limit=abc", limit: defaultLeaderboardLimit},
		{name: "signed in", query: "?limit=5", auth: true, limit: 5, caller: testUserID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			if tc.auth {
				app.Get("/leaderboard", withUser, h.GetLeaderboard)
			} else {
				app.Get("/leaderboard", h.GetLeaderboard)
			}

			status, _ := doJSON(t, app, http.MethodGet, "/leaderboard"+tc.query, nil)

			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tc.limit, userSvc.limit)
			assert.Equal(t, tc.caller, userSvc.callerID)
		})
	}
}

func TestUploadThumbnail(t *testing.T) {
	userSvc := &fakeUserService{}
	h := NewUserHandler(userSvc)
	app := newTestApp()
	app.Post("/thumbnail", withUser, h.UploadThumbnail)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/thumbnail", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "avatar.png", userSvc.uploadName)
}

func TestUploadThumbnail_MissingFile(t *testing.T) {
	h := NewUserHandler(&fakeUserService{})
	app := newTestApp()
	app.Post("/thumbnail", withUser, h.UploadThumbnail)

	status, payload := doJSON(t, app, http.MethodPost, "/thumbnail", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No thumbnail file provided", payload["message"])
}

func TestDeleteAccount(t *testing.T) {
	h := NewUserHandler(&fakeUserService{})
	app := newTestApp()
	app.Delete("/user", withUser, h.DeleteAccount)

	status, payload := doJSON(t, app, http.MethodDelete, "/user", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Account deleted", payload["message"])
}
