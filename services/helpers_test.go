package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/brushy-app/brushy_api/dto"
	"github.com/brushy-app/brushy_api/streak"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	PasswordHashCost = bcrypt.MinCost
	streak.PinHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// newTestDatabase opens a private in-memory database with the full schema.
func newTestDatabase(t *testing.T) *SqliteService {
	t.Helper()

	db := NewSqliteService(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()))
	require.NoError(t, db.Start())
	t.Cleanup(db.Shutdown)

	return db
}

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
	ttls  map[string]time.Duration
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = raw
	f.ttls[key] = expiration
	f.sets++
	return nil
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	raw, ok := f.items[key]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.items, key)
		delete(f.ttls, key)
	}
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[key]
	return ok, nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectStore) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = data
	f.types[objectName] = contentType
	return nil
}

func (f *fakeObjectStore) GetFileURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "https://media.test/" + objectName, nil
}

func (f *fakeObjectStore) DeleteFile(_ context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectName)
	f.deleted = append(f.deleted, objectName)
	return nil
}

type fakeMailer struct {
	welcome    chan string
	pinChanged chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{welcome: make(chan string, 8), pinChanged: make(chan string, 8)}
}

func (f *fakeMailer) SendWelcomeEmail(email, _ string) error {
	f.welcome <- email
	return nil
}

func (f *fakeMailer) SendPinChangedEmail(email, _ string) error {
	f.pinChanged <- email
	return nil
}

// signupUser creates an account through the auth service and returns its id.
func signupUser(t *testing.T, db Database, email string) string {
	t.Helper()

	auth := NewAuthService(db, NewJWTService("test-secret", time.Hour), nil)
	profile, err := auth.Signup(context.Background(), dto.SignupRequest{
		FirstName: "Mia",
		LastName:  "Nguyen",
		Email:     email,
		Password:  "SecurePass123!",
	})
	require.NoError(t, err)

	return profile.ID
}
