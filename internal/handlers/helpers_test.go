package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/authz"
	"github.com/speeddate-dev/speeddate/internal/handlers"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/realtime"
	"github.com/speeddate-dev/speeddate/internal/router"
	"github.com/speeddate-dev/speeddate/internal/testdb"
)

const (
	testSecret = "handler-test-secret"
	testOrigin = "http://localhost:5173"
)

// fixedNow is the clock every handler test runs at.
var fixedNow = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type published struct {
	kind    string
	eventID uint
	message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []published
}

func (n *recordingNotifier) EventStarting(_ context.Context, eventID uint, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, published{kind: "notify_start", eventID: eventID, message: msg})
	return nil
}

func (n *recordingNotifier) EventUpdated(_ context.Context, eventID uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, published{kind: "notify", eventID: eventID})
	return nil
}

func (n *recordingNotifier) snapshot() []published {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]published(nil), n.calls...)
}

type testEnv struct {
	t         *testing.T
	engine    *gin.Engine
	sessions  *auth.SessionManager
	notifier  *recordingNotifier
	uploadDir string
	hub       *realtime.Hub
}

type envOption func(*handlers.Config)

func withRealtime(hub *realtime.Hub, notifier handlers.EventNotifier) envOption {
	return func(cfg *handlers.Config) {
		cfg.Hub = hub
		cfg.Notifier = notifier
	}
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	testdb.Open(t)

	codec, err := auth.NewCookieCodec(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), codec, 30*time.Minute, auth.CookieOptions{
		Name:     "sid",
		SameSite: http.SameSiteStrictMode,
	})

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		t:         t,
		sessions:  sessions,
		notifier:  &recordingNotifier{},
		uploadDir: t.TempDir(),
	}

	cfg := handlers.Config{
		Sessions:       sessions,
		Secret:         testSecret,
		Enforcer:       enforcer,
		Notifier:       env.notifier,
		AllowedOrigins: []string{testOrigin},
		UploadDir:      env.uploadDir,
		MaxUploadBytes: 1 << 20,
		Now:            func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	env.hub = cfg.Hub

	env.engine = router.New(router.Deps{
		Handler:        handlers.New(cfg),
		Sessions:       sessions,
		AllowedOrigins: []string{testOrigin},
		APIPath:        "/api",
		UploadDir:      env.uploadDir,
	})

	return env
}

// do sends a JSON request. body may be nil.
func (e *testEnv) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// createUser inserts a user with a profile and returns it with a signed-in
// session cookie.
func (e *testEnv) createUser(email, role string) (models.User, *http.Cookie) {
	e.t.Helper()

	salt, err := auth.NewSalt()
	if err != nil {
		e.t.Fatal(err)
	}

	user := models.User{
		Email:    email,
		Salt:     salt,
		Password: auth.HashPassword(testSecret, salt, "password"),
		Role:     role,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		e.t.Fatalf("create user: %v", err)
	}

	profile := models.UserProfile{UserID: user.ID, FullName: email}
	if err := db.DB.Create(&profile).Error; err != nil {
		e.t.Fatalf("create profile: %v", err)
	}
	if err := db.DB.Model(&user).Update("profile_id", profile.ID).Error; err != nil {
		e.t.Fatal(err)
	}

	w := httptest.NewRecorder()
	if _, err := e.sessions.Start(context.Background(), w, user.ID, user.Email, user.Role); err != nil {
		e.t.Fatal(err)
	}

	return user, sessionCookie(e.t, w)
}

func (e *testEnv) createEvent(organizer *http.Cookie, body map[string]any) eventBody {
	e.t.Helper()

	w := e.do(http.MethodPost, "/api/events", body, organizer)
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create event: status = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[eventBody](e.t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response: %v", w.Header())
	return nil
}

type eventBody struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Organizer     uint   `json:"organizer"`
	Participants  []uint `json:"participants"`
	IsEventActive bool   `json:"isEventActive"`
	NextRound     struct {
		RoundNumber   int        `json:"roundNumber"`
		IsRoundActive bool       `json:"isRoundActive"`
		StartTime     *time.Time `json:"startTime"`
		EndTime       *time.Time `json:"endTime"`
	} `json:"nextRound"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, want, w.Body.String())
	}
}

func count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.DB.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}
