package resources_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/whookdev/hki/internal/api"
	"github.com/whookdev/hki/internal/models"
	"github.com/whookdev/hki/internal/navigation"
	"github.com/whookdev/hki/internal/notify"
	"github.com/whookdev/hki/internal/resources"
	"github.com/whookdev/hki/internal/session"
	"github.com/whookdev/hki/internal/urltemplate"
)

var (
	adaID     = uuid.MustParse("0b7f1a9e-3c55-4a8e-9a1c-2f6b1c7d8e90")
	contentID = uuid.MustParse("9a0c7a5e-1111-4d2f-8c3b-5e6f7a8b9c0d")
)

// fakeService is a small in-memory stand-in for the HKI REST service.
type fakeService struct {
	mu       sync.Mutex
	loggedIn bool
	// hideProfiles makes single-user lookups 403, as for non-admins.
	hideProfiles bool
	tags         []models.Tag
	links        []models.ContentTag
	calls        []string
}

func (s *fakeService) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, r.Method+" "+r.URL.RequestURI())
}

func (s *fakeService) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.User{{ID: adaID, Username: "ada"}})
	})
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		_ = json.NewDecoder(r.Body).Decode(&u)
		u.ID = adaID
		writeJSON(w, http.StatusCreated, u)
	})
	mux.HandleFunc("GET /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		hidden := s.hideProfiles
		s.mu.Unlock()
		if hidden {
			writeJSON(w, http.StatusForbidden, map[string]string{"error_type": "Forbidden"})
			return
		}
		writeJSON(w, http.StatusOK, models.User{ID: uuid.MustParse(r.PathValue("id")), Username: "ada", Email: "ada@example.org"})
	})
	mux.HandleFunc("GET /api/users/characters/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Character{ID: uuid.MustParse(r.PathValue("id")), UserID: adaID, Name: "Bob"})
	})
	mux.HandleFunc("PUT /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		_ = json.NewDecoder(r.Body).Decode(&u)
		writeJSON(w, http.StatusOK, u)
	})

	mux.HandleFunc("POST /api/users/{user_id}/uploads", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error_type": "InvalidUpload"})
			return
		}
		userID := uuid.MustParse(r.PathValue("user_id"))
		var out []models.Upload
		for _, fh := range r.MultipartForm.File["files"] {
			out = append(out, models.Upload{ID: uuid.New(), UserID: userID, Filename: fh.Filename})
		}
		writeJSON(w, http.StatusCreated, out)
	})

	mux.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch r.Method {
		case http.MethodPost:
			var creds models.Credentials
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds.Password != "correct horse" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error_type": "InvalidCredentials"})
				return
			}
			s.loggedIn = true
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			if !s.loggedIn {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, http.StatusOK, adaID)
		case http.MethodDelete:
			s.loggedIn = false
			w.WriteHeader(http.StatusOK)
		}
	})

	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.tags)
	})
	mux.HandleFunc("POST /api/tags", func(w http.ResponseWriter, r *http.Request) {
		var tag models.Tag
		_ = json.NewDecoder(r.Body).Decode(&tag)
		tag.ID = uuid.New()
		s.mu.Lock()
		s.tags = append(s.tags, tag)
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, tag)
	})
	mux.HandleFunc("POST /api/content-tags/{id}", func(w http.ResponseWriter, r *http.Request) {
		var link models.ContentTag
		_ = json.NewDecoder(r.Body).Decode(&link)
		s.mu.Lock()
		s.links = append(s.links, link)
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, link)
	})

	mux.HandleFunc("POST /api/resetpassword", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error_type": "UnknownEmail"})
	})
	mux.HandleFunc("POST /api/register/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type fixture struct {
	service  *fakeService
	api      *resources.API
	sessions *session.Memory
	router   *navigation.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	svc := &fakeService{}
	ts := httptest.NewServer(svc.handler())
	t.Cleanup(ts.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewMemory()
	router := navigation.NewRouter(models.Route{Name: "home", Path: "/app/"}, nil, logger)

	client, err := api.New(api.Options{
		BaseURL:    ts.URL,
		HTTPClient: ts.Client(),
		Notifier:   notify.NewLog(logger),
		Sessions:   sessions,
		Router:     router,
	}, logger)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}

	return &fixture{
		service:  svc,
		api:      resources.New(client),
		sessions: sessions,
		router:   router,
	}
}

func TestUsersListAndSave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := f.api.Users.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Username != "ada" {
		t.Fatalf("unexpected users %+v", users)
	}

	created, err := f.api.Users.Save(ctx, &models.User{Username: "ada"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if created == nil || created.ID != adaID {
		t.Fatalf("unexpected created user %+v", created)
	}

	created.Username = "ada.l"
	updated, err := f.api.Users.Save(ctx, created)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if updated == nil || updated.Username != "ada.l" {
		t.Fatalf("unexpected updated user %+v", updated)
	}

	expect := []string{
		"GET /api/users?is_include_skills=true",
		"POST /api/users",
		"PUT /api/users/" + adaID.String(),
	}
	if diff := cmp.Diff(expect, f.service.calls); diff != "" {
		t.Fatal(diff)
	}
}

func TestUsersGetWithoutIDFailsFast(t *testing.T) {
	f := newFixture(t)

	_, err := f.api.Users.Get(context.Background(), uuid.Nil)
	var missing *urltemplate.MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if len(f.service.calls) != 0 {
		t.Fatalf("expected no calls, got %v", f.service.calls)
	}
}

func TestUploadsUpload(t *testing.T) {
	f := newFixture(t)

	files := []api.File{
		{Field: "files", Filename: "a.png", Content: strings.NewReader("a")},
		{Field: "files", Filename: "b.png", Content: strings.NewReader("b")},
	}
	uploads, err := f.api.Uploads.Upload(context.Background(), adaID, files)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	var names []string
	for _, u := range uploads {
		if u.UserID != adaID {
			t.Errorf("unexpected owner %s", u.UserID)
		}
		names = append(names, u.Filename)
	}
	if diff := cmp.Diff([]string{"a.png", "b.png"}, names); diff != "" {
		t.Fatal(diff)
	}
}

func TestAuthLoginStoresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.api.Auth.Login(ctx, models.Credentials{Email: "ada@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != adaID || user.Username != "ada" {
		t.Fatalf("unexpected user %+v", user)
	}

	stored, _ := f.sessions.User(ctx)
	if stored == nil || stored.ID != adaID || stored.Email != "ada@example.org" {
		t.Fatalf("expected session to hold the user, got %+v", stored)
	}

	if err := f.api.Auth.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if stored, _ := f.sessions.User(ctx); stored != nil {
		t.Fatalf("expected session to be cleared, got %+v", stored)
	}
}

func TestAuthLoginFollowsCurrentID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.api.Auth.Login(ctx, models.Credentials{Email: "ada@example.org", Password: "correct horse"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	expect := []string{
		"POST /api/auth",
		"GET /api/auth",
		"GET /api/users/" + adaID.String(),
	}
	if diff := cmp.Diff(expect, f.service.calls); diff != "" {
		t.Fatal(diff)
	}
}

func TestAuthCurrentWithoutProfileKeepsID(t *testing.T) {
	f := newFixture(t)
	f.service.hideProfiles = true
	ctx := context.Background()

	user, err := f.api.Auth.Login(ctx, models.Credentials{Email: "ada@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if diff := cmp.Diff(&models.User{ID: adaID}, user); diff != "" {
		t.Fatal(diff)
	}

	stored, _ := f.sessions.User(ctx)
	if stored == nil || stored.ID != adaID {
		t.Fatalf("expected session to hold the user id, got %+v", stored)
	}
}

func TestAuthCurrentLoggedOut(t *testing.T) {
	f := newFixture(t)

	if user := f.api.Auth.Current(context.Background()); user != nil {
		t.Fatalf("expected no current user, got %+v", user)
	}
}

func TestCharactersGet(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	character, err := f.api.Characters.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if character == nil || character.ID != id || character.Name != "Bob" {
		t.Fatalf("unexpected character %+v", character)
	}
	if diff := cmp.Diff([]string{"GET /api/users/characters/" + id.String()}, f.service.calls); diff != "" {
		t.Fatal(diff)
	}
}

func TestAuthLoginRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.api.Auth.Login(context.Background(), models.Credentials{Email: "ada@example.org", Password: "wrong"})

	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if route := f.router.Current(); route.Name != navigation.RouteLogin || route.Query["redirect"] != "/app/" {
		t.Fatalf("expected redirect to login, got %+v", route)
	}
}

func TestTagsAttach(t *testing.T) {
	f := newFixture(t)
	existing := models.Tag{ID: uuid.New(), Title: "lore"}
	f.service.tags = []models.Tag{existing}

	if err := f.api.Tags.Attach(context.Background(), []string{"lore", "villain"}, adaID, contentID); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if len(f.service.tags) != 2 || f.service.tags[1].Title != "villain" || f.service.tags[1].UserID != adaID {
		t.Fatalf("expected villain tag to be created, got %+v", f.service.tags)
	}

	expect := []models.ContentTag{
		{ContentID: contentID, UserID: adaID, TagID: existing.ID},
		{ContentID: contentID, UserID: adaID, TagID: f.service.tags[1].ID},
	}
	if diff := cmp.Diff(expect, f.service.links); diff != "" {
		t.Fatal(diff)
	}

	linkPath := fmt.Sprintf("POST /api/content-tags/%s", contentID)
	if f.service.calls[len(f.service.calls)-1] != linkPath {
		t.Fatalf("expected last call %q, got %q", linkPath, f.service.calls[len(f.service.calls)-1])
	}
}

func TestPasswordRequestResetFailureIsFalse(t *testing.T) {
	f := newFixture(t)
	if f.api.Password.RequestReset(context.Background(), models.PasswordReset{Email: "nobody@example.org"}) {
		t.Fatal("expected false")
	}
}

func TestRegistrationConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.api.Registration.Confirm(ctx, models.Invitation{Username: "ada"}); err == nil {
		t.Fatal("expected missing id error")
	}

	ok, err := f.api.Registration.Confirm(ctx, models.Invitation{ID: uuid.New(), Username: "ada", PasswordPlain: "pw"})
	if err != nil || !ok {
		t.Fatalf("Confirm: %v %v", ok, err)
	}
}
