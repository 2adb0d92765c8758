package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/handlers"
	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestProfileLifecycle(t *testing.T) {
	env := newEnv(t)
	_, cookie := env.createUser("admin@example.com", models.RoleOrganizer)

	bare := models.User{Email: "bare@example.com", Password: "x", Salt: "y", Role: models.RoleParticipant}
	if err := db.DB.Create(&bare).Error; err != nil {
		t.Fatal(err)
	}

	body := map[string]any{
		"userId":     bare.ID,
		"fullName":   "Bare Bones",
		"gender":     models.GenderWoman,
		"interests":  []string{"hiking", "music"},
		"lookingFor": map[string]any{"ageRange": "25-35", "relationshipType": "long-term"},
	}

	w := env.do(http.MethodPost, "/api/userProfiles", body, cookie)
	expectStatus(t, w, http.StatusCreated)
	created := decode[models.UserProfile](t, w)

	var reloaded models.User
	if err := db.DB.First(&reloaded, bare.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.ProfileID == nil || *reloaded.ProfileID != created.ID {
		t.Errorf("user.profile = %v, want %d", reloaded.ProfileID, created.ID)
	}

	w = env.do(http.MethodPost, "/api/userProfiles", body, cookie)
	expectStatus(t, w, http.StatusBadRequest)
	if got := errorOf(t, w); got != types.MsgProfileAlreadyExists {
		t.Errorf("second create error = %q", got)
	}

	body["userId"] = 4040
	expectStatus(t, env.do(http.MethodPost, "/api/userProfiles", body, cookie), http.StatusNotFound)

	bad := map[string]any{"userId": bare.ID, "fullName": "X", "interests": []string{"knitting"}}
	expectStatus(t, env.do(http.MethodPost, "/api/userProfiles", bad, cookie), http.StatusBadRequest)

	path := fmt.Sprintf("/api/userProfiles/%d", bare.ID)

	w = env.do(http.MethodPut, path, map[string]any{"occupation": "Engineer"}, cookie)
	expectStatus(t, w, http.StatusOK)
	updated := decode[models.UserProfile](t, w)
	if updated.Occupation != "Engineer" || updated.FullName != "Bare Bones" || len(updated.Interests) != 2 {
		t.Errorf("update did not merge: %+v", updated)
	}
	if updated.LookingFor.AgeRange != "25-35" {
		t.Errorf("lookingFor = %+v", updated.LookingFor)
	}

	expectStatus(t, env.do(http.MethodDelete, path, nil, cookie), http.StatusOK)
	expectStatus(t, env.do(http.MethodGet, path, nil, cookie), http.StatusNotFound)

	if err := db.DB.First(&reloaded, bare.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.ProfileID != nil {
		t.Errorf("user.profile = %d after profile delete", *reloaded.ProfileID)
	}
}

func uploadRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAvatar(t *testing.T) {
	env := newEnv(t)
	user, cookie := env.createUser("pic@example.com", models.RoleParticipant)
	path := fmt.Sprintf("/api/userProfiles/%d/avatar", user.ID)

	send := func(req *http.Request) *httptest.ResponseRecorder {
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)
		return w
	}

	w := send(uploadRequest(t, path, "avatar", "me.png", pngHeader))
	expectStatus(t, w, http.StatusOK)
	first := decode[models.UserProfile](t, w).AvatarURL
	if !strings.HasPrefix(first, handlers.ImagesPath+"/") || !strings.HasSuffix(first, ".png") {
		t.Fatalf("avatarUrl = %q", first)
	}
	stored := filepath.Join(env.uploadDir, filepath.Base(first))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("avatar not written: %v", err)
	}

	served := httptest.NewRecorder()
	env.engine.ServeHTTP(served, httptest.NewRequest(http.MethodGet, first, nil))
	expectStatus(t, served, http.StatusOK)

	w = send(uploadRequest(t, path, "avatar", "again.png", pngHeader))
	expectStatus(t, w, http.StatusOK)
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Errorf("previous avatar still on disk: %v", err)
	}

	w = send(uploadRequest(t, path, "avatar", "notes.txt", []byte("just some text")))
	expectStatus(t, w, http.StatusBadRequest)
	if got := errorOf(t, w); got != types.MsgAvatarType {
		t.Errorf("error = %q", got)
	}

	w = send(uploadRequest(t, path, "", "", nil))
	expectStatus(t, w, http.StatusBadRequest)
	if got := errorOf(t, w); got != types.MsgAvatarRequired {
		t.Errorf("error = %q", got)
	}

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2<<20)...)
	w = send(uploadRequest(t, path, "avatar", "huge.png", big))
	expectStatus(t, w, http.StatusBadRequest)
	if got := errorOf(t, w); got != types.MsgAvatarTooLarge {
		t.Errorf("error = %q", got)
	}
}
