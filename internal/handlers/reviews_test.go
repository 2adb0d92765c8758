package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/speeddate-dev/speeddate/internal/models"
	"github.com/speeddate-dev/speeddate/internal/types"
)

func TestReviews(t *testing.T) {
	env := newEnv(t)
	_, organizer := env.createUser("o@example.com", models.RoleOrganizer)
	alice, cookie := env.createUser("alice@example.com", models.RoleParticipant)
	bob, _ := env.createUser("bob@example.com", models.RoleParticipant)
	event := env.createEvent(organizer, map[string]any{"name": "Reviewed"})

	review := map[string]any{
		"reviewer":     alice.ID,
		"reviewedUser": bob.ID,
		"event":        event.ID,
		"round":        1,
		"rating":       4,
		"comment":      "Lovely chat",
		"showedUp":     true,
	}

	w := env.do(http.MethodPost, "/api/reviews", review, cookie)
	expectStatus(t, w, http.StatusCreated)
	created := decode[models.Review](t, w)
	if created.ReviewerID != alice.ID || created.ReviewedUserID != bob.ID || !created.ShowedUp {
		t.Errorf("created = %+v", created)
	}

	w = env.do(http.MethodPost, "/api/reviews", review, cookie)
	expectStatus(t, w, http.StatusBadRequest)
	if got := errorOf(t, w); got != types.MsgReviewExists {
		t.Errorf("duplicate error = %q", got)
	}

	// Another round is a different review.
	review["round"] = 2
	expectStatus(t, env.do(http.MethodPost, "/api/reviews", review, cookie), http.StatusCreated)

	invalid := []struct {
		name   string
		change map[string]any
		status int
	}{
		{"rating too high", map[string]any{"rating": 9}, http.StatusBadRequest},
		{"missing event", map[string]any{"event": nil}, http.StatusBadRequest},
		{"unknown event", map[string]any{"event": 31337}, http.StatusNotFound},
		{"unknown reviewed user", map[string]any{"reviewedUser": 31337}, http.StatusNotFound},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{}
			for k, v := range review {
				body[k] = v
			}
			body["round"] = 3
			for k, v := range tt.change {
				body[k] = v
			}
			expectStatus(t, env.do(http.MethodPost, "/api/reviews", body, cookie), tt.status)
		})
	}

	byBob := decode[[]models.Review](t, env.do(http.MethodGet, fmt.Sprintf("/api/reviews?reviewer=%d", bob.ID), nil, cookie))
	if len(byBob) != 0 {
		t.Errorf("reviews by bob = %d, want 0", len(byBob))
	}
	ofBob := decode[[]models.Review](t, env.do(http.MethodGet, fmt.Sprintf("/api/reviews?reviewedUser=%d&event=%d", bob.ID, event.ID), nil, cookie))
	if len(ofBob) != 2 {
		t.Errorf("reviews of bob = %d, want 2", len(ofBob))
	}
	expectStatus(t, env.do(http.MethodGet, "/api/reviews?event=abc", nil, cookie), http.StatusBadRequest)

	item := fmt.Sprintf("/api/reviews/%d", created.ID)

	w = env.do(http.MethodPut, item, map[string]any{"rating": 2}, cookie)
	expectStatus(t, w, http.StatusOK)
	updated := decode[models.Review](t, w)
	if updated.Rating != 2 || updated.Comment != "Lovely chat" {
		t.Errorf("update did not merge: %+v", updated)
	}
	expectStatus(t, env.do(http.MethodPut, item, map[string]any{"rating": 0}, cookie), http.StatusBadRequest)

	expectStatus(t, env.do(http.MethodDelete, item, nil, cookie), http.StatusOK)
	w = env.do(http.MethodGet, item, nil, cookie)
	expectStatus(t, w, http.StatusNotFound)
	if got := errorOf(t, w); got != types.MsgReviewNotFound {
		t.Errorf("error = %q", got)
	}
	expectStatus(t, env.do(http.MethodDelete, item, nil, cookie), http.StatusNotFound)
}
