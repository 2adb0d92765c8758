package events

import (
	"errors"
	"testing"
	"time"

	"github.com/speeddate-dev/speeddate/internal/models"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestStart(t *testing.T) {
	scheduled := now.Add(time.Hour)
	e := &models.Event{StartDateTime: &scheduled}

	if err := Start(e, now); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !e.IsEventActive {
		t.Error("event not active after Start")
	}
	if e.NextRound.RoundNumber != 0 || e.NextRound.IsRoundActive {
		t.Errorf("round state = %+v", e.NextRound)
	}
	if !e.NextRound.StartTime.Equal(scheduled) || !e.NextRound.EndTime.Equal(scheduled.Add(RoundDuration)) {
		t.Errorf("round window = %v..%v", e.NextRound.StartTime, e.NextRound.EndTime)
	}
}

func TestStartWithoutScheduleUsesNow(t *testing.T) {
	e := &models.Event{}
	if err := Start(e, now); err != nil {
		t.Fatal(err)
	}
	if !e.NextRound.StartTime.Equal(now) {
		t.Errorf("StartTime = %v, want %v", e.NextRound.StartTime, now)
	}
}

func TestStartAlreadyActiveLeavesRoundUnchanged(t *testing.T) {
	start := now.Add(-time.Minute)
	end := now.Add(14 * time.Minute)
	e := &models.Event{
		IsEventActive: true,
		NextRound:     models.EventRound{RoundNumber: 2, IsRoundActive: true, StartTime: &start, EndTime: &end},
	}
	before := e.NextRound

	if err := Start(e, now); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("Start() error = %v, want ErrAlreadyActive", err)
	}
	if e.NextRound != before {
		t.Errorf("round state changed: %+v", e.NextRound)
	}
}

func TestEnd(t *testing.T) {
	e := &models.Event{}
	if err := End(e); !errors.Is(err, ErrNotActive) {
		t.Fatalf("End(inactive) error = %v", err)
	}

	e.IsEventActive = true
	e.NextRound = models.EventRound{RoundNumber: 2, IsRoundActive: true}

	if err := End(e); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if e.IsEventActive || e.NextRound.IsRoundActive {
		t.Errorf("event still active: %+v", e)
	}
	if e.NextRound.RoundNumber != 2 {
		t.Errorf("RoundNumber = %d, want 2", e.NextRound.RoundNumber)
	}

	// Restarting after end is allowed.
	if err := Start(e, now); err != nil {
		t.Errorf("Start() after End error = %v", err)
	}
}

func TestRoundsCapAtThree(t *testing.T) {
	e := &models.Event{}
	if err := Start(e, now); err != nil {
		t.Fatal(err)
	}

	for round := 1; round <= MaxRounds; round++ {
		at := now.Add(time.Duration(round) * 20 * time.Minute)
		if err := NextRound(e, at); err != nil {
			t.Fatalf("NextRound() #%d error = %v", round, err)
		}
		if e.NextRound.RoundNumber != round || !e.NextRound.IsRoundActive {
			t.Fatalf("after NextRound #%d: %+v", round, e.NextRound)
		}
		if !e.NextRound.StartTime.Equal(at) || !e.NextRound.EndTime.Equal(at.Add(RoundDuration)) {
			t.Fatalf("round %d window = %v..%v", round, e.NextRound.StartTime, e.NextRound.EndTime)
		}
		if err := EndRound(e); err != nil {
			t.Fatalf("EndRound() #%d error = %v", round, err)
		}
	}

	if err := NextRound(e, now); !errors.Is(err, ErrMaxRounds) {
		t.Fatalf("fourth NextRound() error = %v, want ErrMaxRounds", err)
	}
	if e.NextRound.RoundNumber != MaxRounds {
		t.Errorf("RoundNumber = %d after rejected call", e.NextRound.RoundNumber)
	}
}

func TestNextRoundRejections(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
		want  error
	}{
		{"inactive event", models.Event{}, ErrNextRoundNotActive},
		{"round running", models.Event{IsEventActive: true, NextRound: models.EventRound{RoundNumber: 1, IsRoundActive: true}}, ErrRoundStillActive},
		{"max reached", models.Event{IsEventActive: true, NextRound: models.EventRound{RoundNumber: 3}}, ErrMaxRounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			if err := NextRound(&e, now); !errors.Is(err, tt.want) {
				t.Errorf("NextRound() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEndRoundRejections(t *testing.T) {
	if err := EndRound(&models.Event{}); !errors.Is(err, ErrEndRoundNotActive) {
		t.Errorf("EndRound(inactive) error = %v", err)
	}
	if err := EndRound(&models.Event{IsEventActive: true}); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("EndRound(no round) error = %v", err)
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		event    models.Event
		userID   uint
		want     error
		wantSize int
	}{
		{
			name:     "open event",
			event:    models.Event{},
			userID:   5,
			wantSize: 1,
		},
		{
			name:   "missing user id",
			event:  models.Event{},
			userID: 0,
			want:   ErrUserIDRequired,
		},
		{
			name:   "deadline passed",
			event:  models.Event{RegistrationDeadline: timePtr(now.Add(-time.Second))},
			userID: 5,
			want:   ErrDeadlinePassed,
		},
		{
			name:     "deadline in future",
			event:    models.Event{RegistrationDeadline: timePtr(now.Add(time.Hour))},
			userID:   5,
			wantSize: 1,
		},
		{
			name: "at capacity",
			event: models.Event{
				MaximumParticipants: intPtr(2),
				Participants:        []models.EventParticipant{{UserID: 1}, {UserID: 2}},
			},
			userID:   5,
			want:     ErrEventFull,
			wantSize: 2,
		},
		{
			name: "one below capacity",
			event: models.Event{
				MaximumParticipants: intPtr(2),
				Participants:        []models.EventParticipant{{UserID: 1}},
			},
			userID:   5,
			wantSize: 2,
		},
		{
			name:     "duplicate",
			event:    models.Event{Participants: []models.EventParticipant{{UserID: 5}}},
			userID:   5,
			want:     ErrAlreadyRegistered,
			wantSize: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			err := Register(&e, tt.userID, now)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Register() error = %v, want %v", err, tt.want)
			}
			if len(e.Participants) != tt.wantSize {
				t.Errorf("participants = %d, want %d", len(e.Participants), tt.wantSize)
			}
		})
	}
}

func TestCapacityScenario(t *testing.T) {
	e := &models.Event{MaximumParticipants: intPtr(2), RegistrationDeadline: timePtr(now.Add(24 * time.Hour))}

	const b, c, d = 2, 3, 4

	if err := Register(e, b, now); err != nil {
		t.Fatal(err)
	}
	if err := Register(e, c, now); err != nil {
		t.Fatal(err)
	}
	if got := e.ParticipantIDs(); len(got) != 2 || got[0] != b || got[1] != c {
		t.Fatalf("participants = %v, want [%d %d]", got, b, c)
	}
	if err := Register(e, d, now); !errors.Is(err, ErrEventFull) {
		t.Fatalf("third Register() error = %v, want ErrEventFull", err)
	}
}

func TestSetCapacity(t *testing.T) {
	e := &models.Event{MaximumParticipants: intPtr(3)}
	for _, id := range []uint{2, 3} {
		if err := Register(e, id, now); err != nil {
			t.Fatal(err)
		}
	}

	if err := SetCapacity(e, intPtr(1)); !errors.Is(err, ErrCapacityTooLow) {
		t.Fatalf("SetCapacity(1) error = %v, want ErrCapacityTooLow", err)
	}
	if *e.MaximumParticipants != 3 {
		t.Errorf("capacity changed on error: %d", *e.MaximumParticipants)
	}

	if err := SetCapacity(e, intPtr(2)); err != nil {
		t.Fatalf("SetCapacity(2) error = %v", err)
	}
	if err := Register(e, 4, now); !errors.Is(err, ErrEventFull) {
		t.Errorf("Register() at new capacity error = %v, want ErrEventFull", err)
	}

	if err := SetCapacity(e, nil); err != nil {
		t.Fatalf("SetCapacity(nil) error = %v", err)
	}
	if err := Register(e, 4, now); err != nil {
		t.Errorf("Register() without limit error = %v", err)
	}
}

func TestUnregister(t *testing.T) {
	e := &models.Event{Participants: []models.EventParticipant{{UserID: 1}, {UserID: 2}, {UserID: 3}}}

	removed, err := Unregister(e, 2)
	if err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if removed.UserID != 2 {
		t.Errorf("removed = %+v", removed)
	}
	if got := e.ParticipantIDs(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("participants = %v, want [1 3]", got)
	}

	if _, err := Unregister(e, 2); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("second Unregister() error = %v", err)
	}
	if _, err := Unregister(e, 0); !errors.Is(err, ErrUserIDRequired) {
		t.Errorf("Unregister(0) error = %v", err)
	}
}
