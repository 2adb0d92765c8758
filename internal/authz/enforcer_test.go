package authz

import "testing"

func TestEnforcer_Allow(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	tests := []struct {
		role, obj, act string
		want           bool
	}{
		{"organizer", ObjectEvents, ActionCreate, true},
		{"participant", ObjectEvents, ActionCreate, false},
		{"participant", ObjectEvents, "delete", false},
		{"", ObjectEvents, ActionCreate, false},
		{"organizer", "reviews", ActionCreate, false},
	}

	for _, tt := range tests {
		if got := e.Allow(tt.role, tt.obj, tt.act); got != tt.want {
			t.Errorf("Allow(%q, %q, %q) = %v, want %v", tt.role, tt.obj, tt.act, got, tt.want)
		}
	}
}

func TestLoadPolicyRejectsMalformedLines(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatal(err)
	}

	if err := loadPolicy(e.enforcer, "p, organizer, events"); err == nil {
		t.Error("expected error for short policy line")
	}
}
