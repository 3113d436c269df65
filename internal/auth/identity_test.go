package auth

import "testing"

func TestIdentityInGroup(t *testing.T) {
	tests := []struct {
		groups []string
		group  string
		want   bool
	}{
		{[]string{"admin"}, "admin", true},
		{[]string{"editors", "admin"}, "admin", true},
		{[]string{"editors"}, "admin", false},
		{nil, "admin", false},
		// An empty group name never matches.
		{[]string{""}, "", false},
	}

	for _, tt := range tests {
		got := Identity{Groups: tt.groups}.InGroup(tt.group)
		if got != tt.want {
			t.Errorf("InGroup(%v, %q) = %v, want %v", tt.groups, tt.group, got, tt.want)
		}
	}
}

func TestIdentityOwns(t *testing.T) {
	ana := Identity{Email: "ana@example.com"}

	if !ana.Owns("ana@example.com") {
		t.Error("expected creator to own record")
	}
	if ana.Owns("bob@example.com") {
		t.Error("expected other creator not to match")
	}
	if (Identity{}).Owns("") {
		t.Error("anonymous caller must not own records with empty creator")
	}
}

func TestIdentityFromClaims(t *testing.T) {
	id := IdentityFromClaims(&Claims{Email: "ana@example.com", Groups: []string{"admin"}})
	if id.Email != "ana@example.com" || !id.InGroup("admin") {
		t.Errorf("unexpected identity: %+v", id)
	}
	if got := IdentityFromClaims(nil); got.Email != "" || got.Groups != nil {
		t.Errorf("expected zero identity for nil claims, got %+v", got)
	}
}
