package logger

import "testing"

func TestSanitizeValueRedactsSecrets(t *testing.T) {
	if got := sanitizeValue("access_token", "abc"); got != "[REDACTED]" {
		t.Fatalf("token: got=%v", got)
	}
	if got := sanitizeValue("email", "a@b.c"); got != "[REDACTED]" {
		t.Fatalf("email: got=%v", got)
	}
	if got := sanitizeValue("course_id", "c-1"); got != "c-1" {
		t.Fatalf("course_id should pass through: got=%v", got)
	}
}

func TestSanitizeValueHashesActorIDs(t *testing.T) {
	got, ok := sanitizeValue("reviewer_id", "4b1d").(string)
	if !ok || len(got) != len("hash:")+12 || got[:5] != "hash:" {
		t.Fatalf("reviewer_id: got=%v", got)
	}
	if again := sanitizeValue("reviewer_id", "4b1d"); again != got {
		t.Fatalf("hash not stable: %v vs %v", again, got)
	}
}

func TestSanitizeValueCatchesBareJWT(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := sanitizeValue("note", jwt); got != "[REDACTED]" {
		t.Fatalf("jwt: got=%v", got)
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "test"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.With("component", "test").Debug("hello", "k", "v")
	}
}
