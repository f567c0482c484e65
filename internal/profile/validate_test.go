package profile

import "testing"

func TestValidateName(t *testing.T) {
	valid := []string{"main", "staging", "prod-eu", "site_2", "a"}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "Main", "has space", "dot.name", "slash/name",
		"0123456789012345678901234567890123456789012345678901234567890123x"}
	for _, name := range invalid {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", name)
		}
	}
}

func TestResolvePrecedence(t *testing.T) {
	if got := Resolve("staging"); got != "staging" {
		t.Errorf("Resolve with override = %q, want staging", got)
	}
}

func TestPathsAreUnderProfileDir(t *testing.T) {
	dir := Dir("main")
	for _, p := range []string{LockPath("main"), SessionPath("main"), LogPath("main")} {
		if len(p) <= len(dir) || p[:len(dir)] != dir {
			t.Errorf("path %q not under profile dir %q", p, dir)
		}
	}
}
