package catalog

import "testing"

func TestFingerprint(t *testing.T) {
	got := Fingerprint("mcp-server-methodology", "0.4.0-alpha")

	if len(got) != 64 {
		t.Fatalf("Fingerprint() length = %d, want 64", len(got))
	}
	if !ValidFingerprint(got) {
		t.Errorf("Fingerprint() = %q, not a valid lowercase hex-64 string", got)
	}

	// Deterministic for the same pair, distinct across versions.
	if Fingerprint("mcp-server-methodology", "0.4.0-alpha") != got {
		t.Errorf("Fingerprint() is not deterministic")
	}
	if Fingerprint("mcp-server-methodology", "0.3.0") == got {
		t.Errorf("Fingerprint() should differ across versions")
	}
}

func TestValidFingerprint(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid", Fingerprint("p", "1.0.0"), true},
		{"too short", "abc123", false},
		{"uppercase", "ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789", false},
		{"non-hex", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidFingerprint(tt.in); got != tt.want {
				t.Errorf("ValidFingerprint(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
