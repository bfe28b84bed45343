package diag

import "testing"

func TestFingerprintIgnoresConfigsAndWhitespace(t *testing.T) {
	a := Diagnostic{
		Severity:  SevError,
		ID:        "nullPointer",
		Message:   "Null pointer  dereference:\tp",
		Locations: []Location{{File: "a.c", Line: 3}},
		Configs:   []string{""},
	}
	b := a.Clone()
	b.Message = "Null pointer dereference: p"
	b.Configs = []string{"DEBUG"}

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("fingerprints differ: %s vs %s", a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprintSensitiveToIdentity(t *testing.T) {
	base := Diagnostic{ID: "x", Message: "m", Locations: []Location{{File: "a.c", Line: 1}}}

	variants := map[string]Diagnostic{
		"id":      {ID: "y", Message: "m", Locations: []Location{{File: "a.c", Line: 1}}},
		"message": {ID: "x", Message: "n", Locations: []Location{{File: "a.c", Line: 1}}},
		"file":    {ID: "x", Message: "m", Locations: []Location{{File: "b.c", Line: 1}}},
		"line":    {ID: "x", Message: "m", Locations: []Location{{File: "a.c", Line: 2}}},
	}
	for name, v := range variants {
		if v.Fingerprint() == base.Fingerprint() {
			t.Errorf("%s: expected different fingerprint", name)
		}
	}
}

func TestFingerprintUsesOnlyPrimaryLocation(t *testing.T) {
	a := Diagnostic{ID: "x", Message: "m", Locations: []Location{{File: "a.c", Line: 1}}}
	b := a.WithLocation(Location{File: "b.h", Line: 9})
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("secondary locations must not change the fingerprint")
	}
}

func TestNormalizeMessageNFC(t *testing.T) {
	decomposed := "cafe\u0301"
	if NormalizeMessage(decomposed) != "caf\u00e9" {
		t.Fatalf("expected NFC composition, got %q", NormalizeMessage(decomposed))
	}
}
