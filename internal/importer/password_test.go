package importer

import (
	"strings"
	"testing"
)

func TestGeneratePasswordClasses(t *testing.T) {
	for i := 0; i < 200; i++ {
		pw, err := GeneratePassword(12)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(pw) != 12 {
			t.Fatalf("want length 12, got %d (%q)", len(pw), pw)
		}
		if !strings.ContainsAny(pw, upperChars) {
			t.Errorf("no uppercase in %q", pw)
		}
		if !strings.ContainsAny(pw, lowerChars) {
			t.Errorf("no lowercase in %q", pw)
		}
		if !strings.ContainsAny(pw, digitChars) {
			t.Errorf("no digit in %q", pw)
		}
		if !strings.ContainsAny(pw, symbolChars) {
			t.Errorf("no symbol in %q", pw)
		}
	}
}

func TestGeneratePasswordMinimumLength(t *testing.T) {
	pw, err := GeneratePassword(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(pw) != MinPasswordLength {
		t.Errorf("short request must be raised to %d, got %d", MinPasswordLength, len(pw))
	}
}

func TestGeneratePasswordNotConstant(t *testing.T) {
	a, _ := GeneratePassword(12)
	b, _ := GeneratePassword(12)
	if a == b {
		t.Errorf("two generated passwords identical: %q", a)
	}
}
