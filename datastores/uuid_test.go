package datastores

import (
	"errors"
	"testing"
)

func TestUUID_TextRoundTrip(t *testing.T) {
	id := newUUID()
	s := id.String()
	if len(s) != 22 {
		t.Fatalf("len(%q) = %d, want 22", s, len(s))
	}

	parsed, err := parseUUID(s)
	if err != nil {
		t.Fatalf("parseUUID(%q): %v", s, err)
	}
	if parsed != id {
		t.Fatalf("parseUUID(%q) = %v, want %v", s, parsed, id)
	}
}

func TestUUID_TimeOrdered(t *testing.T) {
	a, b := newUUID(), newUUID()
	if string(a[:]) >= string(b[:]) {
		t.Fatalf("UUIDv7 not increasing: %v then %v", a, b)
	}
}

func TestParseUUID_Malformed(t *testing.T) {
	for _, s := range []string{"", "does-not-exist", "1", "!!!!!!!!!!!!!!!!!!!!!!"} {
		if _, err := parseUUID(s); !errors.Is(err, ErrMalformedID) {
			t.Errorf("parseUUID(%q) err = %v, want ErrMalformedID", s, err)
		}
	}
}
