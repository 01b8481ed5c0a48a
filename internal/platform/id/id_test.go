package id

import (
	"strings"
	"testing"
)

func TestNewIDShape(t *testing.T) {
	t.Parallel()

	value, err := NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("len = %d, want 26", len(value))
	}
	if strings.ToLower(value) != value || strings.Contains(value, "=") {
		t.Fatalf("NewID() = %q, want lowercase unpadded", value)
	}
	raw, err := encoding.DecodeString(strings.ToUpper(value))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw[6]>>4 != 4 {
		t.Fatalf("version = %d, want 4", raw[6]>>4)
	}
	if raw[8]&0xC0 != 0x80 {
		t.Fatalf("variant = %#x, want 0x80", raw[8]&0xC0)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		value, err := NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if seen[value] {
			t.Fatalf("duplicate id %q", value)
		}
		seen[value] = true
	}
}
