package utils

import "testing"

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("MENTOR_TEST_INT", "42")
	if got := GetEnvAsInt("MENTOR_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("GetEnvAsInt: got %d", got)
	}
	t.Setenv("MENTOR_TEST_INT", "nope")
	if got := GetEnvAsInt("MENTOR_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("GetEnvAsInt fallback: got %d", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("MENTOR_TEST_BOOL", "off")
	if GetEnvAsBool("MENTOR_TEST_BOOL", true, nil) {
		t.Fatalf("GetEnvAsBool: expected false")
	}
	if !GetEnvAsBool("MENTOR_TEST_BOOL_MISSING", true, nil) {
		t.Fatalf("GetEnvAsBool: expected default true")
	}
}

func TestGetEnvBlankUsesDefault(t *testing.T) {
	t.Setenv("MENTOR_TEST_STR", "  ")
	if got := GetEnv("MENTOR_TEST_STR", "fallback", nil); got != "fallback" {
		t.Fatalf("GetEnv: got %q", got)
	}
}
