package envutil

import (
	"os"
	"testing"
)

func TestInt(t *testing.T) {
	t.Setenv("SC_TEST_INT", " 42 ")
	if got := Int("SC_TEST_INT", 7); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	t.Setenv("SC_TEST_INT", "nope")
	if got := Int("SC_TEST_INT", 7); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("SC_TEST_BOOL", "Yes")
	if !Bool("SC_TEST_BOOL", false) {
		t.Fatalf("Bool(Yes): want=true")
	}
	t.Setenv("SC_TEST_BOOL", "off")
	if Bool("SC_TEST_BOOL", true) {
		t.Fatalf("Bool(off): want=false")
	}
	t.Setenv("SC_TEST_BOOL", "maybe")
	if !Bool("SC_TEST_BOOL", true) {
		t.Fatalf("Bool(maybe): want default=true")
	}
}

func TestMissing(t *testing.T) {
	t.Setenv("SC_TEST_PRESENT", "")
	os.Unsetenv("SC_TEST_ABSENT")
	got := Missing("SC_TEST_PRESENT", "SC_TEST_ABSENT")
	if len(got) != 1 || got[0] != "SC_TEST_ABSENT" {
		t.Fatalf("Missing: want=[SC_TEST_ABSENT] got=%v", got)
	}
}
