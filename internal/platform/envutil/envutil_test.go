package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("X_TTL", "90")
	if got := Duration("X_TTL", time.Minute); got != 90*time.Second {
		t.Fatalf("seconds: want=%s got=%s", 90*time.Second, got)
	}
	t.Setenv("X_TTL", "10m")
	if got := Duration("X_TTL", time.Minute); got != 10*time.Minute {
		t.Fatalf("duration: want=%s got=%s", 10*time.Minute, got)
	}
	t.Setenv("X_TTL", "soon")
	if got := Duration("X_TTL", time.Minute); got != time.Minute {
		t.Fatalf("fallback: want=%s got=%s", time.Minute, got)
	}
}

func TestCSVAndFirst(t *testing.T) {
	t.Setenv("X_LIST", " a, ,b ")
	got := CSV("X_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("CSV: got=%v", got)
	}
	t.Setenv("X_A", "")
	t.Setenv("X_B", "eu")
	if v := First("us", "X_A", "X_B"); v != "eu" {
		t.Fatalf("First: want=eu got=%q", v)
	}
	if v := First("us", "X_A"); v != "us" {
		t.Fatalf("First default: want=us got=%q", v)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("X_FLAG", "off")
	if Bool("X_FLAG", true) {
		t.Fatalf("Bool: want=false")
	}
	t.Setenv("X_FLAG", "maybe")
	if !Bool("X_FLAG", true) {
		t.Fatalf("Bool default: want=true")
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("X_RATIO", "0.25")
	if v := Float("X_RATIO", 1); v != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", v)
	}
	t.Setenv("X_RATIO", "half")
	if v := Float("X_RATIO", 1); v != 1 {
		t.Fatalf("Float default: want=1 got=%v", v)
	}
}
