package chess

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLookupFallsBackToFirstProfile(t *testing.T) {
	want := Lookup(Profiles()[0].ID)
	got := Lookup("nonexistent-id")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fallback profile mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	if got := Lookup("  Maestro "); got.ID != "maestro" {
		t.Fatalf("expected maestro, got %s", got.ID)
	}
}

func TestGetProfileUnknown(t *testing.T) {
	_, err := GetProfile("grandmaster")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestCatalogOrderAndDefaults(t *testing.T) {
	var ids []string
	for _, p := range Profiles() {
		ids = append(ids, p.ID)
	}
	want := []string{"iniciado", "acolito", "warrior", "lord", "darth", "maestro"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("catalog order mismatch (-want +got):\n%s", diff)
	}
	if _, err := GetProfile(DefaultProfileID); err != nil {
		t.Fatalf("default profile missing: %v", err)
	}
}

func TestProfilesReturnsCopy(t *testing.T) {
	list := Profiles()
	list[0].Name = "changed"
	if Profiles()[0].Name == "changed" {
		t.Fatalf("catalog mutated through Profiles()")
	}
}

func TestValidateProfileRejectsBadBehavior(t *testing.T) {
	base := Lookup("warrior")
	cases := map[string]func(*Profile){
		"depth":      func(p *Profile) { p.Behavior.SearchDepth = 0 },
		"randomness": func(p *Profile) { p.Behavior.Randomness = 1.5 },
		"tactical":   func(p *Profile) { p.Behavior.Tactical = -0.1 },
		"delay":      func(p *Profile) { p.Behavior.MoveDelay = DelayRange{Min: time.Second, Max: time.Millisecond} },
		"id":         func(p *Profile) { p.ID = " " },
	}
	for name, mutate := range cases {
		p := base
		mutate(&p)
		if err := ValidateProfile(p); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	if err := validateCatalog([]Profile{base, base}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestSampleDelayBounds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	d := DelayRange{Min: 200 * time.Millisecond, Max: 400 * time.Millisecond}
	for i := 0; i < 500; i++ {
		got := SampleDelay(d, r)
		if got < d.Min || got > d.Max {
			t.Fatalf("delay %s outside range", got)
		}
	}
	fixed := DelayRange{Min: time.Second, Max: time.Second}
	if got := SampleDelay(fixed, r); got != time.Second {
		t.Fatalf("expected fixed delay, got %s", got)
	}
}
