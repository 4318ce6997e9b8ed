package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	roles := []string{"employee", "team_lead", "hr"}
	if !IsInSlice("hr", roles) {
		t.Error("IsInSlice(hr) = false, want true")
	}
	if IsInSlice("admin", roles) {
		t.Error("IsInSlice(admin) = true, want false")
	}
	if IsInSlice("hr", nil) {
		t.Error("IsInSlice on nil slice = true, want false")
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2025-02-28"); !ok {
		t.Error("IsValidDate(2025-02-28) = false, want true")
	}
	if _, ok := IsValidDate("2025-13-01"); ok {
		t.Error("IsValidDate(2025-13-01) = true, want false")
	}
	if _, ok := IsValidDate("28/02/2025"); ok {
		t.Error("IsValidDate(28/02/2025) = true, want false")
	}
}

func TestIsValidMonth(t *testing.T) {
	for m := 1; m <= 12; m++ {
		if !IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = false, want true", m)
		}
	}
	for _, m := range []int{0, 13, -1} {
		if IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = true, want false", m)
		}
	}
}

func TestCoordinates(t *testing.T) {
	if !IsValidLatitude(-89.9) || !IsValidLatitude(90) {
		t.Error("expected valid latitudes to pass")
	}
	if IsValidLatitude(91) || IsValidLongitude(-181) {
		t.Error("expected out-of-range coordinates to fail")
	}
}
