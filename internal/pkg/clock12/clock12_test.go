package clock12

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input      string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{"09:00 AM", 9, 0, false},
		{"9:30 AM", 9, 30, false},
		{"06:00 PM", 18, 0, false},
		{"12:00 PM", 12, 0, false},
		{"12:00 AM", 0, 0, false},
		{"  10:15 pm ", 22, 15, false},
		{"18:00", 0, 0, true},
		{"09:00", 0, 0, true},
		{"", 0, 0, true},
		{"morning", 0, 0, true},
		{"25:00 PM", 0, 0, true},
	}

	for _, c := range cases {
		got, err := Parse(c.input)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) = %v, want error", c.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", c.input, err)
			continue
		}
		if got.Hour != c.wantHour || got.Minute != c.wantMinute {
			t.Errorf("Parse(%q) = %02d:%02d, want %02d:%02d", c.input, got.Hour, got.Minute, c.wantHour, c.wantMinute)
		}
	}
}

func TestAt(t *testing.T) {
	ct, err := Parse("06:30 PM")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	got := ct.At(date)
	want := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At(%v) = %v, want %v", date, got, want)
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		ct   ClockTime
		want string
	}{
		{ClockTime{Hour: 9, Minute: 0}, "09:00 AM"},
		{ClockTime{Hour: 0, Minute: 5}, "12:05 AM"},
		{ClockTime{Hour: 12, Minute: 0}, "12:00 PM"},
		{ClockTime{Hour: 18, Minute: 45}, "06:45 PM"},
	}
	for _, c := range cases {
		if got := c.ct.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
