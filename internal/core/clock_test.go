package core

import "testing"

func TestCurrentDay(t *testing.T) {
	start := NewDate(2025, 9, 1)
	cases := []struct {
		today Date
		want  int
	}{
		{NewDate(2025, 9, 1), 1},
		{NewDate(2025, 9, 2), 2},
		{NewDate(2025, 9, 7), 7},
		{NewDate(2025, 9, 8), 8},
		{NewDate(2025, 10, 1), 31},
		{NewDate(2025, 8, 31), 1}, // future start clamps to day 1
	}
	for _, tc := range cases {
		if got := CurrentDay(start, tc.today); got != tc.want {
			t.Fatalf("CurrentDay(%s, %s) = %d, want %d", start, tc.today, got, tc.want)
		}
	}
}

func TestIsElapsed(t *testing.T) {
	cases := []struct {
		day, duration int
		want          bool
	}{
		{7, 7, false},
		{8, 7, true},
		{14, 14, false},
		{15, 14, true},
		{1, 30, false},
	}
	for _, tc := range cases {
		if got := IsElapsed(tc.day, tc.duration); got != tc.want {
			t.Fatalf("IsElapsed(%d, %d) = %v, want %v", tc.day, tc.duration, got, tc.want)
		}
	}
}

func TestValidDuration(t *testing.T) {
	for _, d := range SupportedDurations {
		if !ValidDuration(d) {
			t.Fatalf("duration %d should be valid", d)
		}
	}
	for _, d := range []int{0, 1, 10, 31, -7} {
		if ValidDuration(d) {
			t.Fatalf("duration %d should be invalid", d)
		}
	}
}

func TestParseDate(t *testing.T) {
	fallback := NewDate(2025, 9, 1)
	if got := ParseDate("2025-12-24", fallback); got != NewDate(2025, 12, 24) {
		t.Fatalf("unexpected date %s", got)
	}
	if got := ParseDate("", fallback); got != fallback {
		t.Fatalf("empty input should fall back, got %s", got)
	}
	if got := ParseDate("24/12/2025", fallback); got != fallback {
		t.Fatalf("malformed input should fall back, got %s", got)
	}
}
