package schedule

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{name: "zero", ms: 0, want: "00:00"},
		{name: "three thirty three", ms: 213000, want: "03:33"},
		{name: "truncates milliseconds", ms: 59999, want: "00:59"},
		{name: "minutes past an hour", ms: 3723000, want: "62:03"},
		{name: "negative", ms: -5000, want: "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.ms); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{in: time.Date(2026, 10, 24, 9, 3, 59, 0, time.UTC), want: "09:03"},
		{in: time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), want: "00:00"},
		{in: time.Date(2026, 10, 24, 23, 50, 0, 0, time.UTC), want: "23:50"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinArtists(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{names: nil, want: ""},
		{names: []string{}, want: ""},
		{names: []string{"A"}, want: "A"},
		{names: []string{"A", "B"}, want: "A, B"},
	}

	for _, tt := range tests {
		if got := JoinArtists(tt.names); got != tt.want {
			t.Errorf("JoinArtists(%q) = %q, want %q", tt.names, got, tt.want)
		}
	}
}

func TestFormatTotal(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{ms: 0, want: "00h 00m 00s"},
		{ms: 600000, want: "00h 10m 00s"},
		{ms: 3723000, want: "01h 02m 03s"},
		{ms: 26 * 3600 * 1000, want: "26h 00m 00s"},
	}

	for _, tt := range tests {
		if got := FormatTotal(tt.ms); got != tt.want {
			t.Errorf("FormatTotal(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatTempo(t *testing.T) {
	tempo := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		tempo *float64
		want  string
	}{
		{name: "absent", tempo: nil, want: ""},
		{name: "whole", tempo: tempo(120), want: "120"},
		{name: "rounded", tempo: tempo(127.6), want: "128"},
	}

	for _, tt := range tests {
		if got := FormatTempo(tt.tempo); got != tt.want {
			t.Errorf("FormatTempo(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
