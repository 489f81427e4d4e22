package model

import (
	"testing"
	"time"
)

func TestParseTemporal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		want   time.Time
		wantOK bool
	}{
		{name: "iso date", value: "2024-03-04", want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "iso date unpadded", value: "2024-3-4", want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "iso datetime with space", value: "2024-03-04 10:30:00", want: time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC), wantOK: true},
		{name: "iso datetime minutes only", value: "2024-03-04T10:30", want: time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC), wantOK: true},
		{name: "rfc3339 utc", value: "2024-03-04T10:30:00Z", want: time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC), wantOK: true},
		{name: "slash year first", value: "2024/03/04", want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "us month first", value: "03/04/2024", want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "day first fallback", value: "25/12/2024", want: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "dotted european", value: "25.12.2024", want: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "month name", value: "Dec 25, 2024", want: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "day month name", value: "25 December 2024", want: time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "surrounding whitespace", value: "  2024-03-04 ", want: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "invalid calendar date", value: "2024-02-30", wantOK: false},
		{name: "plain number", value: "20240304", wantOK: false},
		{name: "text", value: "yesterday", wantOK: false},
		{name: "empty", value: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseTemporal(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ParseTemporal(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTemporal(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatTemporal_RoundTrip(t *testing.T) {
	t.Parallel()

	values := []time.Time{
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 10, 30, 15, 500000000, time.UTC),
		time.Date(2024, 3, 4, 10, 30, 15, 0, time.FixedZone("JST", 9*60*60)),
	}

	for _, want := range values {
		got, ok := ParseTemporal(FormatTemporal(want))
		if !ok {
			t.Fatalf("ParseTemporal(FormatTemporal(%v)) failed", want)
		}
		if !got.Equal(want) {
			t.Errorf("round trip = %v, want %v", got, want)
		}
	}
}
