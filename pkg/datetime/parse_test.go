package datetime

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	if _, err := ParseMonth("2025-10"); err != nil {
		t.Errorf("ParseMonth() unexpected error: %v", err)
	}
	if _, err := ParseMonth("October 2025"); err == nil {
		t.Errorf("ParseMonth() expected error for invalid label")
	}
}

func TestCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.September, 27, 10, 0, 0, 0, time.UTC)
	if got := CurrentMonth(now); got != "2025-09" {
		t.Errorf("CurrentMonth() = %s, expected 2025-09", got)
	}
}

func TestOffsetDate(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		months   int
		expected string
		wantErr  bool
	}{
		{"Add multiple years", "2025-01", 24, "2027-01", false},
		{"Subtract multiple years", "2025-01", -24, "2023-01", false},
		{"Cross year boundary forward", "2025-06", 8, "2026-02", false},
		{"Zero offset", "2025-06", 0, "2025-06", false},
		{"Invalid date", "2025-13", 1, "2025-13", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := OffsetDate(tt.date, tt.months)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OffsetDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if result != tt.expected {
				t.Errorf("OffsetDate() = %s, expected %s", result, tt.expected)
			}
		})
	}
}

func TestMonthLabel(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		n        int
		expected string
		wantErr  bool
	}{
		{"First month is start", "2025-10", 1, "2025-10", false},
		{"Sixth month", "2025-10", 6, "2026-03", false},
		{"Month zero rejected", "2025-10", 0, "", true},
		{"Bad start", "bad", 2, "bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MonthLabel(tt.start, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MonthLabel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if result != tt.expected {
				t.Errorf("MonthLabel() = %s, expected %s", result, tt.expected)
			}
		})
	}
}
