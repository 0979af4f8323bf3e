package quote

import (
	"testing"
	"time"
)

// 2025-03-04 is a Tuesday, 2025-03-01/02 a Saturday/Sunday.
func TestMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		when time.Time
		want bool
	}{
		{"tuesday_open_boundary", time.Date(2025, 3, 4, 8, 45, 0, 0, taipei), true},
		{"tuesday_before_open", time.Date(2025, 3, 4, 8, 44, 59, 0, taipei), false},
		{"tuesday_mid_session", time.Date(2025, 3, 4, 11, 0, 0, 0, taipei), true},
		{"tuesday_close_boundary", time.Date(2025, 3, 4, 13, 45, 0, 0, taipei), true},
		{"tuesday_just_before_close", time.Date(2025, 3, 4, 13, 44, 59, 0, taipei), true},
		{"tuesday_just_after_close", time.Date(2025, 3, 4, 13, 45, 1, 0, taipei), false},
		{"tuesday_evening", time.Date(2025, 3, 4, 20, 0, 0, 0, taipei), false},
		{"saturday_mid_session_time", time.Date(2025, 3, 1, 10, 0, 0, 0, taipei), false},
		{"sunday_mid_session_time", time.Date(2025, 3, 2, 10, 0, 0, 0, taipei), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketOpen(tt.when); got != tt.want {
				t.Errorf("MarketOpen(%v) = %v, want %v", tt.when, got, tt.want)
			}
		})
	}
}

func TestMarketOpen_ConvertsToTaipei(t *testing.T) {
	// 00:45 UTC on a Tuesday is 08:45 in Taipei (UTC+8), inside the session.
	inUTC := time.Date(2025, 3, 4, 0, 45, 0, 0, time.UTC)
	if !MarketOpen(inUTC) {
		t.Errorf("MarketOpen(%v) = false, want true after zone conversion", inUTC)
	}

	// 08:45 UTC on a Tuesday is 16:45 in Taipei, after the close.
	outUTC := time.Date(2025, 3, 4, 8, 45, 0, 0, time.UTC)
	if MarketOpen(outUTC) {
		t.Errorf("MarketOpen(%v) = true, want false after zone conversion", outUTC)
	}
}
