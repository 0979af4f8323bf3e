// Package quote implements the index snapshot cache: quantization, derived
// futures values, market-hours classification, and the refresh/fallback
// policy around the snapshot store.
package quote

import (
	"fmt"
	"time"
)

// Taiwan futures session window (Taipei local time), inclusive on both ends.
const (
	marketOpenSecond  = 8*3600 + 45*60  // 08:45:00
	marketCloseSecond = 13*3600 + 45*60 // 13:45:00
)

// taipei is the session time zone. A missing zone database is a broken
// deployment, not a runtime condition.
var taipei = mustLoadLocation("Asia/Taipei")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("quote: load time zone %s: %v", name, err))
	}
	return loc
}

// MarketOpen reports whether the session is trading at t: a weekday between
// 08:45:00 and 13:45:00 Taipei time.
func MarketOpen(t time.Time) bool {
	local := t.In(taipei)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	sec := local.Hour()*3600 + local.Minute()*60 + local.Second()
	return sec >= marketOpenSecond && sec <= marketCloseSecond
}
