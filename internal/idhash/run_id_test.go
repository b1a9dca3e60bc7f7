package idhash

import (
	"testing"
	"time"
)

func TestComputeRunID(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		symbol   string
		strategy string
		start    time.Time
		end      time.Time
		wantLen  int // hash length should be 64
	}{
		{
			name:     "hodl full year",
			symbol:   "BTC-USD",
			strategy: "HODL",
			start:    start,
			end:      end,
			wantLen:  64,
		},
		{
			name:     "dip strategy",
			symbol:   "ETH-USD",
			strategy: "Buy Dip 30%",
			start:    start,
			end:      end,
			wantLen:  64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRunID(tt.symbol, tt.strategy, tt.start, tt.end)

			if len(got) != tt.wantLen {
				t.Errorf("ComputeRunID() length = %d, want %d", len(got), tt.wantLen)
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeRunID(tt.symbol, tt.strategy, tt.start, tt.end)
			if got != got2 {
				t.Errorf("ComputeRunID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeRunID_NormalizesTimezone(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	loc := time.FixedZone("UTC+3", 3*60*60)
	shifted := ComputeRunID("BTC-USD", "HODL", start.In(loc), end.In(loc))
	utc := ComputeRunID("BTC-USD", "HODL", start, end)

	if shifted != utc {
		t.Errorf("ComputeRunID() differs across timezones: %s != %s", shifted, utc)
	}
}

func TestComputeRunID_DistinctInputs(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	a := ComputeRunID("BTC-USD", "HODL", start, end)
	b := ComputeRunID("BTC-USD", "DCA 30d", start, end)
	c := ComputeRunID("ETH-USD", "HODL", start, end)

	if a == b || a == c || b == c {
		t.Errorf("ComputeRunID() collisions across distinct inputs: %s %s %s", a, b, c)
	}
}
