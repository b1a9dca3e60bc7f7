package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeRunID computes a deterministic backtest run ID using SHA256.
// Formula: SHA256(symbol|strategy|start_date|end_date)
// Dates are normalized to UTC RFC3339 so the same run always hashes the same.
// Returns hex-encoded hash (64 characters).
func ComputeRunID(symbol, strategy string, start, end time.Time) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		symbol,
		strategy,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
