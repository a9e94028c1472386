// Package idhash derives deterministic identifiers for derived facts so that
// recomputation over identical input reproduces identical keys.
package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// hashID returns base58(sha256(data)[:16]) for compact single-column keys.
func hashID(data string) string {
	sum := sha256.Sum256([]byte(data))
	return base58.Encode(sum[:16])
}

// PatternID computes the natural key of a recurring pattern.
// Formula: base58(sha256("pattern|merchant|account_id")[:16]).
func PatternID(merchant, accountID string) string {
	return hashID(fmt.Sprintf("pattern|%s|%s", merchant, accountID))
}

// ForecastID computes the natural key of a forecast row from its
// (month, scope, category) coordinates.
func ForecastID(forecastMonth, scope, category string) string {
	return hashID(fmt.Sprintf("forecast|%s|%s|%s", forecastMonth, scope, category))
}
