// Package validation checks player-supplied values before they reach the
// store, and rate limits API clients.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-starstrike/pkg/mission"
)

// Limits on player-supplied values
const (
	MaxUsernameLen = 32
	MaxScore       = 10_000_000
	MaxBodySize    = 4 * 1024
)

// Sentinel errors. Every validation failure wraps one of these.
var (
	ErrInvalidWallet   = errors.New("invalid wallet")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidScore    = errors.New("invalid score")
)

var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidateWallet checks for a 0x-prefixed 40-digit hex address and returns
// it lowercased, so checksummed and plain forms name the same profile.
func ValidateWallet(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("%w: address cannot be empty", ErrInvalidWallet)
	}
	if !walletPattern.MatchString(addr) {
		return "", fmt.Errorf("%w: want 0x followed by 40 hex digits", ErrInvalidWallet)
	}
	return strings.ToLower(addr), nil
}

// ValidateUsername validates and trims a display name.
func ValidateUsername(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: contains invalid UTF-8 characters", ErrInvalidUsername)
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: cannot be empty", ErrInvalidUsername)
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxUsernameLen {
		return "", fmt.Errorf("%w: too long: %d characters (max %d)", ErrInvalidUsername, n, MaxUsernameLen)
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: contains control characters", ErrInvalidUsername)
		}
		if !unicode.IsPrint(r) {
			return "", fmt.Errorf("%w: contains unprintable characters", ErrInvalidUsername)
		}
	}
	return trimmed, nil
}

// ValidateScore checks a reported game result.
func ValidateScore(score, wave, missionID int) error {
	if score < 0 || score > MaxScore {
		return fmt.Errorf("%w: score %d out of range [0, %d]", ErrInvalidScore, score, MaxScore)
	}
	if wave < 1 {
		return fmt.Errorf("%w: wave must be at least 1, got %d", ErrInvalidScore, wave)
	}
	if !mission.Exists(missionID) {
		return fmt.Errorf("%w: unknown mission %d", ErrInvalidScore, missionID)
	}
	return nil
}
