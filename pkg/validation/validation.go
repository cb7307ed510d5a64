package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// AddressRegex validates ledger account address format.
	AddressRegex = regexp.MustCompile(`^[a-zA-Z0-9:_-]+$`)

	// TokenIDRegex validates token identifier format.
	TokenIDRegex = regexp.MustCompile(`^[a-zA-Z0-9:_-]+$`)

	// UsernameRegex validates API account usernames.
	UsernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateAddress validates a ledger account address.
func ValidateAddress(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("address is required")
	}
	if len(addr) > 128 {
		return fmt.Errorf("address is too long (max 128 characters)")
	}
	if !AddressRegex.MatchString(addr) {
		return fmt.Errorf("address contains invalid characters")
	}
	return nil
}

// ValidateTokenID validates a token identifier.
func ValidateTokenID(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if len(token) > 128 {
		return fmt.Errorf("token is too long (max 128 characters)")
	}
	if !TokenIDRegex.MatchString(token) {
		return fmt.Errorf("token contains invalid characters")
	}
	return nil
}

// ValidateUsername validates username.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return fmt.Errorf("username is too long (max 50 characters)")
	}
	if !UsernameRegex.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidatePassword validates password.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	return nil
}
