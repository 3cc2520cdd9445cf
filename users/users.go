package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// User is an identity that can log in. Users are soft-disabled through IsActive rather than deleted.
type User struct {
	ID           string    `json:"id"`           // Unique identifier for the user
	Username     string    `json:"username"`     // Unique login name
	Email        string    `json:"email"`        // Unique email address
	PasswordHash string    `json:"-"`            // bcrypt digest - never serialize
	IsActive     bool      `json:"is_active"`    // Inactive users cannot authenticate
	IsSuperuser  bool      `json:"is_superuser"` // Superusers may access every tenant
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Normalise trims surrounding whitespace and lower-cases the email.
func (u *User) Normalise() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// maxPasswordBytes is the bcrypt input limit, counted in bytes rather than characters.
const maxPasswordBytes = 72

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long, at most 72 bytes
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes long", maxPasswordBytes)
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
