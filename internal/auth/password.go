package auth

import (
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/ats-service/pkg/util"
)

// MinPasswordLength matches the sign-up and invite-acceptance forms.
const MinPasswordLength = 6

// ValidatePassword enforces the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError("Password must be at least 6 characters", nil)
	}
	return nil
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
