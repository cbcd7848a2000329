package password

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinLength = 8
	// MaxBytes is the bcrypt input limit.
	MaxBytes = 72
)

func Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify never fails: a malformed hash simply does not match.
func Verify(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Strength returns the list of unmet password rules, empty when the password is acceptable.
func Strength(pw string) []string {
	var problems []string
	if len(pw) < MinLength {
		problems = append(problems, "password must be at least 8 characters long")
	}
	if len(pw) > MaxBytes {
		problems = append(problems, "password must be at most 72 bytes long")
	}

	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		problems = append(problems, "password must contain at least one uppercase letter")
	}
	if !lower {
		problems = append(problems, "password must contain at least one lowercase letter")
	}
	if !digit {
		problems = append(problems, "password must contain at least one digit")
	}
	return problems
}
