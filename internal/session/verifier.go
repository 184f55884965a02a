package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrMissingInput       = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Verifier checks a credential pair. Implementations return
// ErrInvalidCredentials for a rejected pair.
type Verifier interface {
	Verify(ctx context.Context, email, password string) error
}

// ValidateCredentials checks user input before any verification happens.
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingInput
	}
	if !IsValidEmail(email) {
		return ErrInvalidEmail
	}
	return nil
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// StaticVerifier accepts exactly one configured credential pair. The password
// is kept only as an argon2id key.
type StaticVerifier struct {
	email string
	salt  []byte
	key   []byte
}

var _ Verifier = (*StaticVerifier)(nil)

// NewStaticVerifier derives the key for password under a random salt.
func NewStaticVerifier(email, password string) (*StaticVerifier, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, fmt.Errorf("static verifier: %w", err)
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return &StaticVerifier{
		email: strings.TrimSpace(email),
		salt:  salt,
		key:   deriveKey([]byte(password), salt),
	}, nil
}

// Verify compares email case-insensitively and the password in constant time.
func (v *StaticVerifier) Verify(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := deriveKey([]byte(password), v.salt)
	emailOK := strings.EqualFold(strings.TrimSpace(email), v.email)
	if subtle.ConstantTimeCompare(key, v.key) != 1 || !emailOK {
		return ErrInvalidCredentials
	}
	return nil
}

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// Authenticate validates input, verifies it and logs the user in. Validation
// and credential failures leave the session untouched.
func Authenticate(ctx context.Context, v Verifier, s *Store, email, password string) error {
	if err := ValidateCredentials(email, password); err != nil {
		return err
	}
	if err := v.Verify(ctx, email, password); err != nil {
		return err
	}
	return s.Login(ctx, strings.TrimSpace(email))
}
