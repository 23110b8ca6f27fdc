package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword is returned when a password does not match its hash
var ErrMismatchedHashAndPassword = errors.New("password does not match hash")

// HashPassword will generate a salted bcrypt hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// VerifyPassword reports whether password matches hash. Malformed hashes
// count as a mismatch.
func VerifyPassword(password, hash string) bool {
	return ComparePasswordAndHash(password, hash) == nil
}

// RandomPasswordHash hashes a random password nobody knows
func RandomPasswordHash() string {
	h, err := HashPassword(uuid.New().String())
	if err != nil {
		return RandomPasswordHash()
	}
	return h
}

// decoyHash is compared against when an email is unknown so that a miss
// costs one bcrypt comparison, same as a wrong password.
var decoyHash = sync.OnceValue(RandomPasswordHash)

// BcryptHasher is the default PasswordHasher
type BcryptHasher struct{}

func (BcryptHasher) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (BcryptHasher) VerifyPassword(password, hash string) bool {
	return VerifyPassword(password, hash)
}
