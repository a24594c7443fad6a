package utils

import "golang.org/x/crypto/bcrypt"

// HashCost is the bcrypt cost used by HashPassword. Set once at startup from config.
var HashCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of the plaintext password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(hash), err
}

// CheckPassword compares a bcrypt hash with the plaintext password and returns true on match
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
