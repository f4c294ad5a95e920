package utils

import "golang.org/x/crypto/bcrypt"

// Crypt Encrypt the password using crypto/bcrypt
func Crypt(password string) (string, error) {
	cost := 5
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hashedPassword), err
}
