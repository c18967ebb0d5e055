package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of plain. The cost comes from
// configuration so tests can run at the cheap minimum.
func HashPassword(plain string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	return string(hashed), err
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The comparison is constant-time.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
