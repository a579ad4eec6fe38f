package service

import "golang.org/x/crypto/bcrypt"

// bcryptCost is tuned so verification takes on the order of 100ms on
// commodity hardware, as a brute-force deterrent. This latency is
// intentional; do not lower it to speed up the login path.
const bcryptCost = 12

// HashPassword produces a salted bcrypt digest of the plaintext.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash. It fails
// closed on a malformed hash. Mismatch timing is handled by bcrypt itself.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
