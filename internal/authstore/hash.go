package authstore

import "golang.org/x/crypto/bcrypt"

// HashKey bcrypt-hashes a plaintext credential key for storage.
func HashKey(plaintextKey string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintextKey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func compareHash(hash, plaintextKey string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintextKey))
}
