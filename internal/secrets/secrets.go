package secrets

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// Encryptor seals and opens provider credentials with a fernet key so the
// plaintext token never reaches the database.
type Encryptor struct {
	key *fernet.Key
}

// NewEncryptor creates an Encryptor from a base64-encoded fernet key.
func NewEncryptor(encodedKey string) (*Encryptor, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("encryption key is empty")
	}

	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}

	return &Encryptor{key: key}, nil
}

// Encrypt seals a plaintext credential into a fernet token.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), e.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt credential: %w", err)
	}
	return string(token), nil
}

// Decrypt opens a fernet token back into the plaintext credential.
// Tokens do not expire; rotation happens by saving a new one.
func (e *Encryptor) Decrypt(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{e.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt credential: invalid token")
	}
	return string(plaintext), nil
}

// GenerateKey produces a new random fernet key in its encoded form.
// Intended for first-time setup.
func GenerateKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return key.Encode(), nil
}
