package authsvc

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MinSecretSize is the minimum signing secret length in bytes (HS256 key size).
const MinSecretSize = 32

// ErrWeakSigningSecret is returned for secrets shorter than MinSecretSize.
var ErrWeakSigningSecret = errors.New("signing secret too short")

// DecodeSigningSecret reads a base64-encoded secret.
// Returns an error if the secret cannot be read or is too short.
func DecodeSigningSecret(r io.Reader) ([]byte, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}

	secret, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(buf)))
	if err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}

	if len(secret) < MinSecretSize {
		return nil, ErrWeakSigningSecret
	}

	return secret, nil
}

// GenerateSigningSecret creates a new random secret of the given size.
func GenerateSigningSecret(size int) ([]byte, error) {
	if size < MinSecretSize {
		return nil, ErrWeakSigningSecret
	}

	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	return secret, nil
}

// EncodeSigningSecret encodes a secret for storage in a key file.
func EncodeSigningSecret(secret []byte) []byte {
	return []byte(base64.StdEncoding.EncodeToString(secret) + "\n")
}

// GetSigningSecret loads or creates the signing secret at the specified path.
// If the file exists, it loads and decodes the secret.
// If the file doesn't exist, it generates a new secret and saves it with mode 0600.
func GetSigningSecret(path string) ([]byte, error) {
	keyFile, err := os.Open(path)
	if err == nil {
		defer keyFile.Close()

		secret, err := DecodeSigningSecret(keyFile)
		if err != nil {
			return nil, fmt.Errorf("decode signing secret: %w", err)
		}

		return secret, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open key file: %w", err)
	}

	secret, err := GenerateSigningSecret(MinSecretSize)
	if err != nil {
		return nil, fmt.Errorf("generate signing secret: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}

	// O_EXCL: a concurrently started instance must not overwrite our key
	keyFile, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create key file: %w", err)
	}
	defer keyFile.Close()

	if _, err := keyFile.Write(EncodeSigningSecret(secret)); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}

	return secret, nil
}

// LoadSigningSecret returns the configured secret, falling back to the key file.
func LoadSigningSecret(cfg AuthConfig) ([]byte, error) {
	if cfg.SigningSecret != "" {
		if len(cfg.SigningSecret) < MinSecretSize {
			return nil, ErrWeakSigningSecret
		}

		return []byte(cfg.SigningSecret), nil
	}

	return GetSigningSecret(cfg.SigningKeyFile)
}
