package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/mudkipdev/rephoton/internal/errors"
)

const (
	sealInfo     = "rephoton session blob v1"
	minMasterKey = 16
)

// Sealer encrypts session blobs at rest with XChaCha20-Poly1305. The token a
// blob belongs to is bound as additional data, so blobs cannot be swapped
// between tokens.
type Sealer struct {
	key []byte
}

// NewSealer derives the blob key from a hex master key. An empty master key
// yields a random key that lives as long as the process.
func NewSealer(masterKeyHex string) (*Sealer, error) {
	masterKeyHex = strings.TrimSpace(masterKeyHex)
	var master []byte
	if masterKeyHex == "" {
		master = make([]byte, 32)
		if _, err := rand.Read(master); err != nil {
			return nil, fmt.Errorf("generate master key: %w", err)
		}
	} else {
		var err error
		if master, err = hex.DecodeString(masterKeyHex); err != nil {
			return nil, errors.Invalid("session", "NewSealer", "MASTER_KEY_HEX is not hex")
		}
		if len(master) < minMasterKey {
			return nil, errors.Invalid("session", "NewSealer", fmt.Sprintf("MASTER_KEY_HEX must be at least %d bytes", minMasterKey))
		}
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal returns nonce||ciphertext.
func (s *Sealer) Seal(token string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, []byte(token)), nil
}

// Open reverses Seal. Tampered, truncated or foreign blobs fail.
func (s *Sealer) Open(token string, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.Unauthenticated(errors.ErrInvalidSession, "session", "Open")
	}
	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, []byte(token))
	if err != nil {
		return nil, errors.Unauthenticated(errors.ErrInvalidSession, "session", "Open")
	}
	return plain, nil
}
