// SPDX-License-Identifier: ice License 1.0

// Package privacy encrypts sensitive values, like OTP secrets, before they're stored.
package privacy

import (
	"crypto/cipher"

	"github.com/pkg/errors"
)

// Public API.

const (
	// KeySize is the length of the AES-256-GCM-SIV key, hex encoded in the config.
	KeySize = 32
)

var (
	ErrInvalidKey = errors.New("invalid privacy key")
)

type (
	EncryptDecrypter interface {
		// Encrypt seals plaintext under a fresh random nonce and returns both, hex encoded.
		Encrypt(plaintext string) string
		Decrypt(ciphertext string) (string, error)
	}
	Config struct {
		GatekeeperPrivacy struct {
			Secret string `yaml:"secret" mapstructure:"secret"`
		} `yaml:"gatekeeper/privacy" mapstructure:"gatekeeper/privacy"` //nolint:tagliatelle // Namespaced key.
	}
)

// Private API.

var (
	errHexDecodingFailed = errors.New("failed to hex decode value")
	errDecryptionFailed  = errors.New("failed to decrypt value")
)

type (
	encryptDecrypter struct {
		aead cipher.AEAD
	}
)
