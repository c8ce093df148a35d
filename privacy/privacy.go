// SPDX-License-Identifier: ice License 1.0

package privacy

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/ericlagergren/siv"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	appcfg "github.com/musicmarkt/gatekeeper/config"
	"github.com/musicmarkt/gatekeeper/log"
)

func MustNew(applicationYAMLKey string) EncryptDecrypter {
	var cfg Config
	appcfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	if cfg.GatekeeperPrivacy.Secret == "" {
		cfg.GatekeeperPrivacy.Secret = appcfg.LookupEnv(applicationYAMLKey, "PRIVACY_SECRET")
	}
	ed, err := New(cfg.GatekeeperPrivacy.Secret)
	log.Panic(errors.Wrapf(err, "[%v] failed to build encrypter", applicationYAMLKey)) //nolint:revive // That's exactly what we want.

	return ed
}

// New builds an AES-256-GCM-SIV encrypter out of a hex encoded KeySize bytes key.
func New(hexKey string) (EncryptDecrypter, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, multierror.Append(ErrInvalidKey, errors.Wrap(err, "failed to decode key value"))
	}
	if len(key) != KeySize {
		return nil, errors.Wrapf(ErrInvalidKey, "we need %v bytes, got %v", KeySize, len(key))
	}
	aead, err := siv.NewGCM(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build aes gcm siv mode")
	}

	return &encryptDecrypter{aead: aead}, nil
}

// GenerateKey returns a fresh random key, in the format New expects.
func GenerateKey() string {
	key := make([]byte, KeySize)
	_, _ = rand.Read(key) //nolint:errcheck // It never fails.

	return hex.EncodeToString(key)
}

func (e *encryptDecrypter) Encrypt(plaintext string) string {
	nonce := make([]byte, siv.NonceSize, siv.NonceSize+len(plaintext)+e.aead.Overhead())
	_, _ = rand.Read(nonce) //nolint:errcheck // It never fails.

	return hex.EncodeToString(e.aead.Seal(nonce, nonce, []byte(plaintext), nil))
}

func (e *encryptDecrypter) Decrypt(val string) (string, error) {
	decoded, err := hex.DecodeString(val)
	if err != nil {
		return "", multierror.Append(errHexDecodingFailed, errors.Wrap(err, "failed to decode value"))
	}
	if len(decoded) < siv.NonceSize {
		return "", errors.Wrapf(errDecryptionFailed, "value too short")
	}
	nonce, ciphertext := decoded[:siv.NonceSize], decoded[siv.NonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", multierror.Append(errDecryptionFailed, errors.Wrap(err, "failed to Open ciphertext"))
	}

	return string(plaintext), nil
}
