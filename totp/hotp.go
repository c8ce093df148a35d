// SPDX-License-Identifier: ice License 1.0

package totp

import (
	"crypto/sha1" //nolint:gosec // RFC 4226 mandates HMAC-SHA1, it's not used for collision resistance.
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"strings"
	stdlibtime "time"

	"github.com/pkg/errors"
	"github.com/xlzd/gotp"

	"github.com/musicmarkt/gatekeeper/time"
)

//nolint:gochecknoglobals // Stateless encoding.
var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ComputeWindow returns the step counters of now-period, now and now+period, in that order.
// Steps before the epoch clamp to 0.
func ComputeWindow(now *time.Time, period stdlibtime.Duration) [WindowSize]uint64 {
	epochMillis := now.UnixMilli()
	periodMillis := period.Milliseconds()

	return [WindowSize]uint64{
		stepAt(epochMillis-periodMillis, periodMillis),
		stepAt(epochMillis, periodMillis),
		stepAt(epochMillis+periodMillis, periodMillis),
	}
}

func stepAt(epochMillis, periodMillis int64) uint64 {
	if epochMillis <= 0 {
		return 0
	}

	return uint64(epochMillis / periodMillis)
}

// DeriveCode is the RFC 4226 HOTP value of counter, as a zero padded decimal string of the given digits.
func DeriveCode(userSecret string, counter uint64, digits int, algorithm Algorithm) (string, error) {
	normalized, err := normalizeSecret(userSecret)
	if err != nil {
		return "", err
	}
	hasher, err := algorithm.hasher()
	if err != nil {
		return "", err
	}

	return gotp.NewHOTP(normalized, digits, hasher).At(int(counter)), nil //nolint:gosec // Time steps fit an int.
}

// DecodeSecret parses a base32 secret; padding, whitespace and lower case letters are tolerated.
func DecodeSecret(userSecret string) ([]byte, error) {
	normalized, err := normalizeSecret(userSecret)
	if err != nil {
		return nil, err
	}

	return secretEncoding.DecodeString(normalized) //nolint:wrapcheck // Already validated.
}

func EncodeSecret(key []byte) string {
	return secretEncoding.EncodeToString(key)
}

// normalizeSecret returns the upper case, unpadded form of userSecret, once it's known to decode.
func normalizeSecret(userSecret string) (string, error) {
	normalized := strings.TrimRight(strings.ToUpper(strings.Join(strings.Fields(userSecret), "")), "=")
	if normalized == "" {
		return "", errors.Wrap(ErrInvalidSecret, "empty secret")
	}
	if _, err := secretEncoding.DecodeString(normalized); err != nil {
		return "", errors.Wrapf(ErrInvalidSecret, "not base32: %v", err)
	}

	return normalized, nil
}

func (a Algorithm) hasher() (*gotp.Hasher, error) {
	switch a {
	case SHA1:
		return &gotp.Hasher{HashName: "sha1", Digest: sha1.New}, nil
	case SHA256:
		return &gotp.Hasher{HashName: "sha256", Digest: sha256.New}, nil
	case SHA512:
		return &gotp.Hasher{HashName: "sha512", Digest: sha512.New}, nil
	default:
		return nil, errors.Errorf("unsupported algorithm %q", string(a))
	}
}
