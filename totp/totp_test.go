// SPDX-License-Identifier: ice License 1.0

package totp

import (
	"testing"
	stdlibtime "time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlzd/gotp"

	"github.com/musicmarkt/gatekeeper/time"
)

const (
	testApplicationYAMLKey = "self"
	// Base32 of the RFC 6238 seeds.
	rfcSHA1Secret   = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	rfcSHA256Secret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZA"
	rfcSHA512Secret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNA"
)

func TestDeriveCode_RFC4226Vectors(t *testing.T) {
	t.Parallel()
	expected := []string{"755224", "287082", "359152", "969429", "338314", "254676", "287922", "162583", "399871", "520489"}
	for counter, code := range expected {
		actual, err := DeriveCode(rfcSHA1Secret, uint64(counter), DefaultDigits, SHA1)
		require.NoError(t, err)
		assert.Equal(t, code, actual, "counter %v", counter)
		assert.Equal(t, gotp.NewHOTP(rfcSHA1Secret, DefaultDigits, nil).At(counter), actual, "counter %v", counter)
	}
}

func TestDeriveCode_RFC6238Vectors(t *testing.T) {
	t.Parallel()
	vectors := []struct {
		sha1, sha256, sha512 string
		epoch                int64
	}{
		{epoch: 59, sha1: "94287082", sha256: "46119246", sha512: "90693936"},
		{epoch: 1111111109, sha1: "07081804", sha256: "68084774", sha512: "25091201"},
		{epoch: 1111111111, sha1: "14050471", sha256: "67062674", sha512: "99943326"},
		{epoch: 1234567890, sha1: "89005924", sha256: "91819424", sha512: "93441116"},
		{epoch: 2000000000, sha1: "69279037", sha256: "90698825", sha512: "38618901"},
		{epoch: 20000000000, sha1: "65353130", sha256: "77737706", sha512: "47863826"},
	}
	for _, vector := range vectors {
		counter := ComputeWindow(time.New(stdlibtime.Unix(vector.epoch, 0)), DefaultPeriod)[1]
		for secret, expected := range map[string]struct {
			code string
			alg  Algorithm
		}{
			rfcSHA1Secret:   {code: vector.sha1, alg: SHA1},
			rfcSHA256Secret: {code: vector.sha256, alg: SHA256},
			rfcSHA512Secret: {code: vector.sha512, alg: SHA512},
		} {
			code, err := DeriveCode(secret, counter, 8, expected.alg)
			require.NoError(t, err)
			assert.Equal(t, expected.code, code, "epoch %v, %v", vector.epoch, expected.alg)
			code, err = DeriveCode(secret, counter, DefaultDigits, expected.alg)
			require.NoError(t, err)
			assert.Equal(t, expected.code[2:], code, "epoch %v, %v", vector.epoch, expected.alg)
		}
	}
}

func TestDeriveCode_InvalidInput(t *testing.T) {
	t.Parallel()
	_, err := DeriveCode("", 1, DefaultDigits, SHA1)
	require.ErrorIs(t, err, ErrInvalidSecret)
	_, err = DeriveCode("not base32 at all!", 1, DefaultDigits, SHA1)
	require.ErrorIs(t, err, ErrInvalidSecret)
	_, err = DeriveCode(rfcSHA1Secret, 1, DefaultDigits, Algorithm("MD5"))
	require.Error(t, err)
	code, err := DeriveCode("gezd gnbv gy3t qojq gezd gnbv gy3t qojq", 1, DefaultDigits, SHA1)
	require.NoError(t, err)
	assert.Equal(t, "287082", code)
}

func TestComputeWindow(t *testing.T) {
	t.Parallel()
	assert.Equal(t, [WindowSize]uint64{0, 1, 2}, ComputeWindow(time.New(stdlibtime.Unix(59, 0)), DefaultPeriod))
	assert.Equal(t, [WindowSize]uint64{37037035, 37037036, 37037037}, ComputeWindow(time.New(stdlibtime.Unix(1111111109, 0)), DefaultPeriod))
	assert.Equal(t, [WindowSize]uint64{0, 0, 1}, ComputeWindow(time.New(stdlibtime.Unix(0, 0)), DefaultPeriod))
	// Exactly on a step boundary.
	assert.Equal(t, [WindowSize]uint64{1, 2, 3}, ComputeWindow(time.New(stdlibtime.Unix(60, 0)), DefaultPeriod))
	assert.Equal(t, [WindowSize]uint64{1, 2, 3}, ComputeWindow(time.New(stdlibtime.UnixMilli(89_999)), DefaultPeriod))
	assert.Equal(t, [WindowSize]uint64{9, 10, 11}, ComputeWindow(time.New(stdlibtime.UnixMilli(105_500)), 10*stdlibtime.Second))
}

func TestVerify_WindowTolerance(t *testing.T) {
	t.Parallel()
	totp := MustNew(testApplicationYAMLKey)
	now := time.New(stdlibtime.Unix(1111111109, 0))

	candidates, err := totp.Candidates(now, rfcSHA1Secret)
	require.NoError(t, err)
	assert.Equal(t, []string{"731029", "081804", "050471"}, candidates)
	for _, code := range []string{"731029", "081804", "050471"} {
		valid, vErr := totp.Verify(now, rfcSHA1Secret, code)
		require.NoError(t, vErr)
		assert.True(t, valid, code)
	}
	for _, code := range []string{"150727", "266759", "81804", "", "0818040"} {
		valid, vErr := totp.Verify(now, rfcSHA1Secret, code)
		require.NoError(t, vErr)
		assert.False(t, valid, code)
	}
	valid, err := totp.Verify(time.New(now.Add(30*stdlibtime.Second)), rfcSHA1Secret, "266759")
	require.NoError(t, err)
	assert.True(t, valid)
	valid, err = totp.Verify(time.New(now.Add(90*stdlibtime.Second)), rfcSHA1Secret, "081804")
	require.NoError(t, err)
	assert.False(t, valid)

	_, err = totp.Verify(now, "", "081804")
	require.ErrorIs(t, err, ErrInvalidSecret)
}

func TestVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	totp := MustNew(testApplicationYAMLKey)
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)
	now := time.Now()
	candidates, err := totp.Candidates(now, secret)
	require.NoError(t, err)
	require.Len(t, candidates, WindowSize)
	for _, code := range candidates {
		assert.Len(t, code, DefaultDigits)
		valid, vErr := totp.Verify(now, secret, code)
		require.NoError(t, vErr)
		assert.True(t, valid)
	}
	assert.True(t, gotp.NewDefaultTOTP(secret).Verify(candidates[1], now.Unix()))
}

func TestGenerateSecret(t *testing.T) {
	t.Parallel()
	totp := MustNew(testApplicationYAMLKey)
	secret1, err := totp.GenerateSecret()
	require.NoError(t, err)
	secret2, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret1, secret2)
	assert.Len(t, secret1, 32)
	assert.NotContains(t, secret1, "=")
	key, err := DecodeSecret(secret1)
	require.NoError(t, err)
	assert.Len(t, key, SecretSize)
	assert.Equal(t, secret1, EncodeSecret(key))
}

func TestGenerateURI(t *testing.T) {
	t.Parallel()
	totp := MustNew(testApplicationYAMLKey)
	assert.Equal(t,
		"otpauth://totp/MusicMarkt:jane.doe@example.com?secret="+rfcSHA1Secret+"&issuer=MusicMarkt&period=30&digits=6&algorithm=SHA1",
		totp.GenerateURI(rfcSHA1Secret, "jane.doe@example.com"))
}

func TestBuildPairingURI(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"otpauth://totp/Music%20Markt%20&%20Co:jane%3Adoe%20%2F%20x@example.com?secret=ABC&issuer=Music%20Markt%20%26%20Co&period=60&digits=8&algorithm=SHA256",
		BuildPairingURI("jane:doe / x@example.com", "ABC", "Music Markt & Co", 60*stdlibtime.Second, 8, SHA256))
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.GatekeeperTOTP.Issuer = ""
	cfg.GatekeeperTOTP.Digits = 5
	cfg.GatekeeperTOTP.Algorithm = "MD5"
	cfg.GatekeeperTOTP.Period = 0
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, fragment := range []string{"issuer is required", "MD5", "whole number of seconds", "digits must be within"} {
		assert.Contains(t, err.Error(), fragment)
	}
	_, err = New(DefaultConfig())
	require.NoError(t, err)
}

func TestNew_FractionalPeriod(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.GatekeeperTOTP.Period = 1500 * stdlibtime.Millisecond
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "1.5s")

	cfg.GatekeeperTOTP.Period = 500 * stdlibtime.Millisecond
	_, err = New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg.GatekeeperTOTP.Period = 60 * stdlibtime.Second
	totp, err := New(cfg)
	require.NoError(t, err)
	assert.Contains(t, totp.GenerateURI(rfcSHA1Secret, "jane"), "period=60")
}
