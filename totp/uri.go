// SPDX-License-Identifier: ice License 1.0

package totp

import (
	"net/url"
	"strconv"
	"strings"
	stdlibtime "time"
)

// BuildPairingURI builds the otpauth:// URI authenticator apps scan, following the Key URI format:
// `otpauth://totp/ISSUER:LABEL?secret=...&issuer=...&period=...&digits=...&algorithm=...`.
// Label and values are percent-encoded, spaces as %20; `@` stays readable in the label, `:` never does.
func BuildPairingURI(label, userSecret, issuer string, period stdlibtime.Duration, digits int, algorithm Algorithm) string {
	var uri strings.Builder
	uri.WriteString("otpauth://totp/")
	uri.WriteString(escapeLabel(issuer))
	uri.WriteString(":")
	uri.WriteString(escapeLabel(label))
	params := [...][2]string{
		{"secret", userSecret},
		{"issuer", issuer},
		{"period", strconv.FormatInt(int64(period/stdlibtime.Second), 10)},
		{"digits", strconv.Itoa(digits)},
		{"algorithm", string(algorithm)},
	}
	for ix, param := range params {
		if ix == 0 {
			uri.WriteString("?")
		} else {
			uri.WriteString("&")
		}
		uri.WriteString(param[0])
		uri.WriteString("=")
		uri.WriteString(escape(param[1]))
	}

	return uri.String()
}

func escape(val string) string {
	return strings.ReplaceAll(url.QueryEscape(val), "+", "%20")
}

func escapeLabel(val string) string {
	return strings.ReplaceAll(url.PathEscape(val), ":", "%3A")
}
