// SPDX-License-Identifier: ice License 1.0

package log

// Private API.

const (
	applicationYAMLKey = "logger"
	jsonEncoder        = "json"
	stackFramesToSkip  = 2
)

type (
	config struct {
		Encoder string `yaml:"encoder" mapstructure:"encoder"`
		Level   string `yaml:"level" mapstructure:"level"`
	}
)
