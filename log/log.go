// SPDX-License-Identifier: ice License 1.0

package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	appcfg "github.com/musicmarkt/gatekeeper/config"
)

//nolint:gochecknoglobals // There's exactly one logger for the whole app.
var logger *zerolog.Logger

//nolint:gochecknoinits // The logger is global, so it's configured on init.
func init() {
	var cfg config
	appcfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	if cfg.Level == "" {
		cfg.Level = zerolog.InfoLevel.String()
	}
	zerolog.DisableSampling(true)
	zerolog.ErrorStackMarshaler = marshalErrorStack //nolint:reassign // Only done once, on init.
	zerolog.InterfaceMarshalFunc = json.Marshal
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	var err error
	if logger, err = build(strings.EqualFold(cfg.Encoder, jsonEncoder), cfg.Level); err != nil {
		panic(errors.Wrap(err, "failed to build logger"))
	}
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)
}

func build(isJSON bool, level string) (*zerolog.Logger, error) { //nolint:revive // Control coupling is intended.
	var out io.Writer = os.Stderr
	if !isJSON {
		out = &zerolog.ConsoleWriter{
			Out:          out,
			TimeFormat:   time.RFC3339Nano,
			PartsOrder:   []string{zerolog.LevelFieldName, zerolog.TimestampFieldName, zerolog.MessageFieldName},
			PartsExclude: []string{zerolog.ErrorStackFieldName, zerolog.CallerFieldName},
		}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid logger level %q", level)
	}
	lgr := zerolog.New(out).With().Timestamp().Stack().Logger().Level(lvl)

	return &lgr, nil
}

func marshalErrorStack(err error) any {
	frames, ok := pkgerrors.MarshalStack(err).([]map[string]string)
	if !ok || len(frames) <= stackFramesToSkip {
		return nil
	}
	stack := make([]string, 0, len(frames)-stackFramesToSkip)
	for _, frame := range frames[:len(frames)-stackFramesToSkip] {
		stack = append(stack, fmt.Sprintf("%s:%s:%s",
			frame[pkgerrors.StackSourceFileName],
			frame[pkgerrors.StackSourceLineName],
			frame[pkgerrors.StackSourceFunctionName]))
	}

	return strings.Join(stack, "<<")
}

func withFields(event *zerolog.Event, fields []any) *zerolog.Event {
	if len(fields) > 0 {
		return event.Fields(fields)
	}

	return event
}

func Error(err error, fields ...any) {
	if err == nil {
		return
	}
	withFields(logger.Err(err), fields).Send()
}

func Debug(msg string, fields ...any) {
	withFields(logger.Debug(), fields).Msg(msg)
}

func Info(msg string, fields ...any) {
	withFields(logger.Info(), fields).Msg(msg)
}

func Warn(msg string, fields ...any) {
	withFields(logger.Warn(), fields).Msg(msg)
}

// Fatal logs and exits the process, if anything is not nil.
func Fatal(anything any, fields ...any) {
	if anything == nil {
		return
	}
	withFields(logger.Fatal(), fields).Err(asError(anything)).Send()
}

// Panic logs and panics, if anything is not nil. It's the usual way of failing `MustXXX` constructors.
func Panic(anything any, fields ...any) {
	if anything == nil {
		return
	}
	withFields(logger.Panic(), fields).Err(asError(anything)).Send()
}

func Level() string {
	return logger.GetLevel().String()
}

func asError(anything any) error {
	switch obj := anything.(type) {
	case error:
		return obj
	case string:
		return errors.New(obj)
	default:
		return errors.Errorf("%#v", obj)
	}
}
