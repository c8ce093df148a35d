// SPDX-License-Identifier: ice License 1.0

package config

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	applicationFileName = "application.yaml"
	dotEnvSearchDepth   = 5
)

//nolint:gochecknoinits // Configuration is loaded once, for the whole runtime.
func init() {
	loadFirstApplicationConfigFile()
	loadDotEnv()
}

// MustLoadFromKey decodes the section stored under key into cfg and panics if it can't.
func MustLoadFromKey(key string, cfg any) {
	if err := LoadFromKey(key, cfg); err != nil {
		log.Panic(err)
	}
}

func LoadFromKey(key string, cfg any) error {
	return errors.Wrapf(viper.UnmarshalKey(key, cfg), "failed to load config by key %q", key)
}

// MustLoadFromKeyWithDefaults behaves like MustLoadFromKey, then fills every zero field of cfg from defaults.
func MustLoadFromKeyWithDefaults[T any](key string, cfg, defaults *T) {
	MustLoadFromKey(key, cfg)
	if err := mergo.Merge(cfg, defaults); err != nil {
		log.Panic(errors.Wrapf(err, "failed to merge defaults for key %q", key))
	}
}

// EnvPrefix turns an application yaml key like `self/api` into `SELF_API`, to be used for env var fallbacks.
func EnvPrefix(applicationYAMLKey string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", "/", "_").Replace(applicationYAMLKey))
}

// LookupEnv returns the first non-empty env var among `<PREFIX>_<name>` and `<name>`.
func LookupEnv(applicationYAMLKey, name string) string {
	if val := os.Getenv(fmt.Sprintf("%v_%v", EnvPrefix(applicationYAMLKey), name)); val != "" {
		return val
	}

	return os.Getenv(name)
}

func loadDotEnv() {
	dotEnvPath := `.env`
	for range dotEnvSearchDepth {
		if err := godotenv.Load(dotEnvPath); err == nil {
			return
		}
		dotEnvPath = fmt.Sprintf(`../%v`, dotEnvPath)
	}
}

func loadFirstApplicationConfigFile() {
	for _, f := range findAllApplicationConfigFiles() {
		viper.SetConfigFile(f)
		if err := viper.ReadInConfig(); err == nil {
			return
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Panic(err)
		}
	}

	log.Panic(errors.Errorf("could not find any %v files", applicationFileName))
}

func findAllApplicationConfigFiles() []string {
	var hints []string
	if p, err := os.Getwd(); err == nil {
		hints = append(hints, p)
	}
	if p, err := os.Executable(); err == nil {
		hints = append(hints, path.Dir(filepath.Join(p, "..")))
	}
	files := make([]string, 0, 2*len(hints)+2) //nolint:mnd // Two patterns per hint, plus the relative ones.
	for _, dir := range hints {
		files = append(files, glob(filepath.Join(dir, ".testdata", applicationFileName))...)
		files = append(files, glob(filepath.Join(dir, applicationFileName))...)
	}

	//nolint:dogsled // Only the file is relevant.
	_, callerFile, _, _ := runtime.Caller(0)
	files = append(files, glob(filepath.Join(filepath.Dir(callerFile), "..", applicationFileName))...)
	files = append(files, glob(filepath.Join(filepath.Dir(callerFile), "..", "..", applicationFileName))...)

	return files
}

func glob(pattern string) []string {
	files, err := filepath.Glob(pattern)
	if err != nil {
		log.Println(errors.Wrapf(err, "glob failed for [%v]", pattern))
	}

	return files
}
