package utils

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LoadConfig reads <path>/.env into the process environment, without
// overriding variables that are already set, and lets viper resolve keys
// such as "app_debug" against APP_DEBUG.
func LoadConfig(path string) {
	envFile := filepath.Join(path, ".env")
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logrus.WithError(err).Warnf("[CONFIG] Could not read %s", envFile)
		}
	} else {
		logrus.Debugf("[CONFIG] Loaded %s", envFile)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}
