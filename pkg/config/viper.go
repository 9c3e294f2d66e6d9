package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load builds a viper instance for the engine. It looks for
// <name>.yaml under path (plus the working directory and ./config),
// with every key overridable through environment variables where dots
// become underscores, e.g. REDIS_ADDRESS for redis.address.
//
// A missing config file is not an error; container deployments run on
// env vars and defaults alone.
func Load(path, name string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	for _, p := range []string{path, ".", "./config"} {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config %s: %w", name, err)
	}
	return v, nil
}
