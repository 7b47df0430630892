// Package cmd contains all the commands included in the binary file.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	datastoreEngineFlag = "datastore-engine"
	datastoreEngineConf = "datastore.engine"
	datastoreURIFlag    = "datastore-uri"
	datastoreURIConf    = "datastore.uri"
)

// NewRootCommand enables all children commands to read flags from CLI
// flags, environment variables prefixed with CIRCLEVIS, or config.yaml
// (in that order).
func NewRootCommand() *cobra.Command {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("CIRCLEVIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	configPaths := []string{"/etc/circlevis", "$HOME/.circlevis", "."}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetDefault(datastoreEngineFlag, "")
	viper.SetDefault(datastoreURIFlag, "")
	err := viper.ReadInConfig()
	if err == nil {
		viper.SetDefault(datastoreEngineFlag, viper.Get(datastoreEngineConf))
		viper.SetDefault(datastoreURIFlag, viper.Get(datastoreURIConf))
	}

	return &cobra.Command{
		Use:   "circlevis",
		Short: "A privacy-aware visibility resolution and read caching service for profiles, circles and albums",
		Long: `A privacy-aware visibility resolution and read caching service for profiles, circles and albums.

circlevis answers "may this viewer see this resource" for the social graph of
a photo sharing application, caching decisions per viewer and invalidating
them as relationships change.`,
	}
}
