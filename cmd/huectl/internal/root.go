package internal

import (
	"fmt"
	"path"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ngerakines/huectl"
	"github.com/ngerakines/huectl/client"
)

const usage = `Usage:
  huectl help
  huectl setup
  huectl list
  huectl discover
  huectl <device-id> on|off
  huectl <device-id> brightness <0-255>
  huectl <device-id> color <color>
  huectl <device-id> color <r> <g> <b>
  huectl <device-id> color random

Colors: red, green, blue, lime, yellow, cyan, purple, a #rrggbb value,
or any name from the palette section of the settings file.`

// NewRootCmd builds the command tree with its own settings, so every
// invocation starts from the defaults.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var settingsFile string

	rootCmd := &cobra.Command{
		Use:           "huectl",
		Short:         "huectl controls the lights attached to a Philips Hue bridge.",
		Long:          "huectl controls the lights attached to a Philips Hue bridge.\n\n" + usage,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig(v, settingsFile)
			return initLogging(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runDevice(cmd, v, args)
		},
	}
	// Flags end at the device id so that "1 brightness -5" reaches the range check.
	rootCmd.Flags().SetInterspersed(false)

	flags := rootCmd.PersistentFlags()
	flags.String("config", huectl.DefaultConfigPath, "file holding the bridge URL and user")
	flags.StringVar(&settingsFile, "settings", "", "settings file (default is ./huectl.yaml)")
	flags.Duration("timeout", client.DefaultTimeout, "timeout for requests to the bridge")
	flags.BoolP("verbose", "v", false, "log debug information to stderr")

	v.BindPFlag("config", flags.Lookup("config"))
	v.BindPFlag("bridge.timeout", flags.Lookup("timeout"))
	v.BindPFlag("log.verbose", flags.Lookup("verbose"))

	v.SetDefault("log.level", "warn")
	v.SetDefault("bridge.devicetype", "")
	v.SetDefault("pairing.max_attempts", 0)
	v.SetDefault("discovery.timeout", 3*time.Second)
	v.SetDefault("discovery.cloud", true)

	v.AutomaticEnv()
	v.SetEnvPrefix("HUECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newListCmd(v))
	rootCmd.AddCommand(newSetupCmd(v))
	rootCmd.AddCommand(newDiscoverCmd(v))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of huectl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "huectl v1.0.0 -- HEAD")
		},
	}
}

func initConfig(v *viper.Viper, settingsFile string) {
	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(path.Join(home, ".huectl"))
		}
		v.AddConfigPath("/etc/huectl/")
		v.SetConfigName("huectl")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || settingsFile != "" {
			log.WithError(err).Warn("Can't read settings.")
		}
	}
}

func initLogging(cmd *cobra.Command, v *viper.Viper) error {
	log.SetOutput(cmd.ErrOrStderr())
	if v.GetBool("log.verbose") {
		log.SetLevel(log.DebugLevel)
		return nil
	}
	level, err := log.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q", v.GetString("log.level"))
	}
	log.SetLevel(level)
	return nil
}
