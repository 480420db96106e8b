package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adelrodriguez/sakuga/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the sakuga configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented default config",
	Long: `Write a config file holding every setting at its default, with comments.
The file goes to .sakuga/config.yaml unless a path is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := localConfigPath
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one value in the config file",
	Long: `Set one dotted key, such as style.theme, in the config file in use,
keeping the comments of the rest of the file. Without a config file the value
goes to .sakuga/config.yaml.`,
	Example: `  sakuga config set style.theme dracula
  sakuga config set render.fps 60`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !knownKey(key) {
			return fmt.Errorf("%w: %q (see 'sakuga config init' for every key)", config.ErrInvalidKey, key)
		}
		path := configTarget()
		if err := config.SaveValue(path, key, value); err != nil {
			return err
		}

		// Reject values that would leave the file unusable.
		v := viper.New()
		if err := loadConfig(v, path); err != nil {
			return err
		}
		c, err := decodeConfig(v)
		if err != nil {
			return err
		}
		if err := config.Validate(c); err != nil {
			return fmt.Errorf("%s now holds an invalid configuration: %w", path, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configErr != nil {
			return configErr
		}
		path := viper.GetViper().ConfigFileUsed()
		if path == "" {
			return errors.New("no config file found (create one with 'sakuga config init')")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configTarget is the file config set writes to.
func configTarget() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.GetViper().ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			return used
		}
	}
	return localConfigPath
}

func knownKey(key string) bool {
	v := viper.New()
	setDefaults(v)
	return slices.Contains(v.AllKeys(), key)
}
