package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/obsidianstack/valvecalc/internal/config"
)

// GlobalOptions are shared by every subcommand.
type GlobalOptions struct {
	ConfigFile string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFile, "config", "c", o.ConfigFile, "Path to config.yaml (optional; VALVECALC_* env vars still apply)")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return nil
}

// LoadConfig loads the config file, or defaults plus environment when no
// file was given.
func (o *GlobalOptions) LoadConfig() (*config.Config, error) {
	return config.Load(o.ConfigFile)
}
