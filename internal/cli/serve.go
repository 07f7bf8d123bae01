package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/obsidianstack/valvecalc/internal/config"
	"github.com/obsidianstack/valvecalc/internal/logging"
	"github.com/obsidianstack/valvecalc/internal/server"
)

type ServeOptions struct {
	GlobalOptions

	Version string
	Watch   bool
}

func DefaultServeOptions(version string) *ServeOptions {
	return &ServeOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Version:       version,
		Watch:         true,
	}
}

func NewCmdServe(version string) *cobra.Command {
	o := DefaultServeOptions(version)
	cmd := &cobra.Command{
		Use:   "serve [--config path]",
		Short: "Serve the web form, REST API, websocket and gRPC calculator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ServeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.BoolVar(&o.Watch, "watch", o.Watch, "Reload calculator and logging settings when the config file changes")
}

func (o *ServeOptions) Complete(cmd *cobra.Command, args []string) error {
	return o.GlobalOptions.Complete(cmd, args)
}

func (o *ServeOptions) Validate(args []string) error {
	return o.GlobalOptions.Validate(args)
}

func (o *ServeOptions) Run(ctx context.Context) error {
	cfg, err := o.LoadConfig()
	if err != nil {
		return err
	}
	if _, err := logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}

	slog.Info("valvecalc server starting",
		"version", o.Version,
		"config", o.ConfigFile,
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"default_decimals", cfg.Calculator.DefaultDecimals,
		"max_machines", cfg.Calculator.MaxMachines,
	)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	holder := config.NewHolder(cfg)
	srv, err := server.New(holder, o.Version)
	if err != nil {
		return err
	}

	// Ports, auth and CORS are bound at startup; reloads update the
	// calculator limits through the holder and logging here.
	if o.Watch && o.ConfigFile != "" {
		go func() {
			if err := config.Watch(ctx, o.ConfigFile, holder, func(updated *config.Config) {
				if _, err := logging.Setup(os.Stdout, updated.Logging.Level, updated.Logging.Format); err != nil {
					slog.Error("config: logging not updated", "err", err)
				}
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	return srv.Run(ctx)
}
