package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/config"
)

// skipConfig marks commands that run without loading settings.
const skipConfig = "skip-config"

// app is the state shared by all subcommands.
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings *config.Settings
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "labelkit",
		Short:         "Render, validate and serve label designs",
		Version:       labelkit.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return a.load(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: labelkit.yaml in ., $XDG_CONFIG_HOME/labelkit, /etc/labelkit)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newRenderCommand(a),
		newValidateCommand(a),
		newServeCommand(a),
		newConfigCommand(),
	)
	return root
}

// load reads the settings and installs the process logger.
func (a *app) load(stderr io.Writer) error {
	s, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.settings = s
	labelkit.SetLogger(newLogger(stderr, s.Log))
	if f := config.Used(a.v); f != "" {
		labelkit.Logger().Debug("config loaded", "file", f)
	}
	return nil
}

func newLogger(w io.Writer, ls config.LogSettings) *slog.Logger {
	s := config.Settings{Log: ls}
	opts := &slog.HandlerOptions{Level: s.SlogLevel()}
	if ls.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
