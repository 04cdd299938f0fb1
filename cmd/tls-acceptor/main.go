package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/grepplabs/tls-acceptor/cmd/tls-acceptor/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug     bool              `help:"Enable debug logging."`
		LogFormat string            `help:"Log format." default:"text" enum:"text,json"`
		Version   kong.VersionFlag  `help:"Print version and exit."`
		Check     commands.CheckCmd `cmd:"" help:"Validate a PEM certificate and key and print the acceptor settings."`
		Serve     commands.ServeCmd `cmd:"" help:"Serve HTTPS with the acceptor built from a PEM certificate and key."`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("tls-acceptor"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Logger: commands.NewLogger(os.Stderr, cli.LogFormat, cli.Debug),
		Stdout: os.Stdout,
	})
	cmd.FatalIfErrorf(err)
}
