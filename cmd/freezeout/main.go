package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the freezeout server"`
	Bot     BotCmd           `cmd:"" help:"Connect bots to a server"`
	Keygen  KeygenCmd        `cmd:"" help:"Generate a new identity"`
	Account AccountCmd       `cmd:"" help:"Show balances from a server's ledger"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("freezeout"),
		kong.Description("Multiplayer no-limit hold'em server with Noise-secured sessions"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
