package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	List    ListCmd    `cmd:"" help:"List the services and endpoints of a config file."`
	Call    CallCmd    `cmd:"" help:"Call an endpoint of a service and print the response body."`
}

// Globals are bound to every command's Run method.
type Globals struct {
	Stdout io.Writer
	Stderr io.Writer
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	_, err := io.WriteString(g.Stdout, Version()+"\n")
	return err
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("patman"),
		kong.Description("Call HTTP API endpoints declared in a YAML file."),
		kong.UsageOnError(),
	)
}

func main() {
	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	err = ctx.Run(&Globals{Stdout: os.Stdout, Stderr: os.Stderr})
	ctx.FatalIfErrorf(err)
}
