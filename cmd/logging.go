package cmd

import (
	"github.com/achilleasa/ashtrace/log"
	"github.com/urfave/cli"
)

var logger = log.New("ashtrace")

// Set the log level from the global flags. The -v and -vv flags take
// precedence over --log-level.
func setupLogging(ctx *cli.Context) error {
	level, err := log.ParseLevel(ctx.GlobalString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
	return nil
}
