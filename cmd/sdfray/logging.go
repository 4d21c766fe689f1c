package main

import (
	"github.com/soypat/sdfray/log"
	"github.com/urfave/cli"
)

var logger = log.New("sdfray")

func setupLogging(ctx *cli.Context) {
	verbose := 0
	switch {
	case ctx.GlobalBool("vv"):
		verbose = 2
	case ctx.GlobalBool("v"):
		verbose = 1
	}
	log.SetLevel(log.Verbosity(verbose))
}
