package main

import (
	"github.com/robotalks/uartsync/pkg/cli/sh"
	"github.com/robotalks/uartsync/pkg/config"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
