package main

import (
	"flag"
	"fmt"
	"os"

	"studioops/atelier-pms/internal/api"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	confPath := flag.String("config", ".env", "path to the environment config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("atelier-pms %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	api.InitAndServe(*confPath)
}
