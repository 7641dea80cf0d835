package main

import (
	"flag"
	"os"

	"github.com/Calmarius/pogoproto/internal/app"
)

func main() {
	master := flag.String("master", "", "path to the GAME_MASTER dump")
	configPath := flag.String("config", "ranking_config.yaml", "path to the ranking config")
	outDir := flag.String("out", "output", "directory for the report files")
	serve := flag.Bool("serve", false, "serve the computed rankings over HTTP after the run")
	addr := flag.String("addr", ":8080", "listen address for -serve")
	flag.Parse()

	os.Exit(app.Run(app.Options{
		MasterPath: *master,
		ConfigPath: *configPath,
		OutDir:     *outDir,
		Serve:      *serve,
		Addr:       *addr,
	}))
}
