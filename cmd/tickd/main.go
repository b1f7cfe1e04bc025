package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"tickd/internal/app"
	"tickd/internal/worker"
)

func main() {
	var (
		cfgPath    string
		connect    string
		pidPath    string
		workerMode bool
	)
	flag.StringVar(&cfgPath, "config", "./tickd.yaml", "path to config yaml/json")
	flag.StringVar(&connect, "connect", "", "target host:port (overrides config)")
	flag.StringVar(&pidPath, "pidfile", "", "write the process id to this file")
	flag.BoolVar(&workerMode, "worker", false, "run a single-task worker (descriptor JSON on stdin)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if workerMode {
		var d worker.Descriptor
		if err := json.NewDecoder(os.Stdin).Decode(&d); err != nil {
			fmt.Fprintln(os.Stderr, "fatal: read worker descriptor:", err)
			os.Exit(1)
		}
		if err := d.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "fatal:", err)
			os.Exit(1)
		}
		code, err := app.RunWorker(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "fatal:", err)
		}
		os.Exit(code)
	}

	a, err := app.New(app.Options{
		ConfigPath: cfgPath,
		Connect:    connect,
		PIDFile:    pidPath,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	code, err := a.Run(ctx)
	if err != nil && code != 0 {
		fmt.Fprintln(os.Stderr, "fatal:", err)
	}
	os.Exit(code)
}
