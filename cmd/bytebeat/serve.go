package main

import (
	"flag"

	"bytebeat/pkg/config"
	"bytebeat/pkg/server"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (default "+config.DefaultPath+")")
	addr := fs.String("addr", "", "listen address (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	flush, err := server.InitSentry(cfg.SentryDSN)
	if err != nil {
		return err
	}
	defer flush()

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return srv.ListenAndServe(ctx)
}
