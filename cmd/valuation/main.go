package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	valuationcmd "github.com/louisbranch/appraisal/internal/cmd/valuation"
)

func main() {
	cfg, err := valuationcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[VALUATION] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := valuationcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
