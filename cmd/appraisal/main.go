package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	appraisalcmd "github.com/louisbranch/appraisal/internal/cmd/appraisal"
)

// main values one property or a batch and prints the result.
func main() {
	cfg, err := appraisalcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[APPRAISAL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	streams := appraisalcmd.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	if err := appraisalcmd.Run(ctx, cfg, streams); err != nil {
		if errors.Is(err, appraisalcmd.ErrInvalidAttributes) {
			stop()
			os.Exit(1)
		}
		log.Fatalf("failed to appraise: %v", err)
	}
}
