package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	shopcmd "github.com/louisbranch/feastly/internal/cmd/shop"
)

func main() {
	cfg, args, err := shopcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SHOP] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shopcmd.Run(ctx, cfg, args, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}
