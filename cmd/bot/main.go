package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/valpere/govorun/internal/bot"
	"github.com/valpere/govorun/internal/config"
	"github.com/valpere/govorun/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *versionFlag {
		info := version.GetInfo()
		fmt.Println(info.String())
		os.Exit(0)
	}

	log.Printf("Starting Govorun v%s", version.Version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	govorunBot, err := bot.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	go func() {
		if err := govorunBot.Start(ctx); err != nil {
			log.Fatalf("Failed to start bot: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down Govorun...")
	cancel()

	if err := govorunBot.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Govorun stopped gracefully")
}
