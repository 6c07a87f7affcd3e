package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wardenproxy/warden/internal/config"
	"github.com/wardenproxy/warden/internal/gateway"
	"github.com/wardenproxy/warden/internal/logz"
	"github.com/wardenproxy/warden/internal/mccrypto"
)

const banner = `
╔═══════════════════════════════════════════════════════════════╗
║                        WARDEN v0.1.0                          ║
║            Minecraft Java Edition reverse proxy                ║
╚═══════════════════════════════════════════════════════════════╝
`

func main() {
	configFile := flag.String("config", "settings.toml", "Configuration file path (TOML)")
	version := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *version {
		fmt.Println("Warden v0.1.0")
		return
	}

	fmt.Print(banner)

	cfg, err := loadOrInitConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	keys, err := mccrypto.GenerateKeyPair()
	if err != nil {
		log.Fatalf("Failed to generate RSA keypair: %v", err)
	}

	srv := gateway.New(cfg, keys)

	logz.Info("compression_threshold=%d online_mode=%v player_forward_mode=%s",
		cfg.Proxy.CompressionThreshold, cfg.Proxy.OnlineMode, cfg.Proxy.PlayerForwardMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logz.Info("shutting down")
		cancel()
		srv.Close()
		<-serveErr
	case err := <-serveErr:
		if err != nil {
			log.Fatalf("Gateway exited: %v", err)
		}
	}

	logz.Info("shutdown complete")
}

// loadOrInitConfig loads path, writing the default configuration to disk if
// it's missing — a first-run template operators then edit.
func loadOrInitConfig(path string) (*config.Config, error) {
	cfg, unknownKeys, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logz.Warn("%s not found, writing defaults", path)
			cfg = config.Default()
			if saveErr := config.Save(path, cfg); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	for _, key := range unknownKeys {
		logz.Warn("unrecognized configuration key: %s", key)
	}

	return cfg, nil
}
