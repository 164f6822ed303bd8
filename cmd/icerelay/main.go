// icerelay is a minimal Icecast-compatible streaming relay: one
// SOURCE per mountpoint, fanned out to any number of GET subscribers.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/icerelay/icerelay/internal/config"
	"github.com/icerelay/icerelay/internal/relay"
	"github.com/icerelay/icerelay/internal/server"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "Path to a VIBE configuration file (optional)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("icerelay %s\n", version)
		os.Exit(0)
	}

	logger := log.New(os.Stdout, "[icerelay] ", log.LstdFlags)

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			logger.Fatalf("failed to load configuration: %v", err)
		}
		cfg = loaded
	}

	registry := relay.NewRegistry()
	registerConfiguredMounts(registry, cfg)

	auth := relay.NewAuthPolicy(cfg.AdminAuthorization)
	connector := relay.NewConnector(registry, auth, cfg.AllowUnauthenticatedMounts, logger)

	var static server.StaticFiles
	if cfg.StaticSourceDir != nil {
		static = server.NewDirStatic(*cfg.StaticSourceDir, logger)
	}
	dispatcher := server.NewDispatcher(connector, registry, auth, cfg, static, logger)

	reaper := relay.NewReaper(registry, logger)
	go reaper.Run()

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		logger.Fatalf("failed to listen on %s: %v", cfg.ListenAddress, err)
	}
	logger.Printf("icerelay listening on %s", cfg.ListenAddress)

	go acceptLoop(listener, dispatcher, logger)

	waitForShutdown(logger, reaper, listener)
}

// registerConfiguredMounts implements the §12 startup-registration
// supplement: configured mounts are inserted as unconnected placeholders
// before the listener starts accepting. Each keeps its configured
// permanent flag; one configured without it is non-permanent, so the
// reaper removes it on its first tick unless a source has attached.
func registerConfiguredMounts(registry *relay.Registry, cfg *config.Config) {
	for path, mc := range cfg.Mounts {
		mount := relay.NewMount(path, mc.Permanent, mc.SourceAuth, mc.SubAuth, mc.StreamURL)
		registry.AddMount(path, mount)
	}
}

// acceptLoop implements §6.3: any accept error is logged and
// accepting resumes on the next connection.
func acceptLoop(listener net.Listener, dispatcher *server.Dispatcher, logger *log.Logger) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Printf("accept error: %v", err)
			continue
		}
		go func() {
			defer conn.Close()
			dispatcher.Handle(conn)
		}()
	}
}

func waitForShutdown(logger *log.Logger, reaper *relay.Reaper, listener net.Listener) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Printf("received %v, shutting down", sig)

	reaper.Stop()
	_ = listener.Close()
}
