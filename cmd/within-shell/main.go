// Command within-shell is an interactive shell for a Within agent.
//
// It opens a session to the agent, optionally spawning the agent first or
// locating it over mDNS, and offers commands for the consumer purchase flow
// and a simple producer.
//
// Usage:
//
//	within-shell [flags]
//
// Flags:
//
//	-config string         YAML configuration file
//	-host string           Agent host (overrides the file)
//	-port int              Agent command port (overrides the file)
//	-callback-port int     Local event listener port, 0 disables events
//	-protocol string       Wire protocol: cbor, json
//	-agent string          Agent binary to spawn and supervise
//	-locate                Locate the agent via mDNS before connecting
//	-locate-name string    Device name to locate (default: any agent)
//	-log-level string      Log level: debug, info, warn, error (default "info")
//	-protocol-log string   File for protocol event capture (CBOR format)
//
// Examples:
//
//	# Connect to an agent already running on the default port
//	within-shell
//
//	# Spawn the stub agent and receive its events on port 9501
//	within-shell -agent within-agent-stub -callback-port 9501
//
//	# Find an advertised agent on the local network
//	within-shell -locate -locate-name kiosk
//
// Interactive Commands:
//
//	setup                 - Configure the agent's device
//	services              - List the device's services
//	status                - Show session status
//	find [timeout]        - Discover producer devices
//	consume [device-name] - Buy a service from a producer
//	produce start|stop    - Offer the configured service
//	quit                  - Exit the shell
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/within-protocol/within-go/cmd/within-shell/interactive"
	"github.com/within-protocol/within-go/pkg/config"
	"github.com/within-protocol/within-go/pkg/discovery"
	withinlog "github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/session"
	"github.com/within-protocol/within-go/pkg/supervisor"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Config holds the command-line flags.
type Config struct {
	ConfigFile   string
	Host         string
	Port         int
	CallbackPort int
	Protocol     string
	Agent        string
	Locate       bool
	LocateName   string
	LogLevel     string
	ProtocolLog  string
}

var flags Config

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "YAML configuration file")
	flag.StringVar(&flags.Host, "host", "", "Agent host (overrides the file)")
	flag.IntVar(&flags.Port, "port", 0, "Agent command port (overrides the file)")
	flag.IntVar(&flags.CallbackPort, "callback-port", 0, "Local event listener port, 0 disables events")
	flag.StringVar(&flags.Protocol, "protocol", "", "Wire protocol: cbor, json")
	flag.StringVar(&flags.Agent, "agent", "", "Agent binary to spawn and supervise")
	flag.BoolVar(&flags.Locate, "locate", false, "Locate the agent via mDNS before connecting")
	flag.StringVar(&flags.LocateName, "locate-name", "", "Device name to locate (default: any agent)")
	flag.StringVar(&flags.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.ProtocolLog, "protocol-log", "", "File for protocol event capture (CBOR format)")
}

func main() {
	flag.Parse()
	setupLogging(flags.LogLevel)
	logger := slog.Default()

	file, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := applyFlags(file); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.Locate {
		if err := locateAgent(ctx, file, logger); err != nil {
			log.Fatalf("Failed to locate agent: %v", err)
		}
	}

	cfg := file.SessionConfig()
	hooks := session.NewShutdownHooks(ctx, logger)
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithShutdownHooks(hooks),
	}

	var capture *withinlog.FileLogger
	if flags.ProtocolLog != "" {
		capture, err = withinlog.NewFileLogger(flags.ProtocolLog)
		if err != nil {
			log.Fatalf("Failed to create protocol logger: %v", err)
		}
		hooks.Register("protocol log", capture.Close)
		opts = append(opts, session.WithProtocolLogger(capture))
		log.Printf("Protocol logging to: %s", flags.ProtocolLog)
	}

	if file.Agent.Binary != "" {
		supCfg := supervisor.Config{
			Binary:       file.Agent.Binary,
			Args:         file.Agent.Args,
			ReadyAddress: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			ReadyTimeout: cfg.ReadyTimeout,
			Stdout:       os.Stderr,
			Stderr:       os.Stderr,
			Logger:       logger,
		}
		// Only set when non-nil to avoid a typed-nil interface.
		if capture != nil {
			supCfg.ProtocolLogger = capture
		}
		sup := supervisor.New(supCfg)
		opts = append(opts, session.WithSupervisor(sup))
		log.Printf("Spawning agent: %s", file.Agent.Binary)
	}

	printBanner(cfg)

	s, err := session.Open(ctx, &cfg, opts...)
	if err != nil {
		hooks.Run()
		log.Fatalf("Failed to open session: %v", err)
	}
	log.Printf("Session %s connected", s.ID())
	if addr := s.CallbackAddr(); addr != nil {
		log.Printf("Listening for agent events on %s", addr)
	}

	sh, err := interactive.New(s, file)
	if err != nil {
		hooks.Run()
		log.Fatalf("Failed to create interactive shell: %v", err)
	}
	// Route log output through readline so it does not clobber the prompt.
	log.SetOutput(sh.Stdout())
	go sh.Run(ctx, stop)

	<-ctx.Done()
	log.Println("Shutting down...")

	hooks.Run()
	log.Println("Goodbye!")
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "warn":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
}

func loadConfig() (*config.File, error) {
	if flags.ConfigFile == "" {
		return config.Default(), nil
	}
	return config.Load(flags.ConfigFile)
}

// applyFlags overlays the flags that were set on the command line.
func applyFlags(file *config.File) error {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["host"] {
		file.Agent.Host = flags.Host
	}
	if set["port"] {
		file.Agent.Port = flags.Port
	}
	if set["callback-port"] {
		file.Agent.CallbackPort = flags.CallbackPort
	}
	if set["protocol"] {
		file.Agent.Protocol = flags.Protocol
	}
	if set["agent"] {
		file.Agent.Binary = flags.Agent
		if file.Agent.ReadyTimeout == 0 {
			file.Agent.ReadyTimeout = config.DefaultReadyTimeout
		}
	}
	return file.Validate()
}

func locateAgent(ctx context.Context, file *config.File, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, discovery.DefaultBrowseTimeout)
	defer cancel()

	log.Printf("Locating agent via mDNS...")
	svc, err := discovery.NewBrowser(discovery.BrowserConfig{}, logger).Locate(ctx, flags.LocateName)
	if err != nil {
		return err
	}
	host, port, err := net.SplitHostPort(svc.Address())
	if err != nil {
		return err
	}
	file.Agent.Host = host
	file.Agent.Port, _ = strconv.Atoi(port)
	file.Agent.Protocol = string(svc.Protocol)
	log.Printf("Found agent %q (%s) at %s", svc.DeviceName, svc.InstanceName, svc.Address())
	return file.Validate()
}

func printBanner(cfg session.Config) {
	log.Println("Within Shell")
	log.Println("============")
	log.Printf("Agent:    %s:%d", cfg.Host, cfg.Port)
	log.Printf("Protocol: %s", protocolName(cfg.Protocol))
	if cfg.CallbackPort > 0 {
		log.Printf("Events:   port %d", cfg.CallbackPort)
	} else {
		log.Printf("Events:   disabled")
	}
	if cfg.ReadyTimeout > 0 {
		log.Printf("Ready:    wait up to %s", cfg.ReadyTimeout.Round(time.Millisecond))
	}
	log.Println()
}

func protocolName(p wire.Protocol) string {
	if p == "" {
		return string(wire.DefaultProtocol)
	}
	return string(p)
}
