// Command within-agent-stub runs a simulated Within agent.
//
// It serves the agent's command contract, pushes events to a callback port
// the way a real agent does, and exits when it receives closeAgent. Payments
// always succeed. It is meant for trying out within-shell and for
// integration tests without a payment provider.
//
// Usage:
//
//	within-agent-stub [flags]
//
// Flags:
//
//	-addr string            Command listen address (default "127.0.0.1:9500")
//	-callback-host string   Host of the client's event listener (default "127.0.0.1")
//	-callback-port int      Port of the client's event listener, 0 disables events
//	-protocol string        Wire protocol: cbor, json (default "cbor")
//	-advertise              Advertise the agent via mDNS
//	-name string            Device name advertised via mDNS
//	-log-level string       Log level: debug, info, warn, error (default "info")
//	-protocol-log string    File for protocol event capture (CBOR format)
//
// Examples:
//
//	# Serve on the default port and push events to a shell on 9501
//	within-agent-stub -callback-port 9501
//
//	# Let shells on the network find the stub
//	within-agent-stub -addr 0.0.0.0:9500 -advertise -name kiosk
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

	"github.com/within-protocol/within-go/internal/agentstub"
	"github.com/within-protocol/within-go/pkg/discovery"
	withinlog "github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Version is reported in the mDNS TXT record.
const Version = "0.1.0"

// Config holds the command-line flags.
type Config struct {
	Addr         string
	CallbackHost string
	CallbackPort int
	Protocol     string
	Advertise    bool
	Name         string
	LogLevel     string
	ProtocolLog  string
}

var config Config

func init() {
	flag.StringVar(&config.Addr, "addr", "127.0.0.1:9500", "Command listen address")
	flag.StringVar(&config.CallbackHost, "callback-host", "127.0.0.1", "Host of the client's event listener")
	flag.IntVar(&config.CallbackPort, "callback-port", 0, "Port of the client's event listener, 0 disables events")
	flag.StringVar(&config.Protocol, "protocol", string(wire.DefaultProtocol), "Wire protocol: cbor, json")
	flag.BoolVar(&config.Advertise, "advertise", false, "Advertise the agent via mDNS")
	flag.StringVar(&config.Name, "name", "", "Device name advertised via mDNS")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.ProtocolLog, "protocol-log", "", "File for protocol event capture (CBOR format)")
}

func main() {
	flag.Parse()
	setupLogging(config.LogLevel)

	proto, err := wire.ParseProtocol(config.Protocol)
	if err != nil {
		log.Fatalf("Invalid protocol: %v", err)
	}
	codec, err := wire.CodecFor(proto)
	if err != nil {
		log.Fatalf("Invalid protocol: %v", err)
	}
	if config.CallbackPort < 0 || config.CallbackPort > 65535 {
		log.Fatalf("Invalid callback port: %d", config.CallbackPort)
	}

	stubCfg := agentstub.Config{
		Address: config.Addr,
		Codec:   codec,
		Logger:  slog.Default(),
	}
	if config.CallbackPort > 0 {
		stubCfg.CallbackAddress = net.JoinHostPort(config.CallbackHost, strconv.Itoa(config.CallbackPort))
	}

	var capture *withinlog.FileLogger
	if config.ProtocolLog != "" {
		capture, err = withinlog.NewFileLogger(config.ProtocolLog)
		if err != nil {
			log.Fatalf("Failed to create protocol logger: %v", err)
		}
		defer capture.Close()
		stubCfg.ProtocolLogger = capture
		log.Printf("Protocol logging to: %s", config.ProtocolLog)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agent := agentstub.New(stubCfg)
	if err := agent.Start(ctx); err != nil {
		log.Fatalf("Failed to start agent: %v", err)
	}

	log.Println("Within Agent Stub")
	log.Println("=================")
	log.Printf("Commands: %s (%s)", agent.Addr(), proto)
	if stubCfg.CallbackAddress != "" {
		log.Printf("Events:   %s", stubCfg.CallbackAddress)
	} else {
		log.Printf("Events:   disabled")
	}

	if config.Advertise {
		adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{})
		info := &discovery.AgentInfo{
			Port:       agent.Port(),
			Protocol:   proto,
			Version:    Version,
			DeviceName: config.Name,
			UID:        agent.Device().UID,
		}
		if err := adv.Advertise(info); err != nil {
			log.Printf("Warning: Failed to advertise: %v", err)
		} else {
			defer adv.Stop()
			log.Printf("Advertising %s via mDNS", discovery.ServiceTypeAgent)
		}
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case <-agent.Closed():
		log.Println("closeAgent received, shutting down...")
	}

	if err := agent.Stop(); err != nil {
		log.Printf("Error stopping agent: %v", err)
	}
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
	}
}
