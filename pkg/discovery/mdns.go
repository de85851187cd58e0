package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser publishes one agent endpoint with zeroconf.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser. Nothing is published until Advertise.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

func interfacesFor(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise publishes info, replacing any earlier advertisement.
func (a *Advertiser) Advertise(info *AgentInfo) error {
	if info.Port < 1 || info.Port > 65535 {
		return ErrInvalidPort
	}
	name := instanceName(info)
	if err := ValidateInstanceName(name); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		name,
		ServiceTypeAgent,
		Domain,
		info.Port,
		TXTRecordsToStrings(EncodeAgentTXT(info)),
		interfacesFor(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register agent service: %w", err)
	}
	a.server = server
	return nil
}

// Stop withdraws the advertisement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// Browser finds advertised agents.
type Browser struct {
	config BrowserConfig
	logger *slog.Logger
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig, logger *slog.Logger) *Browser {
	return &Browser{config: config, logger: logger}
}

// Browse emits each agent once, when first seen, until ctx is done. Entries
// with unusable TXT records are skipped. The channel is closed when
// browsing ends.
func (b *Browser) Browse(ctx context.Context) (<-chan *AgentService, error) {
	out := make(chan *AgentService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := interfacesFor(b.config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	go func() {
		defer close(out)
		seen := make(map[string]bool)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc, err := entryToAgent(entry)
				if err != nil {
					if b.logger != nil {
						b.logger.Debug("discovery: skipping entry", "instance", entry.Instance, "error", err)
					}
					continue
				}
				if seen[svc.InstanceName] {
					continue
				}
				seen[svc.InstanceName] = true
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}
			case entry, ok := <-removed:
				if ok {
					delete(seen, entry.Instance)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		if err := zeroconf.Browse(ctx, ServiceTypeAgent, Domain, entries, removed, opts...); err != nil && b.logger != nil {
			b.logger.Debug("discovery: browse failed", "error", err)
		}
	}()

	return out, nil
}

// Locate returns the first agent whose device name is name, or the first
// agent at all when name is empty. Without a ctx deadline the search is
// bounded by DefaultBrowseTimeout.
func (b *Browser) Locate(ctx context.Context, name string) (*AgentService, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultBrowseTimeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	found, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for svc := range found {
		if name == "" || svc.DeviceName == name {
			return svc, nil
		}
	}
	if name == "" {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func entryToAgent(entry *zeroconf.ServiceEntry) (*AgentService, error) {
	info, err := DecodeAgentTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &AgentService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         entry.Port,
		Addresses:    addrs,
		Protocol:     info.Protocol,
		Version:      info.Version,
		DeviceName:   info.DeviceName,
		UID:          info.UID,
	}, nil
}
