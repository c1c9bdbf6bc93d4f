// Package tether follows a single USB tethering interface and reports its
// gateway IP when it comes up and goes away.
package tether

import (
	"context"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/system"
)

const (
	DefaultInterface    = "usb0"
	DefaultPollInterval = time.Second
	SysfsNetPath        = "/sys/class/net"
)

type State int

const (
	AwaitingConnect State = iota
	Connected
	AwaitingDisconnect
)

func (s State) String() string {
	switch s {
	case AwaitingConnect:
		return "awaiting-connect"
	case Connected:
		return "connected"
	case AwaitingDisconnect:
		return "awaiting-disconnect"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event is what a Callback receives. IP is the new gateway on connect and the
// last known one on disconnect.
type Event struct {
	Removed bool
	IP      string
}

type Callback func(removed bool, ip string)

// Sleeper blocks for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

type Monitor struct {
	iface    string
	interval time.Duration
	fs       system.FileSystem
	runner   system.Runner
	sleep    Sleeper
	callback Callback

	// state is only touched by the goroutine running Run.
	state State

	mu sync.RWMutex
	ip string
}

type Option func(*Monitor)

func WithInterface(iface string) Option {
	return func(m *Monitor) { m.iface = iface }
}

func WithPollInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

func WithFileSystem(fs system.FileSystem) Option {
	return func(m *Monitor) { m.fs = fs }
}

func WithRunner(r system.Runner) Option {
	return func(m *Monitor) { m.runner = r }
}

func WithSleeper(s Sleeper) Option {
	return func(m *Monitor) { m.sleep = s }
}

func New(callback Callback, opts ...Option) *Monitor {
	m := &Monitor{
		iface:    DefaultInterface,
		interval: DefaultPollInterval,
		fs:       system.OSFileSystem{},
		runner:   system.ExecRunner{},
		sleep:    sleepContext,
		callback: callback,
		state:    AwaitingConnect,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run polls the interface until ctx is cancelled and always returns ctx.Err().
func (m *Monitor) Run(ctx context.Context) error {
	log.Printf("[tether] Watching %s every %s", m.markerPath(), m.interval)
	for {
		if err := m.sleep(ctx, m.interval); err != nil {
			log.Println("[tether] Monitor stopping")
			return err
		}
		m.poll(ctx)
	}
}

// ConnectedIPs returns the gateway of the connected tether device, if any.
func (m *Monitor) ConnectedIPs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ip == "" {
		return nil
	}
	return []string{m.ip}
}

func (m *Monitor) State() State {
	return m.state
}

func (m *Monitor) poll(ctx context.Context) {
	present := m.fs.Exists(m.markerPath())
	switch m.state {
	case AwaitingConnect:
		if !present {
			return
		}
		log.Printf("[tether] Found USB tethering device %s", m.iface)
		ip, err := m.connect(ctx)
		if err != nil {
			log.Printf("[tether] %v, retrying on next poll", err)
			return
		}
		m.setIP(ip)
		m.state = Connected
		m.notify(false, ip)
		m.state = AwaitingDisconnect
	case AwaitingDisconnect:
		if present {
			return
		}
		ip := m.currentIP()
		log.Printf("[tether] USB tethering device %s disconnected (%s)", m.iface, ip)
		m.notify(true, ip)
		m.setIP("")
		m.state = AwaitingConnect
	}
}

func (m *Monitor) connect(ctx context.Context) (string, error) {
	if _, err := m.runner.Run(ctx, "dhclient", m.iface); err != nil {
		log.Printf("[tether] dhclient %s: %v", m.iface, err)
	}
	out, err := m.runner.Run(ctx, "ip", "route", "show", "0.0.0.0/0", "dev", m.iface)
	if err != nil {
		return "", fmt.Errorf("route lookup for %s failed: %w", m.iface, err)
	}
	ip, err := ParseGateway(out)
	if err != nil {
		return "", fmt.Errorf("route lookup for %s: %w", m.iface, err)
	}
	return ip, nil
}

func (m *Monitor) notify(removed bool, ip string) {
	if m.callback != nil {
		m.callback(removed, ip)
	}
}

func (m *Monitor) setIP(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ip = ip
}

func (m *Monitor) currentIP() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ip
}

func (m *Monitor) markerPath() string {
	return filepath.Join(SysfsNetPath, m.iface)
}

// ParseGateway extracts the gateway from the first line of
// `ip route show 0.0.0.0/0 dev <iface>`, i.e. its third field.
func ParseGateway(routes string) (string, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(routes), "\n")
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", fmt.Errorf("no default route in %q", line)
	}
	if net.ParseIP(fields[2]) == nil {
		return "", fmt.Errorf("invalid gateway %q", fields[2])
	}
	return fields[2], nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
