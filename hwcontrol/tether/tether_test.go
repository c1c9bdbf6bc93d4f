package tether

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// scriptedFS reports the interface present according to a fixed script.
type scriptedFS struct {
	presence []bool
	polls    int
}

func (f *scriptedFS) Exists(path string) bool {
	p := f.presence[f.polls]
	f.polls++
	return p
}

func (f *scriptedFS) ReadDir(string) ([]string, error) { return nil, nil }

type fakeRunner struct {
	routes   []string
	dhclient int
	calls    []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	switch name {
	case "dhclient":
		r.dhclient++
		return "", nil
	case "ip":
		if len(r.routes) == 0 {
			return "", errors.New("no route")
		}
		out := r.routes[0]
		r.routes = r.routes[1:]
		return out, nil
	}
	return "", errors.New("unexpected command")
}

// scriptSleeper lets the monitor poll once per scripted presence value, then stops it.
func scriptSleeper(fs *scriptedFS) Sleeper {
	return func(ctx context.Context, _ time.Duration) error {
		if fs.polls >= len(fs.presence) {
			return context.Canceled
		}
		return nil
	}
}

func runScript(t *testing.T, presence []bool, routes []string) ([]Event, *Monitor, *fakeRunner) {
	t.Helper()
	fs := &scriptedFS{presence: presence}
	runner := &fakeRunner{routes: routes}
	var events []Event
	m := New(
		func(removed bool, ip string) {
			events = append(events, Event{Removed: removed, IP: ip})
		},
		WithFileSystem(fs),
		WithRunner(runner),
		WithSleeper(scriptSleeper(fs)),
	)
	if err := m.Run(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	return events, m, runner
}

func TestMonitor_ConnectDisconnectConnect(t *testing.T) {
	events, m, runner := runScript(t,
		[]bool{true, false, true},
		[]string{
			"default via 192.168.42.129 dev usb0 proto dhcp metric 100\n",
			"default via 172.20.10.1 dev usb0\n",
		},
	)

	want := []Event{
		{Removed: false, IP: "192.168.42.129"},
		{Removed: true, IP: "192.168.42.129"},
		{Removed: false, IP: "172.20.10.1"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events %v, want %v", len(events), events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
	if m.State() != AwaitingDisconnect {
		t.Errorf("state = %s, want %s", m.State(), AwaitingDisconnect)
	}
	if ips := m.ConnectedIPs(); len(ips) != 1 || ips[0] != "172.20.10.1" {
		t.Errorf("ConnectedIPs = %v", ips)
	}
	if runner.dhclient != 2 {
		t.Errorf("dhclient ran %d times, want 2", runner.dhclient)
	}
}

func TestMonitor_StaysQuietWhileAbsent(t *testing.T) {
	events, m, runner := runScript(t, []bool{false, false, false}, nil)
	if len(events) != 0 {
		t.Errorf("unexpected events %v", events)
	}
	if len(runner.calls) != 0 {
		t.Errorf("unexpected commands %v", runner.calls)
	}
	if m.State() != AwaitingConnect {
		t.Errorf("state = %s", m.State())
	}
	if ips := m.ConnectedIPs(); ips != nil {
		t.Errorf("ConnectedIPs = %v, want none", ips)
	}
}

func TestMonitor_RetriesFailedRouteLookup(t *testing.T) {
	events, m, runner := runScript(t,
		[]bool{true, true, true, false},
		[]string{
			"",
			"default via 10.42.0.1 dev usb0\n",
		},
	)

	want := []Event{
		{Removed: false, IP: "10.42.0.1"},
		{Removed: true, IP: "10.42.0.1"},
	}
	if len(events) != len(want) {
		t.Fatalf("got events %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
	if runner.dhclient != 2 {
		t.Errorf("dhclient ran %d times, want 2", runner.dhclient)
	}
	if m.ConnectedIPs() != nil {
		t.Errorf("IP should be cleared after disconnect, got %v", m.ConnectedIPs())
	}
}

func TestMonitor_DisconnectBeforeResolution(t *testing.T) {
	events, m, _ := runScript(t, []bool{true, false}, nil)
	if len(events) != 0 {
		t.Errorf("unexpected events %v", events)
	}
	if m.State() != AwaitingConnect {
		t.Errorf("state = %s", m.State())
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := New(nil, WithPollInterval(time.Hour))
	if err := m.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}
}

func TestParseGateway(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "default via 192.168.42.129 dev usb0 proto dhcp src 192.168.42.10 metric 100\n", want: "192.168.42.129"},
		{in: "default via fe80::1 dev usb0 proto ra\n", want: "fe80::1"},
		{in: "default via 10.0.0.1 dev usb0\ndefault via 10.0.0.2 dev usb0\n", want: "10.0.0.1"},
		{in: "", wantErr: true},
		{in: "default dev usb0", wantErr: true},
		{in: "default via gateway dev usb0", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseGateway(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGateway(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGateway(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	if AwaitingConnect.String() != "awaiting-connect" || State(9).String() != "state(9)" {
		t.Error("unexpected state names")
	}
}
