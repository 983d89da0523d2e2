package netid

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// Defaults matching the GhostHub deployment topology. The route probe
// target never receives a packet; dialing UDP only asks the routing
// layer which local address it would use.
const DefaultRouteProbeAddr = "8.8.8.8:80"

// DefaultAccessPointPrefix is the GhostHub access-point subnet.
var DefaultAccessPointPrefix = netip.MustParsePrefix("192.168.4.0/24")

// ErrNoRoute indicates no local address could be resolved, e.g. when no
// network interface is up.
var ErrNoRoute = errors.New("no local network route available")

// Identity resolves the host's outward-facing local address and
// classifies it against a known access-point subnet. It is stateless;
// every call resolves the address fresh.
type Identity struct {
	probeAddr string
	apPrefix  netip.Prefix
}

// New creates an Identity. Empty probeAddr and zero prefix fall back to
// the GhostHub defaults.
func New(probeAddr string, apPrefix netip.Prefix) *Identity {
	if probeAddr == "" {
		probeAddr = DefaultRouteProbeAddr
	}
	if !apPrefix.IsValid() {
		apPrefix = DefaultAccessPointPrefix
	}
	return &Identity{probeAddr: probeAddr, apPrefix: apPrefix}
}

// LocalAddress returns the local IP the routing layer would use for
// outbound traffic. No packets are sent.
func (id *Identity) LocalAddress() (netip.Addr, error) {
	conn, err := net.Dial("udp", id.probeAddr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}
	defer func() { _ = conn.Close() }()

	udp, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return netip.Addr{}, ErrNoRoute
	}
	addr, ok := netip.AddrFromSlice(udp.IP)
	if !ok {
		return netip.Addr{}, ErrNoRoute
	}
	return addr.Unmap(), nil
}

// OnAccessPointSubnet reports whether the local address falls inside the
// access-point subnet. Advisory only: any resolution failure yields
// false, never an error.
func (id *Identity) OnAccessPointSubnet() bool {
	addr, err := id.LocalAddress()
	if err != nil {
		return false
	}
	return id.apPrefix.Contains(addr)
}
