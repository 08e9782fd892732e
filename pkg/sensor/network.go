package sensor

import (
	"context"
	"net/netip"
	"os"
	"path/filepath"
	"slices"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/net"
)

// DefaultSysfsNetRoot is where Linux exposes network interfaces.
const DefaultSysfsNetRoot = "/sys/class/net"

var virtualPrefixes = []string{
	"lo", "veth", "br-", "docker", "virbr", "vxlan", "cni", "flannel",
	"tun", "tap", "wg", "tailscale", "zt", "vnet",
}

// Network finds the active link and classifies it as wired or wifi.
type Network struct {
	sysfsRoot  string
	interfaces func(ctx context.Context) (net.InterfaceStatList, error)
}

// NewNetwork returns a Network reader. sysfsRoot is normally
// DefaultSysfsNetRoot.
func NewNetwork(sysfsRoot string) *Network {
	if sysfsRoot == "" {
		sysfsRoot = DefaultSysfsNetRoot
	}
	return &Network{
		sysfsRoot:  sysfsRoot,
		interfaces: net.InterfacesWithContext,
	}
}

// Sample implements Sampler. A wired link wins over wifi when both are up.
func (n *Network) Sample(ctx context.Context) (NetworkSnapshot, error) {
	ifaces, err := n.interfaces(ctx)
	if err != nil {
		return NetworkSnapshot{}, pkgerrors.Wrap(err, "failed to list network interfaces")
	}

	best := NetworkSnapshot{Connection: ConnectionNone}
	for _, iface := range ifaces {
		if !isActive(iface) {
			continue
		}
		conn := n.classify(iface.Name)
		if conn == ConnectionNone {
			continue
		}
		if best.Connection == ConnectionNone || (conn == ConnectionWired && best.Connection == ConnectionWifi) {
			best = NetworkSnapshot{Connection: conn, Interface: iface.Name}
		}
	}

	return best, nil
}

// classify returns ConnectionNone for virtual interfaces.
func (n *Network) classify(name string) Connection {
	lower := strings.ToLower(name)
	for _, p := range virtualPrefixes {
		if strings.HasPrefix(lower, p) {
			return ConnectionNone
		}
	}

	if _, err := os.Stat(filepath.Join(n.sysfsRoot, name, "wireless")); err == nil {
		return ConnectionWifi
	}
	if strings.HasPrefix(lower, "wl") {
		return ConnectionWifi
	}

	return ConnectionWired
}

// isActive reports whether an interface is up and holds a routable address.
func isActive(iface net.InterfaceStat) bool {
	if !slices.Contains(iface.Flags, "up") || slices.Contains(iface.Flags, "loopback") {
		return false
	}

	for _, a := range iface.Addrs {
		prefix, err := netip.ParsePrefix(a.Addr)
		if err != nil {
			continue
		}
		addr := prefix.Addr()
		if addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
			continue
		}
		return true
	}

	return false
}
