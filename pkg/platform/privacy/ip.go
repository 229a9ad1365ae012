// Package privacy holds the primitives that keep identity out of logs and content rows.
package privacy

import "net/netip"

// AnonymizeIP truncates an IP address to its network prefix so request logs never
// carry a host address: IPv4 keeps the /24, IPv6 keeps the /48.
//
// Returns "unknown" for empty input and "invalid" for anything that is not a bare address.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
