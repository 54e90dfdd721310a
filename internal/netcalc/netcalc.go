// Package netcalc provides IPv4 CIDR arithmetic for validating landing-zone
// address plans: parsing CIDR notation, computing address ranges, and testing
// overlap and containment between ranges.
package netcalc

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a contiguous IPv4 address range derived from CIDR notation.
// Start and End are inclusive, in host byte order with the most significant
// octet first (network order packed into a uint32).
type Range struct {
	Start  uint32
	End    uint32
	Prefix int
}

// ParseCIDR parses dotted-quad/prefix notation into a Range.
//
// The input address does not need to be aligned to the prefix: host bits are
// cleared so that Start is always the network address. Malformed input is an
// error, never silently clamped.
func ParseCIDR(s string) (Range, error) {
	addrPart, prefixPart, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Range{}, fmt.Errorf("invalid CIDR %q: missing /prefix", s)
	}

	addr, err := parseDottedQuad(addrPart)
	if err != nil {
		return Range{}, fmt.Errorf("invalid CIDR %q: %w", s, err)
	}

	prefix, err := strconv.Atoi(prefixPart)
	if err != nil || prefix < 0 || prefix > 32 {
		return Range{}, fmt.Errorf("invalid CIDR %q: prefix must be 0-32", s)
	}

	mask := prefixMask(prefix)
	start := addr & mask
	return Range{
		Start:  start,
		End:    start | ^mask,
		Prefix: prefix,
	}, nil
}

// MustParseCIDR is ParseCIDR for statically known inputs; it panics on error.
func MustParseCIDR(s string) Range {
	r, err := ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Overlaps reports whether the two ranges share at least one address.
func Overlaps(a, b Range) bool {
	return a.Start <= b.End && b.Start <= a.End
}

// Contains reports whether child lies entirely inside parent.
func Contains(parent, child Range) bool {
	return child.Start >= parent.Start && child.End <= parent.End
}

// String renders the range back to canonical CIDR notation.
func (r Range) String() string {
	return fmt.Sprintf("%s/%d", formatAddr(r.Start), r.Prefix)
}

// Size returns the number of addresses covered by the range.
func (r Range) Size() uint64 {
	return uint64(r.End-r.Start) + 1
}

// prefixMask returns the network mask for a prefix length. The prefix == 0
// case is an explicit branch: a 32-bit shift by 32 is not portable.
func prefixMask(prefix int) uint32 {
	if prefix == 0 {
		return 0
	}
	return ^uint32(0) << (32 - prefix)
}

func parseDottedQuad(s string) (uint32, error) {
	octets := strings.Split(s, ".")
	if len(octets) != 4 {
		return 0, fmt.Errorf("address %q must have four octets", s)
	}
	var addr uint32
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 {
			return 0, fmt.Errorf("octet %q out of range 0-255", o)
		}
		addr = addr<<8 | uint32(n)
	}
	return addr, nil
}

func formatAddr(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", v>>24&0xff, v>>16&0xff, v>>8&0xff, v&0xff)
}
