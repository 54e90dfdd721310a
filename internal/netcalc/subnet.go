package netcalc

import "fmt"

// Subnet calculates a subnet address given a network prefix, a netmask size
// increase, and a subnet number. This mimics the behavior of Terraform's
// cidrsubnet function.
//
// Parameters:
//   - prefix: The network prefix (e.g., "10.0.0.0/16")
//   - newbits: The number of additional bits to add to the prefix length (e.g., 8 for /24 inside /16)
//   - netnum: The zero-based index of the subnet to calculate
func Subnet(prefix string, newbits, netnum int) (string, error) {
	parent, err := ParseCIDR(prefix)
	if err != nil {
		return "", err
	}

	newPrefix := parent.Prefix + newbits
	if newbits < 0 || newPrefix > 32 {
		return "", fmt.Errorf("prefix extension of %d bits is too large for %s", newbits, prefix)
	}

	maxSubnets := 1 << newbits
	if netnum < 0 || netnum >= maxSubnets {
		return "", fmt.Errorf("subnet number %d exceeds max subnets %d", netnum, maxSubnets)
	}

	subnetSize := uint32(1) << (32 - newPrefix)
	start := parent.Start + uint32(netnum)*subnetSize

	return fmt.Sprintf("%s/%d", formatAddr(start), newPrefix), nil
}

// Host calculates a full host IP address for a given network prefix and host
// number. This mimics the behavior of Terraform's cidrhost function. A
// negative hostnum counts from the end of the range.
func Host(prefix string, hostnum int) (string, error) {
	r, err := ParseCIDR(prefix)
	if err != nil {
		return "", err
	}

	maxHosts := r.Size()
	var offset uint64
	if hostnum < 0 {
		abs := uint64(-int64(hostnum))
		if abs > maxHosts {
			return "", fmt.Errorf("host number %d exceeds max hosts %d", hostnum, maxHosts)
		}
		offset = maxHosts - abs
	} else {
		offset = uint64(hostnum)
		if offset >= maxHosts {
			return "", fmt.Errorf("host number %d exceeds max hosts %d", hostnum, maxHosts)
		}
	}

	return formatAddr(r.Start + uint32(offset)), nil
}

// ProposeFree walks the candidate parent space in prefix-sized steps and
// returns the first subnet that does not overlap any of the taken ranges.
// Used to suggest a replacement address space when a plan collides with
// existing networks.
func ProposeFree(parent string, prefix int, taken []Range) (string, error) {
	p, err := ParseCIDR(parent)
	if err != nil {
		return "", err
	}
	newbits := prefix - p.Prefix
	if newbits < 0 {
		return "", fmt.Errorf("prefix /%d is wider than parent %s", prefix, parent)
	}

	for netnum := 0; netnum < 1<<newbits; netnum++ {
		candidate, err := Subnet(parent, newbits, netnum)
		if err != nil {
			return "", err
		}
		c := MustParseCIDR(candidate)

		collides := false
		for _, t := range taken {
			if Overlaps(c, t) {
				collides = true
				break
			}
		}
		if !collides {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free /%d subnet inside %s", prefix, parent)
}
