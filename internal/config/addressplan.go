package config

import (
	"fmt"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/netcalc"
)

// AddressPlanReport is the outcome of checking the proposed address space
// against the ranges already in use.
type AddressPlanReport struct {
	Proposed   netcalc.Range
	Collisions []string

	// Suggestion is a free replacement CIDR inside ParentSpace, when one
	// exists and a collision was found.
	Suggestion string
}

// Ok reports whether the proposed space is free of collisions.
func (r *AddressPlanReport) Ok() bool { return len(r.Collisions) == 0 }

// CheckAddressPlan validates the proposed address space against the existing
// ranges. It returns nil when no address space is configured. Malformed CIDRs
// anywhere in the plan are an error, not a warning: a plan that cannot be
// parsed cannot be trusted.
func (c *Config) CheckAddressPlan() (*AddressPlanReport, error) {
	if c.Network.AddressSpace == "" {
		return nil, nil
	}

	proposed, err := netcalc.ParseCIDR(c.Network.AddressSpace)
	if err != nil {
		return nil, fmt.Errorf("network.address_space: %w", err)
	}

	report := &AddressPlanReport{Proposed: proposed}
	taken := make([]netcalc.Range, 0, len(c.Network.Existing))

	for _, existing := range c.Network.Existing {
		r, err := netcalc.ParseCIDR(existing)
		if err != nil {
			return nil, fmt.Errorf("network.existing %q: %w", existing, err)
		}
		taken = append(taken, r)
		if netcalc.Overlaps(proposed, r) {
			report.Collisions = append(report.Collisions, existing)
		}
	}

	if !report.Ok() && c.Network.ParentSpace != "" {
		suggestion, err := netcalc.ProposeFree(c.Network.ParentSpace, proposed.Prefix, taken)
		if err == nil {
			report.Suggestion = suggestion
		}
	}
	return report, nil
}
