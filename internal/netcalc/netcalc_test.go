package netcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCIDR(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		input     string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{
			name:      "aligned /22",
			input:     "10.0.0.0/22",
			wantStart: "10.0.0.0",
			wantEnd:   "10.0.3.255",
		},
		{
			name:      "unaligned address gets host bits cleared",
			input:     "10.0.1.37/22",
			wantStart: "10.0.0.0",
			wantEnd:   "10.0.3.255",
		},
		{
			name:      "single host /32",
			input:     "192.168.1.1/32",
			wantStart: "192.168.1.1",
			wantEnd:   "192.168.1.1",
		},
		{
			name:      "whole space /0",
			input:     "1.2.3.4/0",
			wantStart: "0.0.0.0",
			wantEnd:   "255.255.255.255",
		},
		{name: "missing prefix", input: "10.0.0.0", wantErr: true},
		{name: "prefix too large", input: "10.0.0.0/33", wantErr: true},
		{name: "negative prefix", input: "10.0.0.0/-1", wantErr: true},
		{name: "octet out of range", input: "10.0.0.256/24", wantErr: true},
		{name: "three octets", input: "10.0.0/24", wantErr: true},
		{name: "garbage", input: "not-a-cidr", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := ParseCIDR(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, formatAddr(r.Start))
			assert.Equal(t, tt.wantEnd, formatAddr(r.End))
			assert.LessOrEqual(t, r.Start, r.End)
		})
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "child inside parent", a: "10.0.1.0/24", b: "10.0.1.128/25", want: true},
		{name: "disjoint siblings", a: "10.0.1.0/24", b: "10.0.2.0/24", want: false},
		{name: "identical", a: "10.0.0.0/16", b: "10.0.0.0/16", want: true},
		{name: "adjacent do not overlap", a: "10.0.0.0/24", b: "10.0.1.0/24", want: false},
		{name: "partial overlap via alignment", a: "10.0.0.0/23", b: "10.0.1.0/24", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := MustParseCIDR(tt.a)
			b := MustParseCIDR(tt.b)
			assert.Equal(t, tt.want, Overlaps(a, b))
			// Overlap is symmetric.
			assert.Equal(t, Overlaps(a, b), Overlaps(b, a))
		})
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	parent := MustParseCIDR("10.0.0.0/16")
	child := MustParseCIDR("10.0.42.0/24")
	other := MustParseCIDR("10.1.0.0/24")

	assert.True(t, Contains(parent, child))
	assert.False(t, Contains(child, parent))
	assert.False(t, Contains(parent, other))

	// Reflexivity: every range contains itself.
	for _, s := range []string{"0.0.0.0/0", "10.0.0.0/8", "192.168.1.1/32"} {
		r := MustParseCIDR(s)
		assert.True(t, Contains(r, r), s)
	}
}

func TestRangeString(t *testing.T) {
	t.Parallel()

	r := MustParseCIDR("10.20.1.17/20")
	assert.Equal(t, "10.20.0.0/20", r.String())
	assert.Equal(t, uint64(4096), r.Size())
}
