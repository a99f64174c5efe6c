// Package preview renders the exact string a telecommand takes on the radio
// uplink, so an operator can inspect it before transmission.
package preview

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultPrefix is the uplink frame prefix for the CTS-SAT-1 mission.
const DefaultPrefix = "CTS1+"

// Options control the optional @tag=value fields of a preview.
type Options struct {
	// IncludeTimestamp adds @tssent with the send time in unix milliseconds.
	IncludeTimestamp bool
	// Timestamp overrides the @tssent value. Zero means time.Now().
	Timestamp time.Time
	// ExecTime populates @tsexec for scheduled execution.
	ExecTime string
	// ResponseFile populates @resp_fname to redirect the response to a
	// file on the satellite.
	ResponseFile string
	// ExtraTags are appended after the well-known tags, sorted by key so
	// the output is stable.
	ExtraTags map[string]string
	// Prefix overrides DefaultPrefix when non-empty.
	Prefix string
}

// Generate renders the full uplink string for a telecommand invocation:
//
//	CTS1+hello_world()@tssent=1767322800123!
//
// Tag order is fixed: tssent, tsexec, resp_fname, then extra tags by key.
// The trailing ! terminates the frame.
func Generate(name string, args []string, opts Options) string {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(name)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(args, ","))
	sb.WriteByte(')')

	if opts.IncludeTimestamp {
		ts := opts.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		writeTag(&sb, "tssent", strconv.FormatInt(ts.UnixMilli(), 10))
	}
	if opts.ExecTime != "" {
		writeTag(&sb, "tsexec", opts.ExecTime)
	}
	if opts.ResponseFile != "" {
		writeTag(&sb, "resp_fname", opts.ResponseFile)
	}

	keys := make([]string, 0, len(opts.ExtraTags))
	for k := range opts.ExtraTags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeTag(&sb, k, opts.ExtraTags[k])
	}

	sb.WriteByte('!')
	return sb.String()
}

func writeTag(sb *strings.Builder, key, value string) {
	sb.WriteByte('@')
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(value)
}
