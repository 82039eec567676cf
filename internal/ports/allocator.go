// Package ports finds locally bindable TCP ports inside a configured range.
package ports

import (
	"fmt"
	"net"
	"regexp"
	"strconv"

	"treeline/internal/errors"
)

// Range is an inclusive TCP port range
type Range struct {
	Start int
	End   int
}

var rangePattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// ParseRange parses a "<start>-<end>" port range specification
func ParseRange(spec string) (Range, error) {
	matches := rangePattern.FindStringSubmatch(spec)
	if matches == nil {
		return Range{}, errors.NewWithHint(errors.ErrInvalidPortRange,
			fmt.Sprintf("invalid port range %q", spec),
			`expected "<start>-<end>", e.g. "3000-3100"`)
	}

	start, err := strconv.Atoi(matches[1])
	if err != nil {
		return Range{}, errors.Wrap(errors.ErrInvalidPortRange,
			fmt.Sprintf("invalid start port in %q", spec), err)
	}
	end, err := strconv.Atoi(matches[2])
	if err != nil {
		return Range{}, errors.Wrap(errors.ErrInvalidPortRange,
			fmt.Sprintf("invalid end port in %q", spec), err)
	}

	if start < 1 || end > 65535 {
		return Range{}, errors.NewWithHint(errors.ErrInvalidPortRange,
			fmt.Sprintf("port range %q out of bounds", spec),
			"ports must be between 1 and 65535")
	}
	if start > end {
		return Range{}, errors.NewWithHint(errors.ErrInvalidPortRange,
			fmt.Sprintf("port range %q has start > end", spec),
			"start must not exceed end")
	}

	return Range{Start: start, End: end}, nil
}

// FindAvailable probes ports in [start, end] and returns the first count that
// can actually be bound. Probing binds and releases each candidate; a port with
// no listener but an OS-level reservation is correctly skipped. The released
// port can still be claimed by another process before the caller's command
// binds it; that race is accepted and not retried.
func FindAvailable(start, end, count int) ([]int, error) {
	if count <= 0 {
		return nil, nil
	}

	available := make([]int, 0, count)
	for port := start; port <= end && len(available) < count; port++ {
		if isBindable(port) {
			available = append(available, port)
		}
	}

	if len(available) < count {
		return nil, errors.New(errors.ErrPortsExhausted,
			fmt.Sprintf("could not find %d available ports in range %d-%d", count, start, end))
	}

	return available, nil
}

// isBindable attempts a bind-and-release on localhost
func isBindable(port int) bool {
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	l.Close()
	return true
}
