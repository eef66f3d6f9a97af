// Package logtop finds the client addresses that hit a web server most
// often, reading its access log.
package logtop

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// DefaultLimit is the number of addresses reported when none is given.
const DefaultLimit = 20

// Header is the first line written by Format.
const Header = "Address\t\tHit count"

// Hit is the number of requests seen from one address.
type Hit struct {
	Address string
	Count   int
}

// Counter tallies requests per address.
type Counter struct {
	hits  map[string]int
	lines int
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{hits: make(map[string]int)}
}

// AddressOf returns the address a log line starts with. Lines holding no
// space carry no address.
func AddressOf(line string) (string, bool) {
	addr, _, ok := strings.Cut(line, " ")
	if !ok {
		return "", false
	}
	return addr, true
}

// Add records a single log line.
func (c *Counter) Add(line string) {
	c.lines++
	if addr, ok := AddressOf(line); ok {
		c.hits[addr]++
	}
}

// ReadFrom counts every line of r.
func (c *Counter) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		n += int64(len(line)) + 1
		c.Add(line)
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("failed to read log: %w", err)
	}
	return n, nil
}

// Lines returns the number of lines seen so far.
func (c *Counter) Lines() int {
	return c.lines
}

// Top returns at most n addresses ordered by hit count, busiest first.
// Ties are broken by address. n <= 0 returns every address.
func (c *Counter) Top(n int) []Hit {
	hits := make([]Hit, 0, len(c.hits))
	for addr, count := range c.hits {
		hits = append(hits, Hit{Address: addr, Count: count})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Count != hits[j].Count {
			return hits[i].Count > hits[j].Count
		}
		return hits[i].Address < hits[j].Address
	})
	if n > 0 && len(hits) > n {
		hits = hits[:n]
	}
	return hits
}

// Format writes the header followed by one line per hit.
func Format(w io.Writer, hits []Hit) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, h := range hits {
		fmt.Fprintf(bw, "%s\t\t%d\n", h.Address, h.Count)
	}
	return bw.Flush()
}
