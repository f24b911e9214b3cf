package samtext

import (
	"bufio"
	"io"
	"strings"
)

const (
	scannerBufSize = 64 << 10
	// maxLineSize bounds one SAM line; long-read SEQ/QUAL fields can
	// exceed bufio's default token size.
	maxLineSize = 16 << 20
)

// Scanner reads a text SAM stream one qname group at a time. Header
// lines are collected and exposed via Header after the first call to
// Scan. Consecutive alignment lines sharing a qname form one group;
// Scan makes the next group current and returns false at EOF or on
// error.
//
// Both the parsed ReadGroup and the raw input lines of the current
// group are available, so one scanner type serves ingestion (which
// stores the reduced records) and reconciliation (which rewrites the
// full lines).
type Scanner struct {
	b           *bufio.Scanner
	err         error
	header      []string
	group       *ReadGroup
	lines       []string
	pending     string
	havePending bool
	started     bool
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, scannerBufSize), maxLineSize)
	return &Scanner{b: b}
}

// Scan advances to the next qname group. It returns false at end of
// input or on error; check Err after a false return.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.started {
		s.started = true
		s.scanHeader()
		if s.err != nil {
			return false
		}
	}
	if !s.havePending {
		return false
	}

	first := s.pending
	s.havePending = false
	qname := qnameOf(first)
	var g ReadGroup
	s.lines = nil
	if !s.appendLine(&g, first) {
		return false
	}
	for s.b.Scan() {
		line := s.b.Text()
		if line == "" {
			continue
		}
		if qnameOf(line) != qname {
			s.pending = line
			s.havePending = true
			break
		}
		if !s.appendLine(&g, line) {
			return false
		}
	}
	if err := s.b.Err(); err != nil {
		s.err = err
		return false
	}
	s.group = &g
	return true
}

// scanHeader consumes leading header lines and positions the scanner
// at the first alignment line, if any.
func (s *Scanner) scanHeader() {
	for s.b.Scan() {
		line := s.b.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "@") {
			s.header = append(s.header, line)
			continue
		}
		s.pending = line
		s.havePending = true
		break
	}
	if err := s.b.Err(); err != nil {
		s.err = err
	}
}

func (s *Scanner) appendLine(g *ReadGroup, line string) bool {
	r, err := ParseRead(line)
	if err != nil {
		s.err = err
		return false
	}
	g.Append(r)
	s.lines = append(s.lines, line)
	return true
}

// Group returns the current ReadGroup. Valid until the next Scan.
func (s *Scanner) Group() *ReadGroup {
	return s.group
}

// Lines returns the raw input lines of the current group. The slice
// is owned by the caller; Scan allocates a fresh one per group.
func (s *Scanner) Lines() []string {
	return s.lines
}

// Header returns the header lines seen before the first alignment
// line. Complete after the first call to Scan.
func (s *Scanner) Header() []string {
	return s.header
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	return s.err
}

func qnameOf(line string) string {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i]
	}
	return line
}
