// Package exceptions loads the cross-reference exception list: a plain-text
// file naming documentation targets that the checker must not warn about when
// they fail to resolve. Lines have the form "<domain-tag> <identifier>" where
// the domain-tag is a short role token (e.g. py:class) and the identifier is a
// dotted path or, for known docstring quirks, an opaque free-text string.
// Lines starting with # group entries for humans and carry no meaning here.
package exceptions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"
)

// Entry is a single exempted reference target.
type Entry struct {
	Domain string // role token, e.g. "py:class" or "py:obj"
	Name   string // identifier, preserved verbatim (may contain spaces)
	Line   int    // 1-based line number in the source file
}

// Diagnostic reports a non-fatal problem found while parsing.
// Parsing is fault-isolating per line: a bad line is skipped and reported,
// it never invalidates the rest of the file.
type Diagnostic struct {
	Source string // file path or stream label
	Line   int    // 1-based
	Text   string // the offending line, trimmed
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %q", d.Source, d.Line, d.Reason, d.Text)
}

// Set is the loaded exception list. It is immutable after construction and
// safe for concurrent readers without synchronization.
type Set struct {
	source  string
	domains map[string]map[string]struct{}
	entries []Entry
}

// Load reads and parses the exception list at path.
// A missing file is returned as the os.ReadFile error unwrapped, so callers
// can apply their required-vs-optional policy via os.IsNotExist.
func Load(path string) (*Set, []Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	set, diags, err := Parse(f, path)
	if err != nil {
		return nil, diags, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return set, diags, nil
}

// Parse reads newline-delimited UTF-8 text from r. source labels diagnostics
// (typically the file path). The returned error is non-nil only for read
// failures; malformed lines surface as diagnostics.
func Parse(r io.Reader, source string) (*Set, []Diagnostic, error) {
	set := &Set{
		source:  source,
		domains: make(map[string]map[string]struct{}),
	}
	var diags []Diagnostic

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		domain, name, ok := splitEntry(line)
		if !ok {
			diags = append(diags, Diagnostic{
				Source: source,
				Line:   lineNo,
				Text:   line,
				Reason: "no whitespace separator between domain-tag and identifier",
			})
			continue
		}

		if set.contains(domain, name) {
			diags = append(diags, Diagnostic{
				Source: source,
				Line:   lineNo,
				Text:   line,
				Reason: "duplicate entry",
			})
			continue
		}

		names, exists := set.domains[domain]
		if !exists {
			names = make(map[string]struct{})
			set.domains[domain] = names
		}
		names[name] = struct{}{}
		set.entries = append(set.entries, Entry{Domain: domain, Name: name, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, diags, fmt.Errorf("read error: %w", err)
	}

	return set, diags, nil
}

// splitEntry splits a line on the FIRST whitespace run only. The identifier
// keeps any further spaces verbatim: several real entries are free-text
// sentinels like "None.  Remove all items from D." and must round-trip.
func splitEntry(line string) (domain, name string, ok bool) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return "", "", false
	}
	domain = line[:i]
	name = strings.TrimLeftFunc(line[i:], unicode.IsSpace)
	if name == "" {
		return "", "", false
	}
	return domain, name, true
}

// Contains reports whether the (domain-tag, identifier) pair is exempted.
func (s *Set) Contains(domain, name string) bool {
	if s == nil {
		return false
	}
	return s.contains(domain, name)
}

func (s *Set) contains(domain, name string) bool {
	names, ok := s.domains[domain]
	if !ok {
		return false
	}
	_, ok = names[name]
	return ok
}

// Len returns the number of distinct entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Source returns the label the set was parsed from.
func (s *Set) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// Entries returns all entries sorted by domain-tag then identifier.
// The slice is a copy; the set itself never changes after Parse.
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Domains returns the distinct domain-tags present, sorted.
func (s *Set) Domains() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.domains))
	for d := range s.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two sets contain exactly the same entries,
// ignoring source ordering and line numbers. Loading the same file twice
// always yields equal sets.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, e := range s.entries {
		if !other.Contains(e.Domain, e.Name) {
			return false
		}
	}
	return true
}
