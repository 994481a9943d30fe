package exceptions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// File is the structural view of an exception list used by the fmt and lint
// commands. Unlike Set, it keeps the comment headers and the grouping of
// entries under them. The headers are purely for human readability; the
// checker only ever sees the flattened Set.
type File struct {
	Source   string
	Sections []Section
}

// Section is a run of entries under zero or more leading comment lines.
type Section struct {
	Header  []string // comment lines without the leading "# "
	Entries []Entry
}

// ReadFile parses path into its section structure. Malformed lines are
// reported as diagnostics and dropped, matching Parse.
func ReadFile(path string) (*File, []Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return parseFile(f, path)
}

func parseFile(r io.Reader, source string) (*File, []Diagnostic, error) {
	file := &File{Source: source}
	var diags []Diagnostic
	var cur *Section

	// A blank line or a comment after entries starts a new section.
	section := func(newHeader bool) *Section {
		if cur == nil || (newHeader && len(cur.Entries) > 0) {
			file.Sections = append(file.Sections, Section{})
			cur = &file.Sections[len(file.Sections)-1]
		}
		return cur
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			cur = nil
		case strings.HasPrefix(line, "#"):
			s := section(true)
			s.Header = append(s.Header, strings.TrimSpace(strings.TrimPrefix(line, "#")))
		default:
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
			s := section(false)
			s.Entries = append(s.Entries, Entry{Domain: domain, Name: name, Line: lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, diags, fmt.Errorf("read error: %w", err)
	}
	return file, diags, nil
}

// Format writes the canonical form: section headers kept as-is, entries within
// each section sorted by domain-tag then identifier, duplicate lines dropped,
// one blank line between sections. Formatting never invents or loses an
// exemption, it only reorders and deduplicates.
func (f *File) Format(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, sec := range f.Sections {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		for _, h := range sec.Header {
			if h == "" {
				fmt.Fprintln(bw, "#")
			} else {
				fmt.Fprintf(bw, "# %s\n", h)
			}
		}
		entries := make([]Entry, len(sec.Entries))
		copy(entries, sec.Entries)
		sort.Slice(entries, func(a, b int) bool {
			if entries[a].Domain != entries[b].Domain {
				return entries[a].Domain < entries[b].Domain
			}
			return entries[a].Name < entries[b].Name
		})
		seen := make(map[Entry]bool, len(entries))
		for _, e := range entries {
			key := Entry{Domain: e.Domain, Name: e.Name}
			if seen[key] {
				continue
			}
			seen[key] = true
			fmt.Fprintf(bw, "%s %s\n", e.Domain, e.Name)
		}
	}
	return bw.Flush()
}

// Flatten collapses the file into a membership Set, applying the same
// duplicate-collapsing semantics as Parse.
func (f *File) Flatten() *Set {
	set := &Set{
		source:  f.Source,
		domains: make(map[string]map[string]struct{}),
	}
	for _, sec := range f.Sections {
		for _, e := range sec.Entries {
			if set.contains(e.Domain, e.Name) {
				continue
			}
			names, ok := set.domains[e.Domain]
			if !ok {
				names = make(map[string]struct{})
				set.domains[e.Domain] = names
			}
			names[e.Name] = struct{}{}
			set.entries = append(set.entries, e)
		}
	}
	return set
}
