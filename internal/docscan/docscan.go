// Package docscan walks documentation trees and extracts the cross-references
// to be checked. Two extractors exist: source files (reST/Markdown role
// syntax like :py:class:`target`) and built HTML, where any <code> node still
// carrying an "xref" class is a reference the generator failed to resolve.
package docscan

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nitpick/internal/config"
)

// rolePattern matches :domain:role:`target` and :role:`target` (the domain
// defaults to py). The target may contain spaces but never a backtick.
var rolePattern = regexp.MustCompile(":(?:([a-zA-Z]+):)?([a-zA-Z]+):`([^`]+)`")

// Ref is one extracted cross-reference occurrence.
type Ref struct {
	Domain string // e.g. "py"
	Role   string // e.g. "class"
	Target string
	File   string
	Line   int // 1-based; 0 when unknown (HTML)
}

// Tag returns the reference in exception-list form, e.g. "py:class".
func (r Ref) Tag() string {
	return r.Domain + ":" + r.Role
}

func (r Ref) String() string {
	if r.Line > 0 {
		return fmt.Sprintf("%s:%d: %s `%s`", r.File, r.Line, r.Tag(), r.Target)
	}
	return fmt.Sprintf("%s: %s `%s`", r.File, r.Tag(), r.Target)
}

// Scanner extracts references from the configured documentation roots.
type Scanner struct {
	docs     config.DocsConfig
	jobs     int
	scanHTML bool
	logger   *zap.Logger
}

// New builds a Scanner. jobs bounds the number of files parsed concurrently.
func New(docs config.DocsConfig, jobs int, scanHTML bool, logger *zap.Logger) *Scanner {
	if jobs < 1 {
		jobs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{docs: docs, jobs: jobs, scanHTML: scanHTML, logger: logger}
}

// Scan walks every root and returns all extracted references, sorted by file,
// line, then target so runs are deterministic. A file that cannot be read is
// logged and skipped; it never aborts the scan.
func (s *Scanner) Scan(ctx context.Context) ([]Ref, error) {
	files, err := s.collectFiles()
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		refs []Ref
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.jobs)
	for _, path := range files {
		path := path
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			found, err := s.scanFile(path)
			if err != nil {
				s.logger.Warn("skipping unreadable file",
					zap.String("file", path), zap.Error(err))
				return nil
			}
			if len(found) > 0 {
				mu.Lock()
				refs = append(refs, found...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].File != refs[j].File {
			return refs[i].File < refs[j].File
		}
		if refs[i].Line != refs[j].Line {
			return refs[i].Line < refs[j].Line
		}
		return refs[i].Target < refs[j].Target
	})
	return refs, nil
}

func (s *Scanner) collectFiles() ([]string, error) {
	var files []string
	excluded := make(map[string]bool, len(s.docs.Exclude))
	for _, e := range s.docs.Exclude {
		excluded[e] = true
	}

	for _, root := range s.docs.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if excluded[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if s.match(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) match(name string) bool {
	for _, pattern := range s.docs.Include {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	if s.scanHTML && strings.HasSuffix(name, ".html") {
		return true
	}
	return false
}

func (s *Scanner) scanFile(path string) ([]Ref, error) {
	if strings.HasSuffix(path, ".html") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return extractHTMLRefs(f, path)
	}
	return scanSourceFile(path)
}

func scanSourceFile(path string) ([]Ref, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var refs []Ref
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		for _, m := range rolePattern.FindAllStringSubmatch(scanner.Text(), -1) {
			domain, role, target := m[1], m[2], m[3]
			if domain == "" {
				domain = "py"
			}
			refs = append(refs, Ref{
				Domain: domain,
				Role:   role,
				Target: cleanTarget(target),
				File:   path,
				Line:   lineNo,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// cleanTarget normalizes role targets: "~pkg.mod.Cls" renders only the last
// component but refers to the full path, "!target" disables resolution but we
// still record the name, and "title <real.target>" links under a custom title.
func cleanTarget(target string) string {
	target = strings.TrimSpace(target)
	target = strings.TrimPrefix(target, "~")
	target = strings.TrimPrefix(target, "!")
	if i := strings.LastIndex(target, "<"); i >= 0 && strings.HasSuffix(target, ">") {
		target = target[i+1 : len(target)-1]
	}
	return strings.TrimSpace(target)
}
