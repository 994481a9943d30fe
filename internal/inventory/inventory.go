// Package inventory reads object inventories: the universe of resolvable
// documentation targets a cross-reference can point at. The primary format is
// the Sphinx objects.inv version 2 layout (four comment header lines followed
// by a zlib-compressed record stream); the plain version 1 layout is accepted
// for very old inventories.
package inventory

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compile the record pattern once. Mirrors the reference parser: the name
// is matched lazily so it may contain spaces, domain:role and location may
// not, and the display name takes the rest of the line.
var recordPattern = regexp.MustCompile(`^(.+?)\s+(\S+)\s+(-?\d+)\s+(\S*)\s+(.*)$`)

// Object is a single resolvable target.
type Object struct {
	Name     string
	Domain   string // e.g. "py"
	Role     string // e.g. "class", "meth", "attr"
	Priority int
	Location string // URI relative to the inventory base; "$" suffix expanded
	DispName string // display name; "-" in the file means same as Name
}

// Inventory is an immutable set of objects from one source.
type Inventory struct {
	Project string
	Version string
	Source  string // path or URL the inventory was read from

	// domain -> name -> role -> object
	objects map[string]map[string]map[string]Object
	count   int
}

// Read parses an inventory stream. source labels the result for reporting.
func Read(r io.Reader, source string) (*Inventory, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory header: %w", err)
	}
	header = strings.TrimSpace(header)

	switch {
	case strings.HasPrefix(header, "# Sphinx inventory version 2"):
		return readV2(br, source)
	case strings.HasPrefix(header, "# Sphinx inventory version 1"):
		return readV1(br, source)
	default:
		return nil, fmt.Errorf("unrecognized inventory header: %q", header)
	}
}

// Rebuild reconstructs an inventory from previously stored objects, e.g. out
// of the cache database.
func Rebuild(source, project, version string, objects []Object) *Inventory {
	inv := newInventory(source)
	inv.Project = project
	inv.Version = version
	for _, obj := range objects {
		inv.add(obj)
	}
	return inv
}

func newInventory(source string) *Inventory {
	return &Inventory{
		Source:  source,
		objects: make(map[string]map[string]map[string]Object),
	}
}

func readV2(br *bufio.Reader, source string) (*Inventory, error) {
	inv := newInventory(source)

	// Three more header comment lines: project, version, compression notice.
	for i := 0; i < 3; i++ {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("truncated inventory header: %w", err)
		}
		switch {
		case strings.HasPrefix(line, "# Project:"):
			inv.Project = strings.TrimSpace(strings.TrimPrefix(line, "# Project:"))
		case strings.HasPrefix(line, "# Version:"):
			inv.Version = strings.TrimSpace(strings.TrimPrefix(line, "# Version:"))
		case strings.Contains(line, "zlib"):
			// compression notice, nothing to record
		}
	}

	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed object stream: %w", err)
	}
	defer zr.Close()

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		obj, ok := parseRecord(line)
		if !ok {
			// One undecodable record should not discard the inventory.
			continue
		}
		inv.add(obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read object stream: %w", err)
	}
	return inv, nil
}

// readV1 handles the uncompressed legacy layout: "name type location" with an
// implied py domain, where type "mod" maps to role "module".
func readV1(br *bufio.Reader, source string) (*Inventory, error) {
	inv := newInventory(source)

	for i := 0; i < 2; i++ {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("truncated inventory header: %w", err)
		}
		switch {
		case strings.HasPrefix(line, "# Project:"):
			inv.Project = strings.TrimSpace(strings.TrimPrefix(line, "# Project:"))
		case strings.HasPrefix(line, "# Version:"):
			inv.Version = strings.TrimSpace(strings.TrimPrefix(line, "# Version:"))
		}
	}

	scanner := bufio.NewScanner(br)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		name, typ, location := fields[0], fields[1], fields[2]
		role := typ
		if typ == "mod" {
			role = "module"
			location += "#module-" + name
		} else {
			location += "#" + name
		}
		inv.add(Object{
			Name:     name,
			Domain:   "py",
			Role:     role,
			Priority: 1,
			Location: location,
			DispName: name,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read object list: %w", err)
	}
	return inv, nil
}

func parseRecord(line string) (Object, bool) {
	m := recordPattern.FindStringSubmatch(line)
	if m == nil {
		return Object{}, false
	}
	name, tag, prio, location, disp := m[1], m[2], m[3], m[4], m[5]

	domain, role, ok := strings.Cut(tag, ":")
	if !ok {
		return Object{}, false
	}
	priority, err := strconv.Atoi(prio)
	if err != nil {
		return Object{}, false
	}
	if strings.HasSuffix(location, "$") {
		location = strings.TrimSuffix(location, "$") + name
	}
	if disp == "-" {
		disp = name
	}
	return Object{
		Name:     name,
		Domain:   domain,
		Role:     role,
		Priority: priority,
		Location: location,
		DispName: disp,
	}, true
}

func (inv *Inventory) add(obj Object) {
	names, ok := inv.objects[obj.Domain]
	if !ok {
		names = make(map[string]map[string]Object)
		inv.objects[obj.Domain] = names
	}
	roles, ok := names[obj.Name]
	if !ok {
		roles = make(map[string]Object)
		names[obj.Name] = roles
	}
	if _, dup := roles[obj.Role]; !dup {
		inv.count++
	}
	roles[obj.Role] = obj
}

// Len returns the number of objects loaded.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return inv.count
}

// Resolve looks up a target. Role "obj" (and "any") is the generic object
// reference and matches any role within the domain; otherwise the role must
// match exactly.
func (inv *Inventory) Resolve(domain, role, name string) (Object, bool) {
	if inv == nil {
		return Object{}, false
	}
	names, ok := inv.objects[domain]
	if !ok {
		return Object{}, false
	}
	roles, ok := names[name]
	if !ok {
		return Object{}, false
	}
	if role == "obj" || role == "any" {
		best := Object{}
		found := false
		for _, obj := range roles {
			if !found || obj.Priority < best.Priority {
				best = obj
				found = true
			}
		}
		return best, found
	}
	obj, ok := roles[role]
	return obj, ok
}

// All returns every object, in no particular order.
func (inv *Inventory) All() []Object {
	if inv == nil {
		return nil
	}
	out := make([]Object, 0, inv.count)
	for _, names := range inv.objects {
		for _, roles := range names {
			for _, obj := range roles {
				out = append(out, obj)
			}
		}
	}
	return out
}

// WriteV2 serializes the inventory back into the version 2 layout. Used by
// tests and the invdump tool; real inventories normally come from a build.
func (inv *Inventory) WriteV2(w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Sphinx inventory version 2\n")
	fmt.Fprintf(&buf, "# Project: %s\n", inv.Project)
	fmt.Fprintf(&buf, "# Version: %s\n", inv.Version)
	fmt.Fprintf(&buf, "# The remainder of this file is compressed using zlib.\n")
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	zw := zlib.NewWriter(w)
	for _, obj := range inv.All() {
		disp := obj.DispName
		if disp == obj.Name {
			disp = "-"
		}
		fmt.Fprintf(zw, "%s %s:%s %d %s %s\n",
			obj.Name, obj.Domain, obj.Role, obj.Priority, obj.Location, disp)
	}
	return zw.Close()
}
