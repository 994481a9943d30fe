// invdump prints the contents of a Sphinx objects.inv inventory as plain
// text, one object per line. Useful for inspecting what an upstream project
// actually exports before adding exceptions for it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"nitpick/internal/inventory"
)

func main() {
	countOnly := flag.Bool("count", false, "print only the object count")
	domain := flag.String("domain", "", "limit output to one domain (e.g. py)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: invdump [-count] [-domain py] <path-or-url>")
		os.Exit(2)
	}

	inv, err := inventory.Fetch(context.Background(), flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invdump: %v\n", err)
		os.Exit(1)
	}

	if *countOnly {
		fmt.Printf("%d\n", inv.Len())
		return
	}

	objects := inv.All()
	sort.Slice(objects, func(i, j int) bool {
		if objects[i].Domain != objects[j].Domain {
			return objects[i].Domain < objects[j].Domain
		}
		return objects[i].Name < objects[j].Name
	})

	fmt.Printf("# %s %s\n", inv.Project, inv.Version)
	for _, obj := range objects {
		if *domain != "" && obj.Domain != *domain {
			continue
		}
		fmt.Printf("%s %s:%s %d %s\n", obj.Name, obj.Domain, obj.Role, obj.Priority, obj.Location)
	}
}
