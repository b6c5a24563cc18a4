// Command hllist dumps the node tree of an HDF5 file.
package main

import (
	"fmt"
	"os"

	"github.com/baltrad-go/hlhdf/hl"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hllist <file.h5> [nodepath]")
		os.Exit(1)
	}

	filename := os.Args[1]

	if len(os.Args) > 2 {
		node, err := hl.ReadNode(filename, os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		printNode(node)
		return
	}

	list, err := hl.Read(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < list.Len(); i++ {
		printNode(list.NodeAt(i))
	}
}

func printNode(n *hl.Node) {
	fmt.Printf("%-12s %s", n.Kind(), n.Name())
	if dims := n.Dims(); len(dims) > 0 {
		fmt.Printf(" %v", dims)
	}
	if n.Format() != hl.FormatUndefined {
		fmt.Printf(" (%s)", n.Format())
	}
	if desc := n.CompoundDescription(); desc != nil {
		fmt.Printf(" [%d members, %d bytes]", len(desc.Members), desc.Size)
	}
	fmt.Println()
}
