//go:build ignore
// +build ignore

// This tool estimates the shadow memory footprint for a candidate
// tracked heap size, mirroring the layout internal/nxsan/shadow
// carves out at Init time. Run with:
//
//	go run tools/calc_shadow_footprint.go -heap 67108864
package main

import (
	"flag"
	"fmt"
)

const (
	granularity = 16
	pageSize    = 4096
)

func main() {
	heapSize := flag.Uint64("heap", 64<<20, "candidate tracked heap size, in bytes")
	flag.Parse()

	shadowSize := *heapSize / granularity
	total := *heapSize + shadowSize

	fmt.Printf("heap size:     %d bytes\n", *heapSize)
	fmt.Printf("granularity:   %d bytes\n", granularity)
	fmt.Printf("shadow size:   %d bytes (heap/%d)\n", shadowSize, granularity)
	fmt.Printf("page size:     %d bytes\n", pageSize)
	fmt.Printf("total reserve: %d bytes (%.2f MiB)\n", total, float64(total)/(1<<20))

	if *heapSize%granularity != 0 {
		fmt.Printf("\nnote: heap size is not a multiple of %d; the shadow store\n", granularity)
		fmt.Printf("      rounds the heap size down and leaves the partial last granule untracked\n")
	}
}
