// Package arena implements the backing aligned allocator that
// internal/nxsan/alloc requests raw, granule-aligned memory from.
//
// The tracked heap is a single Go-owned byte slice (standing in for
// the contiguous address region an embedder would otherwise obtain
// from the OS or a custom mapper — spec §3 "Tracked Heap"); arena
// manages free-list bookkeeping over that slice so blocks can be
// reused after Free, which a bump allocator alone cannot provide.
package arena
