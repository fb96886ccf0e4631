package engine

import atomic_clock "github.com/temoto/atomic_clock"

// nowNS provides the monotonic-fallback timestamp spec.md §3 requires when
// the OS doesn't supply a per-packet timestamp, as for the legacy pointer
// stream's raw byte packets.
func nowNS() int64 { return atomic_clock.Source() }
