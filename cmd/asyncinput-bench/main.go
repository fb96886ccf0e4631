// Command asyncinput-bench measures end-to-end latency from kernel
// timestamp to sink invocation, reporting p50/p99. Grounded on the original
// C reference's examples/benchmark.c, which the distillation dropped but
// SPEC_FULL.md's supplemented-features section reinstates as a standalone
// tool rather than folding into the library itself.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"asyncinput/engine"
	"asyncinput/event"
	"asyncinput/internal/logx"
)

func main() {
	devDir := flag.String("dev", "/dev/input", "device directory")
	duration := flag.Duration("duration", 10*time.Second, "how long to sample")
	flag.Parse()

	log := logx.NewStderr(logx.LError)
	if err := engine.Init(*devDir, 4096, "", log); err != nil {
		fmt.Fprintln(os.Stderr, "init:", err)
		os.Exit(1)
	}
	defer engine.Shutdown()

	var mu sync.Mutex
	samples := make([]time.Duration, 0, 4096)
	done := make(chan struct{})
	engine.RegisterCallback(func(rec event.Record, ctx interface{}) {
		now := time.Now().UnixNano()
		if rec.TimestampNS > 0 && now > rec.TimestampNS {
			mu.Lock()
			samples = append(samples, time.Duration(now-rec.TimestampNS))
			mu.Unlock()
		}
	}, nil)

	go func() {
		time.Sleep(*duration)
		close(done)
	}()
	<-done

	engine.RegisterCallback(nil, nil) // stop appending before we read samples below
	mu.Lock()
	defer mu.Unlock()
	report(samples)
}

func report(samples []time.Duration) {
	if len(samples) == 0 {
		fmt.Println("no events observed")
		return
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	p50 := samples[len(samples)*50/100]
	p99 := samples[min(len(samples)*99/100, len(samples)-1)]
	fmt.Printf("n=%d p50=%s p99=%s min=%s max=%s\n",
		len(samples), p50, p99, samples[0], samples[len(samples)-1])
}
