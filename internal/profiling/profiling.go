// Package profiling accumulates per-frame CPU time by named stage.
package profiling

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under name.
// Usage: defer profiling.Track("pass.shadows")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears the current totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// Stage is one named total.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Top returns the n slowest stages of the current frame, slowest first. Ties
// sort by name.
func Top(n int) []Stage {
	ss := Snapshot()
	list := make([]Stage, 0, len(ss))
	for k, v := range ss {
		list = append(list, Stage{Name: k, Duration: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Duration != list[j].Duration {
			return list[i].Duration > list[j].Duration
		}
		return list[i].Name < list[j].Name
	})
	if n < len(list) {
		list = list[:n]
	}
	return list
}

// TopN formats the n slowest stages.
// Example: "renderer.Render:4.2ms, pass.god_rays:2.1ms"
func TopN(n int) string {
	top := Top(n)
	parts := make([]string, 0, len(top))
	for _, s := range top {
		parts = append(parts, s.Name+":"+formatMs(s.Duration))
	}
	return strings.Join(parts, ", ")
}

// Fields returns the n slowest stages as zap fields, for slow-frame logs.
func Fields(n int) []zap.Field {
	top := Top(n)
	fields := make([]zap.Field, 0, len(top))
	for _, s := range top {
		fields = append(fields, zap.Duration(s.Name, s.Duration))
	}
	return fields
}

// one decimal, truncated; "4.0" prints as "4"
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	return strconv.FormatFloat(math.Trunc(ms*10)/10, 'f', -1, 64) + "ms"
}
