package suggest

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var longPatterns = [][]string{
	{"p", "pu", "pus", "push", "push_", "push_b", "push_back"},
	{"e", "em", "emp", "empl", "emplace_back"},
	{"i", "in", "inc", "incl", "include"},
	{"s", "si", "siz", "size"},
	{"b", "ba", "bac", "back"},
}

var sources = []string{
	"#include <vector>\nvector<int> v;\nv.",
	"#include <stack>\nstack<int> st;\nst.",
	"vector<int> nogate;\nnogate.",
	"int main() { return 0; }",
}

func TestConcurrentQueries(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 200},
		{workers: 4, iterationsPerWorker: 50},
		{workers: 8, iterationsPerWorker: 25},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentTest(t, config.workers, config.iterationsPerWorker)
		})
	}
}

func runConcurrentTest(t *testing.T, workers, iterationsPerWorker int) {
	e := newTestEngine(t)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for iter := 0; iter < iterationsPerWorker; iter++ {
				code := sources[(worker+iter)%len(sources)]
				e.UpdateSymbols(code)
				for _, pattern := range longPatterns {
					for _, prefix := range pattern {
						for _, s := range e.GetSuggestions(prefix, "", code, len(code), 10) {
							if len(s.Text) < len(prefix) || s.Text[:len(prefix)] != prefix {
								t.Errorf("%q does not start with %q", s.Text, prefix)
								return
							}
						}
					}
				}
				e.Accept("size")
				_ = e.CompleteSymbols("", 5)
				_ = e.Stats()
			}
		}(worker)
	}
	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines

	t.Logf("workers=%d iter_per_worker=%d heap_before=%d heap_after=%d goroutine_delta=%d",
		workers, iterationsPerWorker, baseline.HeapAlloc, final.HeapAlloc, goroutineDelta)

	assert.LessOrEqual(t, goroutineDelta, 2, "goroutine leak")
}

func TestSymbolSnapshotIsConsistent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping snapshot stress test in short mode")
	}
	e := NewEngine(0)
	a := "#include <vector>\nvector<int> a;"
	b := "#include <stack>\nstack<int> b1; stack<int> b2;"

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			if i%2 == 0 {
				e.UpdateSymbols(a)
			} else {
				e.UpdateSymbols(b)
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		s := e.Stats()
		switch s.SymbolCount {
		case 0:
			assert.Empty(t, s.IncludedLibraries)
		case 1:
			assert.Equal(t, []string{"vector"}, s.IncludedLibraries)
		case 2:
			assert.Equal(t, []string{"stack"}, s.IncludedLibraries)
		default:
			t.Fatalf("unexpected symbol count %d", s.SymbolCount)
		}
	}
}
