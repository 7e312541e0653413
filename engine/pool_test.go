package engine

import (
	"runtime"
	"sync/atomic"
	"testing"
)

// --- WorkerPool Tests ---

// TestWorkerPool_ExecuteAll_RunsEveryJob tests the barrier covers every submitted job
func TestWorkerPool_ExecuteAll_RunsEveryJob(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	var ran atomic.Int64
	jobs := make([]func(), 100)
	for i := range jobs {
		jobs[i] = func() { ran.Add(1) }
	}
	p.ExecuteAll(jobs)
	if got := ran.Load(); got != 100 {
		t.Errorf("ran %d jobs, want 100", got)
	}
}

// TestWorkerPool_ExecuteAll_EmptyJobList tests an empty submission returns immediately
func TestWorkerPool_ExecuteAll_EmptyJobList(t *testing.T) {
	p := NewWorkerPool(2)
	defer p.Close()
	p.ExecuteAll(nil)
	p.ExecuteAll([]func(){})
}

// TestWorkerPool_ExecuteAll_ManyRounds tests repeated barriers on one pool
func TestWorkerPool_ExecuteAll_ManyRounds(t *testing.T) {
	p := NewWorkerPool(3)
	defer p.Close()

	var ran atomic.Int64
	for round := 0; round < 50; round++ {
		jobs := make([]func(), 7)
		for i := range jobs {
			jobs[i] = func() { ran.Add(1) }
		}
		p.ExecuteAll(jobs)
	}
	if got := ran.Load(); got != 350 {
		t.Errorf("ran %d jobs over 50 rounds, want 350", got)
	}
}

// TestWorkerPool_Close_Idempotent tests Close twice does not panic or hang
func TestWorkerPool_Close_Idempotent(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()
	p.Close()
	if p.IsRunning() {
		t.Error("pool reports running after Close")
	}
}

// TestWorkerPool_ExecuteAll_AfterClose_RunsNothing tests closed pools reject work
func TestWorkerPool_ExecuteAll_AfterClose_RunsNothing(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()

	var ran atomic.Int64
	p.ExecuteAll([]func(){func() { ran.Add(1) }})
	if got := ran.Load(); got != 0 {
		t.Errorf("closed pool ran %d jobs, want 0", got)
	}
}

// TestWorkerPool_DefaultSize_UsesGOMAXPROCS tests the zero-worker default
func TestWorkerPool_DefaultSize_UsesGOMAXPROCS(t *testing.T) {
	p := NewWorkerPool(0)
	defer p.Close()
	if got, want := p.Workers(), runtime.GOMAXPROCS(0); got != want {
		t.Errorf("Workers() = %d, want %d", got, want)
	}
}
