package threadpool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_EnqueueRunsEveryIndex(t *testing.T) {
	p := New(4)
	p.Start()
	defer p.Stop()

	var seen [100]int32
	g := p.Enqueue(func(groupID, index, workerID int) {
		atomic.AddInt32(&seen[index], 1)
	}, len(seen), nil)
	g.Wait()

	for i, count := range seen {
		if count != 1 {
			t.Errorf("index %d ran %d times, want 1", i, count)
		}
	}
}

func TestPool_OnCompleteRunsOnce(t *testing.T) {
	p := New(2)
	p.Start()
	defer p.Stop()

	var completions int32
	g := p.Enqueue(func(groupID, index, workerID int) {}, 20, func() {
		atomic.AddInt32(&completions, 1)
	})
	g.Wait()

	if completions != 1 {
		t.Errorf("onComplete ran %d times, want 1", completions)
	}
}

func TestGroup_AbortDrainsWithoutRunning(t *testing.T) {
	p := New(1)
	p.Start()
	defer p.Stop()

	var ran int32
	block := make(chan struct{})
	g := p.Enqueue(func(groupID, index, workerID int) {
		if index == 0 {
			<-block
		}
		atomic.AddInt32(&ran, 1)
	}, 50, nil)

	g.Abort()
	close(block)
	g.Wait()

	if ran > 1 {
		t.Errorf("ran %d tasks, want at most 1 (the task in flight at Abort)", ran)
	}
}

func TestGroup_AbortIsIdempotent(t *testing.T) {
	p := New(1)
	p.Start()
	defer p.Stop()

	g := p.Enqueue(func(groupID, index, workerID int) {}, 5, nil)
	g.Abort()
	g.Abort()

	select {
	case <-g.done:
	case <-time.After(time.Second):
		t.Fatal("group never drained after double abort")
	}
}

func TestPool_EnqueueZeroCompletesImmediately(t *testing.T) {
	p := New(2)
	p.Start()
	defer p.Stop()

	done := make(chan struct{})
	g := p.Enqueue(func(groupID, index, workerID int) {}, 0, func() { close(done) })
	g.Wait()

	select {
	case <-done:
	default:
		t.Fatal("onComplete should have run for a zero-count group")
	}
}
