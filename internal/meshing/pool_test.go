package meshing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolDeliversResult(t *testing.T) {
	p := NewWorkerPool(1, 1)
	defer p.Shutdown()

	done := make(chan Result, 1)
	err := p.Submit(Job{
		Key:        [3]int{1, 2, 3},
		Generation: 4,
		Run:        func() (*Mesh, error) { return NewMesh(1), nil },
		Result:     done,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case res := <-done:
		if res.Err != nil || res.Mesh.Faces != 1 || res.Key != [3]int{1, 2, 3} || res.Generation != 4 {
			t.Fatalf("result: got %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for build")
	}
}

func TestPoolRecoversPanics(t *testing.T) {
	p := NewWorkerPool(1, 1)
	defer p.Shutdown()

	done := make(chan Result, 1)
	if err := p.SubmitBlocking(context.Background(), Job{
		Run:    func() (*Mesh, error) { panic("boom") },
		Result: done,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	res := <-done
	if res.Err == nil || res.Mesh != nil {
		t.Fatalf("panic should surface as an error, got %+v", res)
	}
}

func TestShutdownFinishesQueuedJobs(t *testing.T) {
	p := NewWorkerPool(1, 4)
	var ran atomic.Int32
	release := make(chan struct{})
	for range 3 {
		err := p.Submit(Job{Run: func() (*Mesh, error) {
			<-release
			ran.Add(1)
			return nil, nil
		}, Result: make(chan Result, 1)})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	close(release)
	p.Shutdown()
	if got := ran.Load(); got != 3 {
		t.Fatalf("completed jobs: got %d, want 3", got)
	}
	if err := p.Submit(Job{}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("submit after shutdown: got %v, want ErrPoolClosed", err)
	}
	p.Shutdown()
}

func TestSubmitReportsFullQueue(t *testing.T) {
	p := NewWorkerPool(1, 0)
	release := make(chan struct{})
	started := make(chan struct{})
	if err := p.SubmitBlocking(context.Background(), Job{Run: func() (*Mesh, error) {
		close(started)
		<-release
		return nil, nil
	}, Result: make(chan Result, 1)}); err != nil {
		t.Fatal(err)
	}
	<-started
	if err := p.Submit(Job{}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("busy pool: got %v, want ErrQueueFull", err)
	}
	close(release)
	p.Shutdown()
}
