package pipeline

import "sync"

// BaseBlock carries the lifecycle shared by every block: the worker wait
// group and the first fault seen.
type BaseBlock struct {
	wg sync.WaitGroup

	mu        sync.Mutex
	err       error
	completed bool
}

func NewBaseBlock() *BaseBlock {
	return &BaseBlock{}
}

// Fault records err as the block's error. Only the first fault is kept.
func (b *BaseBlock) Fault(err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first recorded fault.
func (b *BaseBlock) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// IsCompleted reports whether the block stopped accepting messages.
func (b *BaseBlock) IsCompleted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completed
}

func (b *BaseBlock) markCompleted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.completed {
		return false
	}
	b.completed = true
	return true
}

// Wait blocks until the worker has exited and returns the first fault.
func (b *BaseBlock) Wait() error {
	b.wg.Wait()
	return b.Err()
}
