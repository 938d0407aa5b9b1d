package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBlockCompleted is returned when sending to a block that no longer accepts messages.
var ErrBlockCompleted = errors.New("pipeline: block completed")

// ActionFunc handles one message. A returned error faults the block but does
// not stop it.
type ActionFunc func(interface{}) error

// ActionBlock executes an action for each input message on a single worker.
// Messages are handled one at a time, in the order they were accepted.
type ActionBlock struct {
	*BaseBlock
	input   chan interface{}
	action  ActionFunc
	options BlockOptions

	// sendMu keeps Complete from closing input under a pending send.
	sendMu sync.RWMutex
}

func NewActionBlock(action ActionFunc, opts ...Option) *ActionBlock {
	b := &ActionBlock{
		BaseBlock: NewBaseBlock(),
		input:     make(chan interface{}),
		action:    action,
		options:   buildOptions(opts),
	}

	b.wg.Add(1)
	go b.process()
	return b
}

// Send blocks until the worker accepts the message or ctx is done.
func (b *ActionBlock) Send(ctx context.Context, message interface{}) error {
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()
	if b.IsCompleted() {
		return ErrBlockCompleted
	}

	select {
	case b.input <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *ActionBlock) process() {
	defer b.wg.Done()

	for msg := range b.input {
		if err := b.run(msg); err != nil {
			b.Fault(err)
		}
	}
}

func (b *ActionBlock) run(msg interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline %s: panic: %v", b.options.Name, r)
		}
	}()
	return b.action(msg)
}

// Complete stops accepting messages; a message already handed to the worker
// is still processed.
func (b *ActionBlock) Complete() {
	b.sendMu.Lock()
	defer b.sendMu.Unlock()
	if b.markCompleted() {
		close(b.input)
	}
}
