package effect

import "sync"

// Dispatcher queues frames for one session's client connection. Enqueueing
// never blocks the caller: when the buffer is full the oldest frame is
// dropped, which keeps the remaining frames in FIFO order (the next full
// page load reconciles whatever was lost). Frames for the same selector are
// never reordered or coalesced.
type Dispatcher struct {
	mu     sync.Mutex
	frames chan Frame
	closed bool
}

const defaultBuffer = 64

func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Dispatcher{frames: make(chan Frame, buffer)}
}

// Dispatch queues a declarative effect.
func (d *Dispatcher) Dispatch(e Effect) {
	d.enqueue(Frame{Effect: &e})
}

// PatchElement queues a rendered fragment.
func (d *Dispatcher) PatchElement(selector string, mode PatchMode, html string) {
	d.enqueue(Frame{Patch: &Patch{Selector: selector, Mode: mode, HTML: html}})
}

func (d *Dispatcher) enqueue(f Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	for {
		select {
		case d.frames <- f:
			return
		default:
		}
		// Buffer full: drop the oldest frame and retry.
		select {
		case <-d.frames:
		default:
		}
	}
}

// Frames is consumed by the transport (one reader at a time).
func (d *Dispatcher) Frames() <-chan Frame {
	return d.frames
}

// Close releases the consumer. Dispatch after Close is a silent no-op.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.frames)
}
