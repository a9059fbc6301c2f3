package utils

import "sync"

// DeltaPump hands streamed chunks to a single writer goroutine. Push never
// blocks on the writer, so callers holding a lock are not stalled by a slow client.
type DeltaPump struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []string
	closed bool
	done   chan struct{}
}

// NewDeltaPump starts the writer goroutine; write receives chunks in push order.
func NewDeltaPump(write func(string)) *DeltaPump {
	p := &DeltaPump{done: make(chan struct{})}
	p.cond = sync.NewCond(&p.mu)
	go p.run(write)
	return p
}

// Push queues a chunk. Chunks pushed after Close are dropped.
func (p *DeltaPump) Push(chunk string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.queue = append(p.queue, chunk)
	p.cond.Signal()
}

// Close flushes queued chunks and waits for the writer to finish.
func (p *DeltaPump) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Signal()
	p.mu.Unlock()
	<-p.done
}

func (p *DeltaPump) run(write func(string)) {
	defer close(p.done)
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		batch := p.queue
		p.queue = nil
		closed := p.closed
		p.mu.Unlock()

		for _, chunk := range batch {
			write(chunk)
		}
		if closed && len(batch) == 0 {
			return
		}
	}
}
