package fluid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum cell count to dispatch a stage to workers.
// Below this, running the rows inline is faster than the channel round trips.
const parallelThreshold = 64 * 64

// rowChunk is a half-open row range handed to one worker.
type rowChunk struct {
	y0, y1 int
	fn     func(y0, y1 int)
}

// workerPool runs per-row kernels on persistent goroutines. Every run call
// is a full barrier: it returns only after all chunks have completed, so the
// next stage always reads fully committed buffers.
type workerPool struct {
	numWorkers int

	workChan chan rowChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// newWorkerPool creates a pool; workers <= 0 means GOMAXPROCS.
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: workers}
}

func (p *workerPool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.y0, chunk.y1)
			p.doneChan <- struct{}{}
		}
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if p == nil || !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// run calls fn over [0,rows) split into contiguous row ranges. A nil pool,
// a single worker or a small grid runs inline on the caller's goroutine.
func (p *workerPool) run(rows, width int, fn func(y0, y1 int)) {
	if rows <= 0 {
		return
	}
	if p == nil || p.numWorkers <= 1 || rows*width < parallelThreshold {
		fn(0, rows)
		return
	}
	p.start()

	chunkSize := (rows + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		y0 := w * chunkSize
		y1 := min(y0+chunkSize, rows)
		if y0 >= y1 {
			break
		}
		p.workChan <- rowChunk{y0: y0, y1: y1, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
