package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/hexcraft/craft"
)

// parallelThreshold is the minimum craft count to update crafts on the
// worker pool. Below this, single-threaded is faster due to goroutine
// overhead.
const parallelThreshold = 16

// workChunk represents a range of crafts for a worker to process.
type workChunk struct {
	start, end int
	dt         float32
}

// parallelState holds the worker pool used for craft updates. Crafts share
// no state, so each can run its power and cell step on any worker.
type parallelState struct {
	crafts     []*craft.Craft
	numWorkers int
	threshold  int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState() *parallelState {
	return &parallelState{
		numWorkers: runtime.GOMAXPROCS(0),
		threshold:  parallelThreshold,
		crafts:     make([]*craft.Craft, 0, 64),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *parallelState) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.updateChunk(chunk.start, chunk.end, chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// updateChunk advances crafts[i0:i1] by one tick.
func (p *parallelState) updateChunk(i0, i1 int, dt float32) {
	for _, c := range p.crafts[i0:i1] {
		c.Update(dt)
	}
}

// update advances every collected craft, on the pool when there are enough.
func (p *parallelState) update(dt float32) {
	n := len(p.crafts)
	if n == 0 {
		return
	}
	if n < p.threshold || p.numWorkers < 2 {
		p.updateChunk(0, n, dt)
		return
	}

	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := range p.numWorkers {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, dt: dt}
		dispatched++
	}

	for range dispatched {
		<-p.doneChan
	}
}
