package universe

import (
	"golang.org/x/sync/errgroup"
)

/*
	The scan phase of the step split into horizontal bands each of which can be scanned by individual goroutine.
	The scan only reads the packed cells so the bands never interfere,
	the commit is always done by the caller goroutine.
*/

const (
	DefWorkers          = 1 //default scanning goroutines
	DefMinRowsPerWorker = 3 //minimum rows for one worker
)

//workArea describes the rows band and buffers its decisions
type workArea struct {
	y1      int
	y2      int
	pending []int
}

//newWorkArea creates new work area for the rows y1..y2
func newWorkArea(y1 int, y2 int) workArea {
	return workArea{y1: y1, y2: y2}
}

//SetWorkers splits the scan phase into the bands for up to workers goroutines
//returns the number of bands in use, workers <= 1 means the sequential scan
func (g *GridEngine) SetWorkers(workers int) int {
	if workers < 1 {
		workers = 1
	}
	linesPerWorker := g.rows / workers
	if linesPerWorker < DefMinRowsPerWorker {
		linesPerWorker = DefMinRowsPerWorker
	} else if linesPerWorker*workers < g.rows {
		linesPerWorker++
	}
	g.bands = make([]workArea, 0, workers)
	for y1 := 0; y1 < g.rows; y1 += linesPerWorker {
		y2 := y1 + linesPerWorker - 1
		if y2 > g.rows-1 {
			y2 = g.rows - 1
		}
		g.bands = append(g.bands, newWorkArea(y1, y2))
	}
	return len(g.bands)
}

//Workers returns the number of scan bands
func (g *GridEngine) Workers() int {
	return len(g.bands)
}

//scan collects the indexes of the cells which flip, in the row-major order
func (g *GridEngine) scan() []int {
	if len(g.bands) == 1 {
		g.scanArea(&g.bands[0])
		return g.bands[0].pending
	}
	var eg errgroup.Group
	for i := range g.bands {
		wa := &g.bands[i]
		eg.Go(func() error {
			g.scanArea(wa)
			return nil
		})
	}
	//scanArea never fails
	_ = eg.Wait()
	total := 0
	for _, wa := range g.bands {
		total += len(wa.pending)
	}
	pending := make([]int, 0, total)
	for _, wa := range g.bands {
		pending = append(pending, wa.pending...)
	}
	return pending
}

//scanArea decides the cells inside the work area
func (g *GridEngine) scanArea(wa *workArea) {
	wa.pending = wa.pending[:0]
	cells := g.cells[wa.y1*g.cols : (wa.y2+1)*g.cols]
	base := wa.y1 * g.cols
	for i, c := range cells {
		if decide(c) {
			wa.pending = append(wa.pending, base+i)
		}
	}
}
