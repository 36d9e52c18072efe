package universe

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

//transition rule thresholds
const (
	BirthThreshold        = 3
	IsolationThreshold    = 1
	OvercrowdingThreshold = 4
)

//packed cell layout: bit 0 is the alive flag, bits 1-4 hold the live neighbour count
const (
	aliveBit   cell = 0x01
	countShift      = 1
	countMask  cell = 0x1e
	maxCount        = 8
)

var (
	ErrInvalidDimension = errors.New("invalid grid dimension")
	ErrInvalidDensity   = errors.New("invalid density")
)

//neighbourOffsets are the 8 relative (row, col) offsets, the order is fixed
var neighbourOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

type cell uint8

func (c cell) alive() bool {
	return c&aliveBit != 0
}

func (c cell) count() int {
	return int(c&countMask) >> countShift
}

//Coord is the position of the cell in the grid
type Coord struct {
	Row int
	Col int
}

//GridEngine owns the toroidal grid and advances it generation by generation.
//Each cell caches the count of its live neighbours, the cache is seeded once
//on construction and then updated incrementally by the cells that flip.
//
//GridEngine is not safe for concurrent use.
type GridEngine struct {
	rows       int
	cols       int
	cells      []cell
	generation int
	population int
	bands      []workArea
}

//NewGridEngine creates the engine with every cell independently alive with probability density
//nil rng means the time seeded generator
func NewGridEngine(rows int, cols int, density float64, rng *rand.Rand) (*GridEngine, error) {
	if err := checkDimension(rows, cols); err != nil {
		return nil, err
	}
	if math.IsNaN(density) || density < 0 || density > 1 {
		return nil, fmt.Errorf("%w: %v is outside [0,1]", ErrInvalidDensity, density)
	}
	if rng == nil {
		rng = NewRNG(uint64(time.Now().UnixNano()))
	}
	g := newGridEngine(rows, cols)
	for i := range g.cells {
		if rng.Float64() <= density {
			g.cells[i] = aliveBit
		}
	}
	g.seedCounts()
	return g, nil
}

//NewGridEngineFromCells creates the engine with exactly the listed cells alive
//coordinates outside the grid are ignored
func NewGridEngineFromCells(rows int, cols int, alive []Coord) (*GridEngine, error) {
	if err := checkDimension(rows, cols); err != nil {
		return nil, err
	}
	g := newGridEngine(rows, cols)
	for _, c := range alive {
		if c.Row < 0 || c.Col < 0 || c.Row >= rows || c.Col >= cols {
			continue
		}
		g.cells[c.Row*cols+c.Col] = aliveBit
	}
	g.seedCounts()
	return g, nil
}

//NewRNG returns the deterministic generator for the seed
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func checkDimension(rows int, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %v x %v", ErrInvalidDimension, rows, cols)
	}
	return nil
}

func newGridEngine(rows int, cols int) *GridEngine {
	g := &GridEngine{rows: rows, cols: cols, cells: make([]cell, rows*cols)}
	g.bands = []workArea{newWorkArea(0, rows-1)}
	return g
}

//seedCounts is the only full neighbour pass, everything after it is incremental
func (g *GridEngine) seedCounts() {
	g.population = 0
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			i := r*g.cols + c
			if g.cells[i].alive() {
				g.population++
			}
			n := 0
			for _, o := range neighbourOffsets {
				if g.cells[g.index(r, c, o)].alive() {
					n++
				}
			}
			g.cells[i] = g.cells[i]&aliveBit | cell(n)<<countShift
		}
	}
}

//wrap moves the index by offset (-1, 0 or 1) wrapping around the size
func wrap(i int, offset int, size int) int {
	res := i + offset
	if res < 0 {
		return size - 1
	}
	if res == size {
		return 0
	}
	return res
}

func (g *GridEngine) index(r int, c int, o [2]int) int {
	return wrap(r, o[0], g.rows)*g.cols + wrap(c, o[1], g.cols)
}

//Step advances the grid by one generation and returns the cells which changed the state.
//All decisions are taken against the counts of the previous generation (scan phase)
//and only then applied (commit phase), the cells are committed in the reverse scan order.
func (g *GridEngine) Step() []Coord {
	pending := g.scan()
	changes := make([]Coord, 0, len(pending))
	for len(pending) > 0 {
		i := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		g.toggle(i)
		changes = append(changes, Coord{Row: i / g.cols, Col: i % g.cols})
	}
	g.generation++
	return changes
}

//decide reports whether the cell flips in the next generation
func decide(c cell) bool {
	if c == 0 {
		return false
	}
	n := c.count()
	if !c.alive() {
		return n == BirthThreshold
	}
	return n <= IsolationThreshold || n >= OvercrowdingThreshold
}

//toggle flips the cell at index i and updates the counts of its neighbours
func (g *GridEngine) toggle(i int) {
	g.cells[i] ^= aliveBit
	r, c := i/g.cols, i%g.cols
	born := g.cells[i].alive()
	if born {
		g.population++
	} else {
		g.population--
	}
	for _, o := range neighbourOffsets {
		j := g.index(r, c, o)
		n := g.cells[j].count()
		if born {
			n++
		} else {
			n--
		}
		if n < 0 || n > maxCount {
			panic(fmt.Sprintf("universe: neighbour count %v at (%v,%v) is out of range", n, j/g.cols, j%g.cols))
		}
		g.cells[j] = g.cells[j]&aliveBit | cell(n)<<countShift
	}
}

//Rows returns the number of rows
func (g *GridEngine) Rows() int { return g.rows }

//Cols returns the number of columns
func (g *GridEngine) Cols() int { return g.cols }

//Generation returns the number of completed steps
func (g *GridEngine) Generation() int { return g.generation }

//Population returns the number of live cells
func (g *GridEngine) Population() int { return g.population }

//Alive reports whether the cell at r, c is alive
func (g *GridEngine) Alive(r int, c int) bool {
	return g.cells[r*g.cols+c].alive()
}

//NeighborCount returns the cached live neighbour count of the cell at r, c
func (g *GridEngine) NeighborCount(r int, c int) int {
	return g.cells[r*g.cols+c].count()
}

//Snapshot copies the alive flags into the new Area
func (g *GridEngine) Snapshot() Area {
	a := createArea(g.cols, g.rows)
	for r := range a.Entities {
		for c := range a.Entities[r] {
			a.Entities[r][c] = Cell(g.cells[r*g.cols+c].alive())
		}
	}
	return a
}
