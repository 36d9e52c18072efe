package universe

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

type Cell bool

type Area struct {
	Width    int
	Height   int
	Entities [][]Cell
}

//Options represents the Universe's configurable options
type Options struct {
	Width           int     //grid columns
	Height          int     //grid rows
	Density         float64 //probability of the cell to be alive on the random settle
	Seed            uint64  //random seed, 0 means seeded by time
	Workers         int     //goroutines scanning the grid
	Interval        time.Duration
	MaxSteps        int //0 means unlimited
	MaxSkippedTicks int
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	Generation    int
	Population    int
	Changed       int //cells changed on the last step
	RunningMode   RunningState
	IterationTime time.Duration
}

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	Coordinates [][]int //array of [x,y] coordinates
}

//The universe running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 40
	DefHeight             = 15
	DefDensity            = 0.2
	DefMaxSkippedTicks    = 5
)

const (
	RunningStateManual   = 0x0
	RunningStateStep     = 0x1
	RunningStateRun      = 0x2
	RunningStateFinished = 0x3
)

var ErrUnknownTemplate = errors.New("unknown template")

var DefaultUniverseOptions = Options{
	Width:           DefWidth,
	Height:          DefHeight,
	Density:         DefDensity,
	Workers:         DefWorkers,
	Interval:        DefSimulationInterval,
	MaxSteps:        DefMaxSteps,
	MaxSkippedTicks: DefMaxSkippedTicks,
}

//Validate checks the options which can't be fixed by defaults
func (o Options) Validate() error {
	if err := checkDimension(o.Height, o.Width); err != nil {
		return err
	}
	if math.IsNaN(o.Density) || o.Density < 0 || o.Density > 1 {
		return fmt.Errorf("%w: %v is outside [0,1]", ErrInvalidDensity, o.Density)
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("negative max steps: %v", o.MaxSteps)
	}
	return nil
}

//BaseUniverse drives the GridEngine
//implements Universe interface
//the engine is owned by the main loop goroutine, all the commands are executed there
type BaseUniverse struct {
	options Options
	state   struct {
		Status
		runID int //the running cycle which owns the simulation, bumped on every run and stop
		sync.Mutex
	}
	templates struct {
		m map[string]Template
		sync.Mutex
	}
	engine    *GridEngine
	rng       *rand.Rand
	stateCh   chan Status
	views     []Viewer
	controlCh chan func()
	quit      chan struct{}
	closeOnce sync.Once
}

//NewBaseUniverse creates the BaseUniverse instance settled with the random data
func NewBaseUniverse(o *Options, stateCh chan Status) (*BaseUniverse, error) {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	seed := o.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	u := BaseUniverse{
		options:   *o,
		controlCh: make(chan func(), 1),
		quit:      make(chan struct{}),
		stateCh:   stateCh,
		rng:       NewRNG(seed),
	}
	u.templates.m = map[string]Template{}

	e, err := NewGridEngine(o.Height, o.Width, o.Density, u.rng)
	if err != nil {
		return nil, err
	}
	u.install(e)
	go u.mainLoop()
	return &u, nil
}

//NewUniverse creates the Universe
func NewUniverse(o *Options, stateCh chan Status) (Universe, error) {
	u, err := NewBaseUniverse(o, stateCh)
	if err != nil {
		return nil, err
	}
	return u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *BaseUniverse) AddTemplate(tmpl Template) {
	u.templates.Lock()
	u.templates.m[tmpl.Name] = tmpl
	u.templates.Unlock()
}

//SettleTemplate replaces the grid with the one populated by the seeding template, returns immediately
func (u *BaseUniverse) SettleTemplate(name string) error {
	u.templates.Lock()
	tmpl, ok := u.templates.m[name]
	u.templates.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	cells := make([]Coord, 0, len(tmpl.Coordinates))
	for _, v := range tmpl.Coordinates {
		if len(v) < 2 {
			continue
		}
		cells = append(cells, Coord{Row: v[1], Col: v[0]})
	}
	u.send(func() {
		if !u.idle() {
			return
		}
		e, err := NewGridEngineFromCells(u.options.Height, u.options.Width, cells)
		if err != nil {
			return
		}
		u.install(e)
		u.switchRunningState(RunningStateManual)
	})
	return nil
}

//Reseed replaces the grid with the random one using the configured density, returns immediately
func (u *BaseUniverse) Reseed() {
	u.send(func() {
		if !u.idle() {
			return
		}
		e, err := NewGridEngine(u.options.Height, u.options.Width, u.options.Density, u.rng)
		if err != nil {
			return
		}
		u.install(e)
		u.switchRunningState(RunningStateManual)
	})
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *BaseUniverse) RegisterViewer(v Viewer) {
	u.send(func() {
		u.views = append(u.views, v)
		v.Register(u)
		v.Reset(u.engine.Snapshot())
	})
}

//StateCh returns the channel with the universe's status updates
func (u *BaseUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *BaseUniverse) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *BaseUniverse) Options() Options {
	return u.options
}

//Run starts the universe simulation, returns immediately
func (u *BaseUniverse) Run() {
	u.send(u.run)
}

//Stop stops the universe simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (u *BaseUniverse) Stop() {
	u.send(u.stop)
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (u *BaseUniverse) Step() {
	u.send(u.step)
}

//Clear kills all cells and resets all counters, returns immediately
//the Status struct will be written to the stateCh on finish
func (u *BaseUniverse) Clear() {
	u.send(u.clear)
}

//Close stops the main loop and the running cycle, returns immediately
func (u *BaseUniverse) Close() {
	u.closeOnce.Do(func() {
		close(u.quit)
	})
}

//send passes the command to the main loop, the command is dropped when the universe is closed
func (u *BaseUniverse) send(cmd func()) {
	select {
	case u.controlCh <- cmd:
	case <-u.quit:
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *BaseUniverse) mainLoop() {
	for {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case <-u.quit:
			return
		}
	}
}

//install makes the engine current and resets the counters and the views
func (u *BaseUniverse) install(e *GridEngine) {
	e.SetWorkers(u.options.Workers)
	u.engine = e
	u.state.Lock()
	u.state.Generation = e.Generation()
	u.state.Population = e.Population()
	u.state.Changed = 0
	u.state.IterationTime = 0
	u.state.Unlock()
	if len(u.views) == 0 {
		return
	}
	a := e.Snapshot()
	for _, v := range u.views {
		v.Reset(a)
	}
}

func (u *BaseUniverse) currentMode() RunningState {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.RunningMode
}

//idle reports whether the grid can be replaced
func (u *BaseUniverse) idle() bool {
	mode := u.currentMode()
	return mode == RunningStateManual || mode == RunningStateFinished
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *BaseUniverse) switchRunningState(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	st := u.state.Status
	u.state.Unlock()
	if u.stateCh != nil {
		u.stateCh <- st
	}
}

//run starts the universe simulation
//simulation will stop on Stop() calling or when the boundary conditions are reached
//the cycle belongs to the run which started it, the cycle of a stopped run exits even if the universe is running again
func (u *BaseUniverse) run() {
	if u.currentMode() == RunningStateRun {
		return
	}
	u.state.Lock()
	u.state.runID++
	id := u.state.runID
	u.state.Unlock()
	u.switchRunningState(RunningStateRun)
	go func() {
		skipped := 0
		done := make(chan struct{}, 1)
		for {
			mode, owner := u.runningMode(id)
			if !owner || (mode != RunningStateRun && mode != RunningStateStep) {
				return
			}
			if skipped > u.options.MaxSkippedTicks {
				u.switchRunningState(RunningStateFinished)
				return
			}
			//skip the tick if the universe is still in the calculation mode
			if mode != RunningStateStep {
				skipped = 0
				cmd := func() {
					if mode, owner := u.runningMode(id); owner && mode == RunningStateRun {
						u.step()
					}
					done <- struct{}{}
				}
				select {
				case u.controlCh <- cmd:
				case <-u.quit:
					return
				}
				select {
				case <-done:
				case <-u.quit:
					return
				}
			} else {
				skipped++
			}
			if u.options.Interval > 0 {
				select {
				case <-time.After(u.options.Interval):
				case <-u.quit:
					return
				}
			}
		}
	}()
}

//runningMode returns the current mode and reports whether the run id still owns the simulation
func (u *BaseUniverse) runningMode(id int) (RunningState, bool) {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.RunningMode, u.state.runID == id
}

//stop stops the universe running cycle
func (u *BaseUniverse) stop() {
	if u.currentMode() == RunningStateRun {
		u.state.Lock()
		u.state.runID++
		u.state.Unlock()
		u.switchRunningState(RunningStateManual)
	}
}

//step advances the engine by one generation and notifies the views
//the universe is finished when all cells are dead, nothing changed or the steps limit is reached
func (u *BaseUniverse) step() {
	rm := u.currentMode()
	if rm == RunningStateFinished {
		rm = RunningStateManual
	}
	u.switchRunningState(RunningStateStep)

	start := time.Now()
	changes := u.engine.Step()
	u.state.Lock()
	u.state.Generation = u.engine.Generation()
	u.state.Population = u.engine.Population()
	u.state.Changed = len(changes)
	u.state.IterationTime = time.Since(start)
	st := u.state.Status
	u.state.Unlock()

	for _, v := range u.views {
		v.Apply(st, changes)
	}

	maxIter := u.options.MaxSteps
	if st.Population == 0 || len(changes) == 0 || (maxIter != 0 && st.Generation >= maxIter) {
		u.switchRunningState(RunningStateFinished)
		return
	}
	u.switchRunningState(rm)
}

//clear replaces the grid with the empty one, reset all counters
func (u *BaseUniverse) clear() {
	e, err := NewGridEngineFromCells(u.options.Height, u.options.Width, nil)
	if err != nil {
		return
	}
	u.install(e)
	u.switchRunningState(RunningStateManual)
}

//createArea allocate the new area and return the pointer
func createArea(width int, height int) Area {

	area := Area{Width: width, Height: height, Entities: make([][]Cell, height)}
	b := make([]Cell, width*height)
	for i := range area.Entities {
		start := width * i
		area.Entities[i] = b[start : start+width : start+width]
	}
	return area
}
