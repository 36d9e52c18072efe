package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/logrusorgru/aurora"

	"toruslife/src/universe"
)

//ConsoleOut is the headless viewer, prints the progress to the output
type ConsoleOut struct {
	u         universe.Universe
	w         io.Writer
	every     int
	startTime time.Time
	ready     chan struct{}
	once      sync.Once
}

//NewConsoleOut creates the viewer printing to stdout
func NewConsoleOut() *ConsoleOut {
	return NewConsoleOutTo(os.Stdout, 10)
}

//NewConsoleOutTo creates the viewer printing every n-th generation to w
func NewConsoleOutTo(w io.Writer, every int) *ConsoleOut {
	if every <= 0 {
		every = 1
	}
	return &ConsoleOut{w: w, every: every, ready: make(chan struct{})}
}

func (c *ConsoleOut) Reset(a universe.Area) {}

func (c *ConsoleOut) Apply(st universe.Status, changes []universe.Coord) {
	if st.Generation%c.every == 0 {
		_, _ = fmt.Fprintf(c.w, "  Generation: %v, population: %v, changed: %v\n", st.Generation, st.Population, len(changes))
	}
}

//Register binds the viewer to the universe, the viewer serves the first universe only
func (c *ConsoleOut) Register(u universe.Universe) {
	c.once.Do(func() {
		c.u = u
		o := c.u.Options()
		_, _ = fmt.Fprintln(c.w, "Running configuration:")
		c.printHashData(map[string]interface{}{
			"Dimension":      fmt.Sprintf("%v x %v", o.Width, o.Height),
			"Density":        o.Density,
			"Workers":        o.Workers,
			"Interval":       o.Interval,
			"Max iterations": fmt.Sprintf("%v steps", o.MaxSteps),
		})
		close(c.ready)
	})
}

//Start runs the simulation and blocks until it is finished
//the universe must publish its status, without the status channel nothing is run
func (c *ConsoleOut) Start() {
	<-c.ready
	stateCh := c.u.StateCh()
	if stateCh == nil {
		_, _ = fmt.Fprintln(c.w, aurora.Red("The universe has no status channel, nothing to wait for"))
		return
	}
	c.startTime = time.Now()
	_, _ = fmt.Fprintln(c.w, "\nSimulation started...")
	c.u.Run()
	for st := range stateCh {
		if st.RunningMode == universe.RunningStateFinished {
			c.finish(st)
			return
		}
	}
}

func (c *ConsoleOut) finish(st universe.Status) {
	totalTime := time.Since(c.startTime).Round(time.Millisecond)
	_, _ = fmt.Fprintln(c.w, aurora.Bold("\nFinished:"))
	c.printHashData(map[string]interface{}{
		"Last generation": st.Generation,
		"Total time":      totalTime,
		"Live cells":      st.Population,
	})
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
