package main

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/integrii/flaggy"

	"toruslife/src/universe"
	"toruslife/src/view"
)

var (
	templates = []universe.Template{
		{
			"stable",
			"the test sample with 3 stable patterns",
			[][]int{
				{1, 1}, {1, 2},
				{2, 1}, {2, 2},
				{3, 3},
				{4, 2},
				{4, 3},
				{5, 3},
			},
		},
		{
			"blinker",
			"period 2 oscillator",
			[][]int{{2, 1}, {2, 2}, {2, 3}},
		},
		{
			"glider",
			"the glider travelling around the torus",
			[][]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}},
		},
	}
)

type EnvOptions struct {
	interactive bool
	template    string
}

func main() {
	eo, uo := initOptions()

	var stateCh chan universe.Status

	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u, err := universe.NewUniverse(uo, stateCh)
	if err != nil {
		log.Fatalln(err)
	}

	for _, tmpl := range templates {
		u.AddTemplate(tmpl)
	}
	if eo.template != "" {
		if err := u.SettleTemplate(eo.template); err != nil {
			log.Fatalln(err)
		}
	}

	var v universe.Viewer
	if eo.interactive {
		v = view.NewViewTerminal()
	} else {
		fmt.Printf("\"The Life\" game simulation started...\n")
		v = view.NewConsoleOut()
	}
	u.RegisterViewer(v)
	v.Start()
	u.Close()
}

func initOptions() (eo *EnvOptions, uo *universe.Options) {

	uo = &universe.DefaultUniverseOptions
	templateNames := make([]string, 0, len(templates))
	for _, t := range templates {
		templateNames = append(templateNames, t.Name)
	}
	sort.Strings(templateNames)
	eo = &EnvOptions{}
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&uo.Width, "x", "width", "Width of a simulation field (columns)")
	flaggy.Int(&uo.Height, "y", "height", "Height of a simulation field (rows)")
	flaggy.Float64(&uo.Density, "d", "density", "Probability of the cell to be alive on the random settle, in [0,1]")
	flaggy.UInt64(&uo.Seed, "", "seed", "Random seed, 0 means seeded by time")
	flaggy.Int(&uo.Workers, "w", "workers", "Goroutines scanning the grid on each step")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 means unlimited")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.String(&eo.template, "t", "template", "Settle with the template instead of random data ["+strings.Join(templateNames, "|")+"]")

	flaggy.Parse()

	if err := uo.Validate(); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	return
}
