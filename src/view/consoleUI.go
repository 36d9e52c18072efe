package view

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"toruslife/src/universe"
)

const (
	sidebarWidth    = 28
	headerHeight    = 3
	helpHeight      = 2
	minScreenHeight = 20
)

//command is the key bound to the universe action
type command struct {
	key    interface{}
	label  string
	descr  string
	action func(u universe.Universe)
}

var commands = []command{
	{gocui.KeyCtrlC, "^C", "Exit", nil},
	{'n', "N", "Next step", universe.Universe.Step},
	{'r', "R", "Run", universe.Universe.Run},
	{'s', "S", "Stop", universe.Universe.Stop},
	{'c', "C", "Clear", universe.Universe.Clear},
	{'w', "W", "Settle with random", universe.Universe.Reseed},
}

var modeNames = map[universe.RunningState]string{
	universe.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
	universe.RunningStateStep:     "do the step",
	universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
	universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
}

//rect is the view position in the gocui coordinates
type rect struct {
	x0, y0, x1, y1 int
}

//panel is the framed gocui view redrawn on every refresh
type panel struct {
	name  string
	title string
	place func(maxX, maxY int) rect
	draw  func(t *ConsoleUI, v *gocui.View)
}

//the sidebar is split in halves between the configuration and the status, the field takes the rest
var panels = []panel{
	{"configuration", "Configuration", func(maxX, maxY int) rect {
		return rect{0, headerHeight, sidebarWidth, headerHeight + sidebarSplit(maxY)}
	}, (*ConsoleUI).drawConfiguration},
	{"status", "Status", func(maxX, maxY int) rect {
		return rect{0, headerHeight + sidebarSplit(maxY) + 1, sidebarWidth, maxY - headerHeight - helpHeight}
	}, (*ConsoleUI).drawStatus},
	{"battlefield", "Torus", func(maxX, maxY int) rect {
		return rect{sidebarWidth + 1, headerHeight, maxX - 1, maxY - headerHeight - helpHeight}
	}, (*ConsoleUI).drawField},
}

func sidebarSplit(maxY int) int {
	return (maxY - 2*headerHeight - helpHeight) / 2
}

//ConsoleUI is the interactive terminal viewer
//the field panel is drawn from the field which is toggled by the reported changes only
type ConsoleUI struct {
	u          universe.Universe
	g          *gocui.Gui
	f          field
	liveFiller string
	deadFiller string
}

func NewViewTerminal() *ConsoleUI {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}
	t := &ConsoleUI{
		g:          g,
		liveFiller: aurora.Green("█").BgBrightGreen().String(),
		deadFiller: "░",
	}
	g.SetManagerFunc(t.layout)
	for _, c := range commands {
		if err := g.SetKeybinding("", c.key, gocui.ModNone, t.handler(c)); err != nil {
			log.Panicln(err)
		}
	}
	return t
}

func (t *ConsoleUI) handler(c command) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if c.action == nil {
			return gocui.ErrQuit
		}
		if t.u != nil {
			c.action(t.u)
		}
		return nil
	}
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
}

func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Reset(a universe.Area) {
	t.f.reset(a)
	t.g.Update(t.redraw)
}

func (t *ConsoleUI) Apply(_ universe.Status, changes []universe.Coord) {
	t.f.toggle(changes)
	t.g.Update(t.redraw)
}

//redraw refreshes all the panels, must be called from the gocui loop
func (t *ConsoleUI) redraw(g *gocui.Gui) error {
	for _, p := range panels {
		v, err := g.View(p.name)
		if err != nil {
			continue
		}
		v.Clear()
		p.draw(t, v)
	}
	return nil
}

func (t *ConsoleUI) drawField(v *gocui.View) {
	maxW, maxH := v.Size()
	_, _ = fmt.Fprint(v, t.f.render(maxW, maxH, t.liveFiller, t.deadFiller))
}

func (t *ConsoleUI) drawStatus(v *gocui.View) {
	if t.u == nil {
		return
	}
	s := t.u.Status()
	writeProps(v,
		"Generation", s.Generation,
		"Live Cells", s.Population,
		"Changed", s.Changed,
		"Evaluation time", s.IterationTime.Round(time.Microsecond),
		"Mode", modeNames[s.RunningMode],
	)
}

func (t *ConsoleUI) drawConfiguration(v *gocui.View) {
	if t.u == nil {
		return
	}
	c := t.u.Options()
	writeProps(v,
		"Dimension", fmt.Sprintf("%v x %v", c.Width, c.Height),
		"Density", c.Density,
		"Workers", c.Workers,
		"Interval", c.Interval,
		"Iterations", fmt.Sprintf("%v steps", c.MaxSteps),
	)
}

//writeProps prints name, value pairs one per line
func writeProps(v *gocui.View, kv ...interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		_, _ = fmt.Fprintf(v, " %s: %v\n", aurora.Green(kv[i]), kv[i+1])
	}
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if maxY < minScreenHeight {
		for _, p := range panels {
			_ = g.DeleteView(p.name)
		}
		return t.header(g, maxX, maxY, "Terminal height too small")
	}
	if err := t.header(g, maxX, headerHeight, "\"The Life\" game on the torus"); err != nil {
		return err
	}

	for _, p := range panels {
		r := p.place(maxX, maxY)
		v, err := g.SetView(p.name, r.x0, r.y0, r.x1, r.y1)
		if err == nil {
			continue
		}
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = p.title
		v.Frame = true
		p.draw(t, v)
	}

	v, err := g.SetView("help", -1, maxY-headerHeight-helpHeight, maxX, maxY-headerHeight)
	if err == gocui.ErrUnknownView {
		v.Frame = false
		_, _ = fmt.Fprintln(v, helpLine(commands))
	} else if err != nil {
		return err
	}
	return nil
}

//header draws the banner with the text centered
func (t *ConsoleUI) header(g *gocui.Gui, maxX int, height int, text string) error {
	if maxX < len(text) {
		return fmt.Errorf("terminal width %v is too small", maxX)
	}
	v, err := g.SetView("header", -1, -1, maxX+1, height)
	if err == gocui.ErrUnknownView {
		v.Frame = false
		v.BgColor = gocui.ColorCyan
		v.FgColor = gocui.ColorBlack
	} else if err != nil {
		return err
	}
	v.Clear()
	_, _ = fmt.Fprint(v, centered(text, maxX, height))
	return nil
}

//centered pads the text to the middle of the width x height box
func centered(text string, width int, height int) string {
	pad := (width - len(text)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/2) + strings.Repeat(" ", pad) + text
}

func helpLine(cs []command) string {
	keys := make([]string, 0, len(cs))
	for _, c := range cs {
		keys = append(keys, aurora.Green(c.label).String()+": "+c.descr)
	}
	return "KEYBINDINGS: " + strings.Join(keys, ", ")
}
