package universe

type Universe interface {
	Status() Status
	Options() Options
	StateCh() chan Status
	AddTemplate(tmpl Template)
	SettleTemplate(name string) error
	Reseed()
	RegisterViewer(v Viewer)
	Run()
	Stop()
	Step()
	Clear()
	Close()
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
//Reset is called with the whole field whenever the new grid is installed,
//Apply is called after every step with the cells which changed the state
type Viewer interface {
	Register(u Universe)
	Reset(a Area)
	Apply(st Status, changes []Coord)
	Start()
}
