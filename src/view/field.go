package view

import (
	"bytes"
	"sync"

	"github.com/logrusorgru/aurora"

	"toruslife/src/universe"
)

//field keeps the visual state of each cell
//it is built from the whole area once and then kept in sync by toggling the changed cells
type field struct {
	sync.Mutex
	width  int
	height int
	lit    []bool
}

//reset copies the area
func (f *field) reset(a universe.Area) {
	f.Lock()
	defer f.Unlock()
	f.width, f.height = a.Width, a.Height
	f.lit = make([]bool, a.Width*a.Height)
	for y, l := range a.Entities {
		for x, e := range l {
			f.lit[y*a.Width+x] = bool(e)
		}
	}
}

//toggle flips every reported cell once
func (f *field) toggle(changes []universe.Coord) {
	f.Lock()
	defer f.Unlock()
	for _, c := range changes {
		if c.Row < 0 || c.Col < 0 || c.Row >= f.height || c.Col >= f.width {
			continue
		}
		i := c.Row*f.width + c.Col
		f.lit[i] = !f.lit[i]
	}
}

func (f *field) isLit(row int, col int) bool {
	f.Lock()
	defer f.Unlock()
	return f.lit[row*f.width+col]
}

//render draws the field cropped by maxW x maxH
//the last visible line is replaced with the warning when the field is cropped
func (f *field) render(maxW int, maxH int, liveFiller string, deadFiller string) string {
	f.Lock()
	defer f.Unlock()

	crop := f.width > maxW || f.height > maxH

	var b bytes.Buffer
	for y := 0; y < f.height; y++ {
		//discard the data outside the view area
		if y >= maxH {
			break
		}
		//line feed char
		if y != 0 {
			b.WriteByte(10)
		}
		if crop && y == (maxH-1) {
			b.WriteString(aurora.Red("The field size is larger than the viewing area").BgBlack().String())
			break
		}
		for x := 0; x < f.width && x < maxW; x++ {
			if f.lit[y*f.width+x] {
				b.WriteString(liveFiller)
			} else {
				b.WriteString(deadFiller)
			}
		}
	}
	return b.String()
}
