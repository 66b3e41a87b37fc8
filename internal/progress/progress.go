// Progress reporting for long running embed/extract loops
package progress

import (
	"fmt"
	"io"
)

// Reporter receives progress of a single operation. total is the number of
// payload bytes, done how many of them have been processed so far.
type Reporter interface {
	Start(total int64)
	Update(done int64)
	Finish()
}

// Nop discards all progress.
var Nop Reporter = nop{}

type nop struct{}

func (nop) Start(int64)  {}
func (nop) Update(int64) {}
func (nop) Finish()      {}

// Bar draws a scale of percentages once and then one "## " mark under
// each step of the scale as it is reached:
//
//	progress:
//	10 20 30 40 50 60 70 80 90 100 [%]
//	## ## ## ## ## ## ## ## ## ##
type Bar struct {
	w     io.Writer
	step  int
	total int64
	shown int // percentage already marked
	open  bool
}

// Returns a progress bar writing to w. step must divide 100, otherwise 10 is used.
func NewBar(w io.Writer, step int) *Bar {
	if step <= 0 || step > 100 || 100%step != 0 {
		step = 10
	}
	return &Bar{w: w, step: step}
}

func (b *Bar) Start(total int64) {
	b.total = total
	b.shown = 0
	b.open = true

	// Draw the scale
	fmt.Fprintln(b.w, "progress:")
	for i := 1; i <= 100/b.step; i++ {
		fmt.Fprintf(b.w, "%02d ", i*b.step)
	}
	fmt.Fprintln(b.w, "[%]")
}

func (b *Bar) Update(done int64) {
	if !b.open || b.total <= 0 {
		return
	}
	pct := int(done * 100 / b.total)
	for b.shown+b.step <= pct && b.shown < 100 {
		fmt.Fprint(b.w, "## ")
		b.shown += b.step
	}
	if b.shown == 100 {
		fmt.Fprintln(b.w)
		b.open = false
	}
}

func (b *Bar) Finish() {
	if !b.open {
		return
	}
	b.Update(b.total)
	if b.open {
		// total was zero, nothing to fill in
		fmt.Fprintln(b.w)
		b.open = false
	}
}
