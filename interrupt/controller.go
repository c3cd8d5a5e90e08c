// Package interrupt implements the DMG's interrupt controller: the IE/IF
// register pair and the priority arbitration the CPU consults between
// instructions.
package interrupt

import "github.com/aarnes/dmgcore/addr"

// sources lists the five interrupt bits in hardware priority order
// (lowest-numbered bit wins when more than one is pending).
var sources = [5]addr.Interrupt{addr.VBlank, addr.LCDSTAT, addr.Timer, addr.Serial, addr.Joypad}

// Controller holds the Interrupt Enable (IE) and Interrupt Flag (IF)
// registers and arbitrates which source should be serviced next.
type Controller struct {
	ie byte
	f  byte
}

// New returns a freshly powered-on interrupt controller, with IF's
// always-set upper bits already in place.
func New() *Controller {
	return &Controller{f: 0xE0}
}

// Raise sets the IF bit for the given source.
func (c *Controller) Raise(source addr.Interrupt) {
	c.f |= byte(source)
}

// Pending returns the lowest-numbered interrupt source for which both the
// IE and IF bits are set, or ok=false if none is pending.
func (c *Controller) Pending() (source addr.Interrupt, ok bool) {
	active := c.ie & c.f
	for _, s := range sources {
		if active&byte(s) != 0 {
			return s, true
		}
	}
	return 0, false
}

// AnyPending reports whether (IE & IF) != 0, regardless of priority -
// used by HALT to decide when to wake up.
func (c *Controller) AnyPending() bool {
	return c.ie&c.f != 0
}

// Clear clears only the IF bit belonging to source, as done when the CPU
// vectors to its ISR.
func (c *Controller) Clear(source addr.Interrupt) {
	c.f &^= byte(source)
}

// ReadIE returns the current IE register value.
func (c *Controller) ReadIE() byte {
	return c.ie
}

// WriteIE sets the IE register value.
func (c *Controller) WriteIE(value byte) {
	c.ie = value
}

// ReadIF returns the current IF register value. The top three bits always
// read back as 1, matching hardware.
func (c *Controller) ReadIF() byte {
	return c.f | 0xE0
}

// WriteIF sets the IF register value (low 5 bits only are meaningful).
func (c *Controller) WriteIF(value byte) {
	c.f = value
}
