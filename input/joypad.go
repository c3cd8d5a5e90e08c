// Package input implements the DMG joypad register (P1/JOYP).
package input

import "github.com/aarnes/dmgcore/bit"

// Button identifies one of the eight DMG buttons.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Controller tracks button state and assembles the P1 register from the
// CPU's column selection.
type Controller struct {
	selectBits byte // bits 4-5 of P1, as last written by the CPU
	buttons    byte // bit=0 -> pressed, for A/B/Select/Start
	dpad       byte // bit=0 -> pressed, for Right/Left/Up/Down

	raiseIRQ func()
}

// New returns a controller with every button released.
func New(raiseIRQ func()) *Controller {
	return &Controller{
		selectBits: 0x30,
		buttons:    0x0F,
		dpad:       0x0F,
		raiseIRQ:   raiseIRQ,
	}
}

// Read assembles the current P1 register value.
func (c *Controller) Read() byte {
	result := byte(0xC0) // bits 6-7 always read as 1
	result |= c.selectBits

	selectDpad := !bit.IsSet(4, c.selectBits)
	selectButtons := !bit.IsSet(5, c.selectBits)

	switch {
	case selectButtons && selectDpad:
		result |= c.buttons & c.dpad & 0x0F
	case selectButtons:
		result |= c.buttons & 0x0F
	case selectDpad:
		result |= c.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write updates the column-select bits (4-5); the rest of P1 is read-only
// from the CPU's perspective.
func (c *Controller) Write(value byte) {
	c.selectBits = value & 0x30
}

// Press marks a button as held down, raising the Joypad interrupt on a
// released-to-pressed transition.
func (c *Controller) Press(b Button) {
	before := c.Read()
	c.setBit(b, false)
	after := c.Read()

	// a 1->0 transition on any bit that's currently visible through the
	// selected column(s) raises the interrupt.
	if before&^after&0x0F != 0 {
		if c.raiseIRQ != nil {
			c.raiseIRQ()
		}
	}
}

// Release marks a button as no longer held.
func (c *Controller) Release(b Button) {
	c.setBit(b, true)
}

func (c *Controller) setBit(b Button, released bool) {
	switch b {
	case Right:
		c.dpad = bit.SetIf(0, c.dpad, released)
	case Left:
		c.dpad = bit.SetIf(1, c.dpad, released)
	case Up:
		c.dpad = bit.SetIf(2, c.dpad, released)
	case Down:
		c.dpad = bit.SetIf(3, c.dpad, released)
	case A:
		c.buttons = bit.SetIf(0, c.buttons, released)
	case B:
		c.buttons = bit.SetIf(1, c.buttons, released)
	case Select:
		c.buttons = bit.SetIf(2, c.buttons, released)
	case Start:
		c.buttons = bit.SetIf(3, c.buttons, released)
	}
}
