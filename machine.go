// Package dmgcore wires the CPU, bus, PPU, timer and interrupt
// controller into a single synchronous DMG machine, driven one
// instruction at a time by Step.
package dmgcore

import (
	"github.com/aarnes/dmgcore/cpu"
	"github.com/aarnes/dmgcore/input"
	"github.com/aarnes/dmgcore/memory"
	"github.com/aarnes/dmgcore/video"
)

// Machine is a fully wired DMG core: construct one with NewMachine and
// drive it with Step or RunFrame.
type Machine struct {
	bus *memory.Bus
	cpu *cpu.CPU
}

// NewMachine constructs a machine from a cartridge image and an optional
// BIOS image. If bios is empty, the CPU starts directly in its post-boot
// register state at PC=0x0100 instead of executing the boot ROM.
// presentFrame, if non-nil, is called once per rendered frame with the
// 160*144 shade buffer (each byte in 0-3, 0=darkest).
func NewMachine(cartridge, bios []byte, presentFrame func([]byte)) (*Machine, error) {
	cart, err := memory.NewCartridge(cartridge)
	if err != nil {
		return nil, err
	}

	mbc, err := memory.NewMBC(cart)
	if err != nil {
		return nil, err
	}

	bus := memory.NewBus(mbc, bios)
	if presentFrame != nil {
		bus.PPU().SetPresentCallback(func(fb *video.FrameBuffer) {
			presentFrame(fb.Pixels())
		})
	}

	c := cpu.New(bus, bus.Interrupts())
	if len(bios) == 0 {
		c.SetPostBootState()
		bus.Timer().Seed(0x2AF3) // post-boot divider state, in M-cycle units
	} else {
		c.SetPC(0x0000)
	}

	return &Machine{bus: bus, cpu: c}, nil
}

// Step executes exactly one CPU instruction (or services one pending
// interrupt) and returns the M-cycles it took.
func (m *Machine) Step() (int, error) {
	return m.cpu.Step()
}

// RunFrame steps the machine until at least one full frame (17,556
// M-cycles) has elapsed, returning the total M-cycles consumed. A run
// that hits an IllegalInstruction stops immediately and returns the error
// alongside the cycles consumed so far.
func (m *Machine) RunFrame() (int, error) {
	const cyclesPerFrame = 17556
	total := 0
	for total < cyclesPerFrame {
		cycles, err := m.Step()
		total += cycles
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// SetButton reports a button's held state to the joypad controller. The
// host calls this between Step/RunFrame calls.
func (m *Machine) SetButton(button input.Button, pressed bool) {
	if pressed {
		m.bus.Input().Press(button)
	} else {
		m.bus.Input().Release(button)
	}
}

// FrameBuffer returns the PPU's current framebuffer, for hosts that poll
// instead of registering a present callback.
func (m *Machine) FrameBuffer() *video.FrameBuffer {
	return m.bus.PPU().FrameBuffer()
}
