// Package cpu implements the DMG's LR35902 instruction decoder and
// executor. CPU.Step fetches, decodes and executes exactly one
// instruction, advances every bus-owned peripheral by the M-cycles it
// took, and services at most one pending interrupt - the whole
// machine's synchronous pipeline hangs off repeated calls to Step.
package cpu

import "github.com/aarnes/dmgcore/addr"

// Bus is everything the CPU needs from the rest of the machine: memory
// access, and the place to report how many M-cycles just elapsed so
// peripherals can catch up.
type Bus interface {
	Read8(address uint16) byte
	Write8(address uint16, value byte)
	Read16(address uint16) uint16
	Write16(address uint16, value uint16)
	Tick(cycles int)
}

// InterruptSource is the subset of interrupt.Controller the CPU consults
// to decide whether to wake from HALT and which ISR to vector to.
type InterruptSource interface {
	Pending() (source addr.Interrupt, ok bool)
	AnyPending() bool
	Clear(source addr.Interrupt)
}

// CPU is the LR35902 core: registers, interrupt master enable, and the
// HALT/STOP low-power states.
type CPU struct {
	reg registers
	bus Bus
	irq InterruptSource

	ime          bool // interrupt master enable
	imeScheduled bool // EI takes effect after the *next* instruction, not immediately

	halted bool
}

// New returns a CPU wired to bus for memory access and irq for interrupt
// arbitration. Registers start zeroed; callers that don't supply a BIOS
// image must call SetPostBootState to match the DMG's documented
// post-boot-ROM register values.
func New(bus Bus, irq InterruptSource) *CPU {
	return &CPU{bus: bus, irq: irq}
}

// SetPostBootState initializes registers to the values the real boot ROM
// leaves behind, for BIOS-less startup.
func (c *CPU) SetPostBootState() {
	c.reg.setAF(0x01B0)
	c.reg.setBC(0x0013)
	c.reg.setDE(0x00D8)
	c.reg.setHL(0x014D)
	c.reg.sp = 0xFFFE
	c.reg.pc = 0x0100
}

// PC returns the program counter, for debugging and tests.
func (c *CPU) PC() uint16 { return c.reg.pc }

// SetPC sets the program counter directly, used when starting execution
// from a BIOS image at address 0.
func (c *CPU) SetPC(pc uint16) { c.reg.pc = pc }

// Step executes exactly one instruction (or services one pending
// interrupt, or spins one M-cycle while halted) and returns the number of
// M-cycles it took. The bus's peripherals are advanced by that same count
// before Step returns.
func (c *CPU) Step() (int, error) {
	cycles, err := c.step()
	c.bus.Tick(cycles)
	return cycles, err
}

func (c *CPU) step() (int, error) {
	if c.halted {
		if c.irq.AnyPending() {
			c.halted = false
		} else {
			return 1, nil
		}
	}

	// an EI executed by the previous step takes effect once this step's
	// instruction has committed (unless that instruction was DI).
	eiPending := c.imeScheduled

	if c.ime {
		if source, ok := c.irq.Pending(); ok {
			return c.serviceInterrupt(source), nil
		}
	}

	opcode := c.fetch8()

	if illegalOpcodes[opcode] {
		return 1, &IllegalInstruction{Opcode: opcode, PC: c.reg.pc - 1}
	}

	var cycles int
	if opcode == 0xCB {
		cb := c.fetch8()
		cycles = c.executeCB(cb)
	} else {
		cycles = c.execute(opcode)
	}

	if eiPending && c.imeScheduled {
		c.ime = true
		c.imeScheduled = false
	}
	return cycles, nil
}

// serviceInterrupt pushes PC, clears IME and the source's IF bit, and
// jumps to its vector. Always takes 5 M-cycles on real hardware.
func (c *CPU) serviceInterrupt(source addr.Interrupt) int {
	c.ime = false
	c.irq.Clear(source)
	c.push16(c.reg.pc)
	c.reg.pc = source.Vector()
	return 5
}

func (c *CPU) fetch8() byte {
	v := c.bus.Read8(c.reg.pc)
	c.reg.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	v := c.bus.Read16(c.reg.pc)
	c.reg.pc += 2
	return v
}

func (c *CPU) push16(v uint16) {
	c.reg.sp -= 2
	c.bus.Write16(c.reg.sp, v)
}

func (c *CPU) pop16() uint16 {
	v := c.bus.Read16(c.reg.sp)
	c.reg.sp += 2
	return v
}

// readR8 reads operand8 index idx (r[z] or r[y] in the canonical tables).
// Index 6 is (HL), routed through the bus instead of a register field.
func (c *CPU) readR8(idx byte) byte {
	switch idx {
	case r8B:
		return c.reg.b
	case r8C:
		return c.reg.c
	case r8D:
		return c.reg.d
	case r8E:
		return c.reg.e
	case r8H:
		return c.reg.h
	case r8L:
		return c.reg.l
	case r8HLIndirect:
		return c.bus.Read8(c.reg.hl())
	default:
		return c.reg.a
	}
}

func (c *CPU) writeR8(idx byte, v byte) {
	switch idx {
	case r8B:
		c.reg.b = v
	case r8C:
		c.reg.c = v
	case r8D:
		c.reg.d = v
	case r8E:
		c.reg.e = v
	case r8H:
		c.reg.h = v
	case r8L:
		c.reg.l = v
	case r8HLIndirect:
		c.bus.Write8(c.reg.hl(), v)
	default:
		c.reg.a = v
	}
}

// readRP reads register pair p using the BC/DE/HL/SP table (rp[p]).
func (c *CPU) readRP(p byte) uint16 {
	switch p {
	case rpBC:
		return c.reg.bc()
	case rpDE:
		return c.reg.de()
	case rpHL:
		return c.reg.hl()
	default:
		return c.reg.sp
	}
}

func (c *CPU) writeRP(p byte, v uint16) {
	switch p {
	case rpBC:
		c.reg.setBC(v)
	case rpDE:
		c.reg.setDE(v)
	case rpHL:
		c.reg.setHL(v)
	default:
		c.reg.sp = v
	}
}

// readRP2/writeRP2 use the BC/DE/HL/AF table (rp2[p]), for PUSH/POP only.
func (c *CPU) readRP2(p byte) uint16 {
	switch p {
	case rp2BC:
		return c.reg.bc()
	case rp2DE:
		return c.reg.de()
	case rp2HL:
		return c.reg.hl()
	default:
		return c.reg.af()
	}
}

func (c *CPU) writeRP2(p byte, v uint16) {
	switch p {
	case rp2BC:
		c.reg.setBC(v)
	case rp2DE:
		c.reg.setDE(v)
	case rp2HL:
		c.reg.setHL(v)
	default:
		c.reg.setAF(v)
	}
}

// checkCC evaluates condition code y (NZ, Z, NC, C).
func (c *CPU) checkCC(y byte) bool {
	switch y {
	case ccNZ:
		return !c.reg.flag(FlagZ)
	case ccZ:
		return c.reg.flag(FlagZ)
	case ccNC:
		return !c.reg.flag(FlagC)
	default:
		return c.reg.flag(FlagC)
	}
}
