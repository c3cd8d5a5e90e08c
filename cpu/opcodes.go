package cpu

import "github.com/aarnes/dmgcore/addr"

// execute dispatches an unprefixed opcode using the canonical x/y/z/p/q
// decomposition (see decode.go) and returns the M-cycles it took.
func (c *CPU) execute(opcode byte) int {
	x, y, z, p, q := decodeFields(opcode)

	switch x {
	case 0:
		return c.executeBlock0(y, z, p, q)
	case 1:
		return c.executeBlock1(y, z)
	case 2:
		return c.executeBlock2(y, z)
	default:
		return c.executeBlock3(y, z, p, q)
	}
}

func (c *CPU) executeBlock0(y, z, p, q byte) int {
	switch z {
	case 0:
		switch {
		case y == 0: // NOP
			return 1
		case y == 1: // LD (a16),SP
			addr := c.fetch16()
			c.bus.Write16(addr, c.reg.sp)
			return 5
		case y == 2: // STOP
			c.fetch8() // STOP's second byte is conventionally 0x00 and ignored
			c.bus.Write8(addr.DIV, 0)
			return 1
		case y == 3: // JR d8
			offset := int8(c.fetch8())
			c.reg.pc = uint16(int32(c.reg.pc) + int32(offset))
			return 3
		default: // JR cc,d8
			offset := int8(c.fetch8())
			if c.checkCC(y - 4) {
				c.reg.pc = uint16(int32(c.reg.pc) + int32(offset))
				return 3
			}
			return 2
		}
	case 1:
		if q == 0 { // LD rp,d16
			c.writeRP(p, c.fetch16())
			return 3
		}
		c.addHL(c.readRP(p)) // ADD HL,rp
		return 2
	case 2:
		addr := c.reg.hl()
		switch {
		case q == 0 && p == 0: // LD (BC),A
			c.bus.Write8(c.reg.bc(), c.reg.a)
		case q == 0 && p == 1: // LD (DE),A
			c.bus.Write8(c.reg.de(), c.reg.a)
		case q == 0 && p == 2: // LD (HL+),A
			c.bus.Write8(addr, c.reg.a)
			c.reg.setHL(addr + 1)
		case q == 0 && p == 3: // LD (HL-),A
			c.bus.Write8(addr, c.reg.a)
			c.reg.setHL(addr - 1)
		case q == 1 && p == 0: // LD A,(BC)
			c.reg.a = c.bus.Read8(c.reg.bc())
		case q == 1 && p == 1: // LD A,(DE)
			c.reg.a = c.bus.Read8(c.reg.de())
		case q == 1 && p == 2: // LD A,(HL+)
			c.reg.a = c.bus.Read8(addr)
			c.reg.setHL(addr + 1)
		case q == 1 && p == 3: // LD A,(HL-)
			c.reg.a = c.bus.Read8(addr)
			c.reg.setHL(addr - 1)
		}
		return 2
	case 3:
		if q == 0 { // INC rp
			c.writeRP(p, c.readRP(p)+1)
		} else { // DEC rp
			c.writeRP(p, c.readRP(p)-1)
		}
		return 2
	case 4: // INC r[y]
		c.writeR8(y, c.inc8(c.readR8(y)))
		if y == r8HLIndirect {
			return 3
		}
		return 1
	case 5: // DEC r[y]
		c.writeR8(y, c.dec8(c.readR8(y)))
		if y == r8HLIndirect {
			return 3
		}
		return 1
	case 6: // LD r[y],d8
		c.writeR8(y, c.fetch8())
		if y == r8HLIndirect {
			return 3
		}
		return 2
	default: // z == 7: the accumulator/flag opcodes
		return c.executeAccumulatorOp(y)
	}
}

func (c *CPU) executeAccumulatorOp(y byte) int {
	switch y {
	case 0: // RLCA
		c.reg.a = c.rot(rotRLC, c.reg.a)
		c.reg.setFlag(FlagZ, false)
	case 1: // RRCA
		c.reg.a = c.rot(rotRRC, c.reg.a)
		c.reg.setFlag(FlagZ, false)
	case 2: // RLA
		c.reg.a = c.rot(rotRL, c.reg.a)
		c.reg.setFlag(FlagZ, false)
	case 3: // RRA
		c.reg.a = c.rot(rotRR, c.reg.a)
		c.reg.setFlag(FlagZ, false)
	case 4:
		c.daa()
	case 5: // CPL
		c.reg.a = ^c.reg.a
		c.reg.setFlag(FlagN, true)
		c.reg.setFlag(FlagH, true)
	case 6: // SCF
		c.reg.setFlag(FlagN, false)
		c.reg.setFlag(FlagH, false)
		c.reg.setFlag(FlagC, true)
	case 7: // CCF
		c.reg.setFlag(FlagN, false)
		c.reg.setFlag(FlagH, false)
		c.reg.setFlag(FlagC, !c.reg.flag(FlagC))
	}
	return 1
}

func (c *CPU) executeBlock1(y, z byte) int {
	if y == r8HLIndirect && z == r8HLIndirect { // HALT
		c.halted = true
		return 1
	}

	c.writeR8(y, c.readR8(z))
	if y == r8HLIndirect || z == r8HLIndirect {
		return 2
	}
	return 1
}

func (c *CPU) executeBlock2(y, z byte) int {
	c.alu(y, c.readR8(z))
	if z == r8HLIndirect {
		return 2
	}
	return 1
}

func (c *CPU) executeBlock3(y, z, p, q byte) int {
	switch z {
	case 0:
		switch {
		case y <= 3: // RET cc
			if c.checkCC(y) {
				c.reg.pc = c.pop16()
				return 5
			}
			return 2
		case y == 4: // LDH (a8),A
			addr := 0xFF00 + uint16(c.fetch8())
			c.bus.Write8(addr, c.reg.a)
			return 3
		case y == 5: // ADD SP,r8
			c.reg.sp = c.addSPSigned(int8(c.fetch8()))
			return 4
		case y == 6: // LDH A,(a8)
			addr := 0xFF00 + uint16(c.fetch8())
			c.reg.a = c.bus.Read8(addr)
			return 3
		default: // LD HL,SP+r8
			c.reg.setHL(c.addSPSigned(int8(c.fetch8())))
			return 3
		}
	case 1:
		if q == 0 { // POP rp2
			c.writeRP2(p, c.pop16())
			return 3
		}
		switch p {
		case 0: // RET
			c.reg.pc = c.pop16()
			return 4
		case 1: // RETI
			c.reg.pc = c.pop16()
			c.ime = true
			c.imeScheduled = false
			return 4
		case 2: // JP HL
			c.reg.pc = c.reg.hl()
			return 1
		default: // LD SP,HL
			c.reg.sp = c.reg.hl()
			return 2
		}
	case 2:
		switch {
		case y <= 3: // JP cc,a16
			addr := c.fetch16()
			if c.checkCC(y) {
				c.reg.pc = addr
				return 4
			}
			return 3
		case y == 4: // LD (C),A
			c.bus.Write8(0xFF00+uint16(c.reg.c), c.reg.a)
			return 2
		case y == 5: // LD (a16),A
			c.bus.Write8(c.fetch16(), c.reg.a)
			return 4
		case y == 6: // LD A,(C)
			c.reg.a = c.bus.Read8(0xFF00 + uint16(c.reg.c))
			return 2
		default: // LD A,(a16)
			c.reg.a = c.bus.Read8(c.fetch16())
			return 4
		}
	case 3:
		switch y {
		case 0: // JP a16
			c.reg.pc = c.fetch16()
			return 4
		case 6: // DI
			c.ime = false
			c.imeScheduled = false
			return 1
		case 7: // EI
			c.imeScheduled = true
			return 1
		default:
			// y==1 (CB prefix) is intercepted in Step before reaching here.
			return 1
		}
	case 4: // CALL cc,a16
		addr := c.fetch16()
		if y <= 3 && c.checkCC(y) {
			c.push16(c.reg.pc)
			c.reg.pc = addr
			return 6
		}
		return 3
	case 5:
		if q == 0 { // PUSH rp2
			c.push16(c.readRP2(p))
			return 4
		}
		// q == 1, p == 0: CALL a16 (the other three p values are unused)
		addr := c.fetch16()
		c.push16(c.reg.pc)
		c.reg.pc = addr
		return 6
	case 6: // alu[y] A,d8
		c.alu(y, c.fetch8())
		return 2
	default: // RST y*8
		c.push16(c.reg.pc)
		c.reg.pc = uint16(y) * 8
		return 4
	}
}
