package cpu

// executeCB dispatches a CB-prefixed opcode and returns the M-cycles it
// took (1 higher than the unprefixed table's when z==6, since fetching the
// (HL) byte costs an extra cycle on top of writing it back).
func (c *CPU) executeCB(opcode byte) int {
	x, y, z, _, _ := decodeFields(opcode)

	switch x {
	case 0: // rotate/shift
		result := c.rot(y, c.readR8(z))
		c.writeR8(z, result)
		if z == r8HLIndirect {
			return 4
		}
		return 2
	case 1: // BIT y,r[z]
		v := c.readR8(z)
		c.reg.setFlag(FlagZ, v&(1<<y) == 0)
		c.reg.setFlag(FlagN, false)
		c.reg.setFlag(FlagH, true)
		if z == r8HLIndirect {
			return 3
		}
		return 2
	case 2: // RES y,r[z]
		c.writeR8(z, c.readR8(z)&^(1<<y))
		if z == r8HLIndirect {
			return 4
		}
		return 2
	default: // SET y,r[z]
		c.writeR8(z, c.readR8(z)|(1<<y))
		if z == r8HLIndirect {
			return 4
		}
		return 2
	}
}
