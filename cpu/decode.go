package cpu

// The unprefixed and CB-prefixed opcode tables both decompose their byte
// into the same three fields, the canonical encoding of the Z80-family
// instruction set (the LR35902 keeps it, minus IX/IY/exx/the second
// register file):
//
//	x = bits 7-6   (top-level block selector)
//	y = bits 5-3   (destination register / ALU op / condition / embedded value)
//	z = bits 2-0   (source register / secondary selector)
//	p = y >> 1     (register-pair selector, when y addresses a pair)
//	q = y & 1      (picks between a pair's two sub-operations)
//
// Dispatching on these fields instead of a 256-entry named-function table
// mirrors the instruction set's own regularity: one readR8/readRP lookup
// plus a switch on x covers the entire unprefixed sheet in a few hundred
// lines instead of one function per opcode.
func decodeFields(opcode byte) (x, y, z, p, q byte) {
	x = opcode >> 6
	y = (opcode >> 3) & 0x07
	z = opcode & 0x07
	p = y >> 1
	q = y & 0x01
	return
}

// operand8 register indices, r[z] / r[y] in the canonical tables. index 6
// is not a register at all but (HL) - every r-table lookup must route
// through readR8/writeR8 rather than touching the registers struct
// directly, since (HL) needs a bus access and an extra M-cycle.
const (
	r8B = iota
	r8C
	r8D
	r8E
	r8H
	r8L
	r8HLIndirect
	r8A
)

// register-pair indices for instructions that use SP as the 4th pair
// (rp[p]): BC, DE, HL, SP.
const (
	rpBC = iota
	rpDE
	rpHL
	rpSP
)

// register-pair indices for instructions that use AF as the 4th pair
// (rp2[p]): BC, DE, HL, AF. Only PUSH/POP use this table.
const (
	rp2BC = iota
	rp2DE
	rp2HL
	rp2AF
)

// condition codes, cc[y] for y in 0-3: NZ, Z, NC, C.
const (
	ccNZ = iota
	ccZ
	ccNC
	ccC
)

// aluOp identifies one of the eight ALU-with-A operations selected by y in
// the x=2 block and by the ALU-immediate opcodes in the x=3 block.
const (
	aluAdd = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

// rotOp identifies one of the eight CB-block rotate/shift operations
// selected by y in the CB x=0 block.
const (
	rotRLC = iota
	rotRRC
	rotRL
	rotRR
	rotSLA
	rotSRA
	rotSwap
	rotSRL
)
