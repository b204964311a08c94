package cpu

import "github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++

	return bit.Combine(high, low)
}

// inc increments an 8-bit value. Carry is left untouched.
func (c *CPU) inc(value uint8) uint8 {
	result := value + 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, value&0xF == 0xF)

	return result
}

// dec decrements an 8-bit value. Carry is left untouched.
func (c *CPU) dec(value uint8) uint8 {
	result := value - 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, value&0xF == 0)

	return result
}

// add adds value (plus the carry flag for ADC) to A.
func (c *CPU) add(value uint8, withCarry bool) {
	var carry uint8
	if withCarry && c.isSetFlag(carryFlag) {
		carry = 1
	}

	result := c.a + value + carry

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.a&0xF)+(value&0xF)+carry > 0xF)
	c.setFlagToCondition(carryFlag, uint16(c.a)+uint16(value)+uint16(carry) > 0xFF)

	c.a = result
}

// sub subtracts value (plus the carry flag for SBC) from A.
func (c *CPU) sub(value uint8, withCarry bool) {
	var carry uint8
	if withCarry && c.isSetFlag(carryFlag) {
		carry = 1
	}

	result := c.a - value - carry

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, c.a&0xF < (value&0xF)+carry)
	c.setFlagToCondition(carryFlag, uint16(c.a) < uint16(value)+uint16(carry))

	c.a = result
}

func (c *CPU) and(value uint8) {
	c.a &= value

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) or(value uint8) {
	c.a |= value

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// cp compares value against A without storing the result.
func (c *CPU) cp(value uint8) {
	c.setFlagToCondition(zeroFlag, c.a == value)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, c.a&0xF < value&0xF)
	c.setFlagToCondition(carryFlag, c.a < value)
}

// addToHL adds a 16-bit value to HL. Zero is left untouched.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlagToCondition(carryFlag, uint32(hl)+uint32(value) > 0xFFFF)

	c.setHL(hl + value)
}

// addToSP computes SP plus a signed offset, setting H and C from the unsigned
// nibble/byte carries of the low byte addition. Used by both ADD SP,e and
// LD HL,SP+e; Z and N are always cleared.
func (c *CPU) addToSP(offset int8) uint16 {
	e := uint8(offset)

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.sp&0xF)+uint16(e&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, (c.sp&0xFF)+uint16(e) > 0xFF)

	return c.sp + uint16(int16(offset))
}

// daa decimal-adjusts A after an addition or subtraction so that it holds a
// valid packed BCD result.
func (c *CPU) daa() {
	var adjust uint8
	carry := c.isSetFlag(carryFlag)

	if c.isSetFlag(halfCarryFlag) || (!c.isSetFlag(subFlag) && c.a&0xF > 0x09) {
		adjust = 0x06
	}
	if carry || (!c.isSetFlag(subFlag) && c.a > 0x99) {
		adjust |= 0x60
		carry = true
	}

	if c.isSetFlag(subFlag) {
		c.a -= adjust
	} else {
		c.a += adjust
	}

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

// rlc rotates left, bit 7 into both carry and bit 0. Zero is set from the
// result; the A-register forms (RLCA etc.) clear it afterwards.
func (c *CPU) rlc(value uint8) uint8 {
	result := (value << 1) | (value >> 7)

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, value > 0x7F)

	return result
}

// rl rotates left through carry.
func (c *CPU) rl(value uint8) uint8 {
	result := (value << 1) | c.flagToBit(carryFlag)

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, value > 0x7F)

	return result
}

// rrc rotates right, bit 0 into both carry and bit 7.
func (c *CPU) rrc(value uint8) uint8 {
	result := (value >> 1) | (value << 7)

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, value&1 == 1)

	return result
}

// rr rotates right through carry.
func (c *CPU) rr(value uint8) uint8 {
	result := (value >> 1) | (c.flagToBit(carryFlag) << 7)

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, value&1 == 1)

	return result
}

// sla shifts left into carry, bit 0 cleared.
func (c *CPU) sla(value uint8) uint8 {
	result := value << 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, value > 0x7F)

	return result
}

// sra shifts right into carry, bit 7 preserved.
func (c *CPU) sra(value uint8) uint8 {
	result := (value >> 1) | (value & 0x80)

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, value&1 == 1)

	return result
}

// srl shifts right into carry, bit 7 cleared.
func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, value&1 == 1)

	return result
}

// swap exchanges the two nibbles.
func (c *CPU) swap(value uint8) uint8 {
	result := (value << 4) | (value >> 4)

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)

	return result
}

// bitTest sets Z from the complement of the tested bit. Carry is untouched.
func (c *CPU) bitTest(index, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

// jr adds the signed immediate to PC.
func (c *CPU) jr() {
	offset := c.readSignedImmediate()
	c.pc += uint16(int16(offset))
}

// jp jumps to the immediate address.
func (c *CPU) jp() {
	c.pc = c.readImmediateWord()
}

// call pushes the return address and jumps to the immediate address.
func (c *CPU) call() {
	target := c.readImmediateWord()
	c.pushStack(c.pc)
	c.pc = target
}

// ret pops the return address into PC.
func (c *CPU) ret() {
	c.pc = c.popStack()
}

// rst pushes PC and jumps to one of the fixed restart vectors.
func (c *CPU) rst(target uint16) {
	c.pushStack(c.pc)
	c.pc = target
}
