// Package op defines the register-VM instruction set: one byte opcode
// followed by a fixed number of operand bytes.
package op

// Code is a single bytecode opcode.
type Code byte

const (
	LOAD_CONST Code = iota
	LOAD_NULL
	LOAD_TRUE
	LOAD_FALSE
	MOVE

	ADD
	SUB
	MUL
	DIV
	GT
	LT
	EQ
	NEG
	NOT

	JUMP
	JUMP_IF_FALSE
	LOOP

	CALL
	RETURN

	GET_GLOBAL
	DEFINE_GLOBAL
	SET_GLOBAL

	BUILD_ARRAY
	ARRAY_GET

	GET_PROPERTY
	SET_PROPERTY

	CLASS
	METHOD
	INVOKE
)

// Info describes an opcode: its human-readable name and the number of
// operand bytes that follow it in the instruction stream, not counting any
// trailing variable-length register list (Call/BuildArray/Invoke encode
// their own count operand and must read that many further bytes).
type Info struct {
	Code     Code
	Name     string
	Operands int
	Variadic bool // true if the opcode carries a trailing count + that many register bytes
}

var infos = make([]Info, 256)

func reg(code Code, name string, operands int, variadic bool) {
	infos[code] = Info{Code: code, Name: name, Operands: operands, Variadic: variadic}
}

func init() {
	reg(LOAD_CONST, "LOAD_CONST", 3, false)   // dst(1) idx(2)
	reg(LOAD_NULL, "LOAD_NULL", 1, false)     // dst(1)
	reg(LOAD_TRUE, "LOAD_TRUE", 1, false)     // dst(1)
	reg(LOAD_FALSE, "LOAD_FALSE", 1, false)   // dst(1)
	reg(MOVE, "MOVE", 2, false)               // dst(1) src(1)

	reg(ADD, "ADD", 3, false)
	reg(SUB, "SUB", 3, false)
	reg(MUL, "MUL", 3, false)
	reg(DIV, "DIV", 3, false)
	reg(GT, "GT", 3, false)
	reg(LT, "LT", 3, false)
	reg(EQ, "EQ", 3, false)
	reg(NEG, "NEG", 2, false)
	reg(NOT, "NOT", 2, false)

	reg(JUMP, "JUMP", 2, false)
	reg(JUMP_IF_FALSE, "JUMP_IF_FALSE", 3, false) // cond(1) off(2)
	reg(LOOP, "LOOP", 2, false)

	reg(CALL, "CALL", 2, true)   // dst(1) callee(1) n(1) r1..rn
	reg(RETURN, "RETURN", 1, false)

	reg(GET_GLOBAL, "GET_GLOBAL", 3, false)
	reg(DEFINE_GLOBAL, "DEFINE_GLOBAL", 3, false)
	reg(SET_GLOBAL, "SET_GLOBAL", 3, false)

	reg(BUILD_ARRAY, "BUILD_ARRAY", 1, true) // dst(1) n(1) r1..rn
	reg(ARRAY_GET, "ARRAY_GET", 3, false)

	reg(GET_PROPERTY, "GET_PROPERTY", 4, false) // dst(1) obj(1) name(2)
	reg(SET_PROPERTY, "SET_PROPERTY", 4, false) // obj(1) name(2) val(1)

	reg(CLASS, "CLASS", 3, false)  // dst(1) name(2)
	reg(METHOD, "METHOD", 4, false) // class(1) name(2) method(1)
	reg(INVOKE, "INVOKE", 4, true)  // dst(1) obj(1) name(2) n(1) r1..rn
}

// GetInfo returns the Info for code.
func GetInfo(code Code) Info {
	return infos[code]
}

func (c Code) String() string {
	return infos[c].Name
}
