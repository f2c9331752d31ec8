package bytecode

import "testing"

func encodeEquals(t *testing.T, i Instruction, want string) {
	t.Helper()
	if got := i.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestControlEncoding(t *testing.T) {
	encodeEquals(t, Label{Name: "foo"}, "label foo")
	encodeEquals(t, PublicLabel{Name: "foo::bar"}, "public_label foo::bar")
	encodeEquals(t, Nop{}, "nop")
	encodeEquals(t, Halt{}, "halt")
	encodeEquals(t, Goto{Label: "l"}, "goto l")
	encodeEquals(t, IfGoto{Label: "l"}, "cond_goto l")
	encodeEquals(t, Return{}, "return")
}

func TestStackEncoding(t *testing.T) {
	encodeEquals(t, Push{Value: "5"}, "push 5")
	encodeEquals(t, Pop{}, "pop")
	encodeEquals(t, Clear{}, "clear")
}

func TestLocalsEncoding(t *testing.T) {
	encodeEquals(t, NextVar{}, "next_var")
	encodeEquals(t, SetVar{Slot: 3}, "set_var 3")
	encodeEquals(t, GetVar{Slot: 3}, "get_var 3")
	encodeEquals(t, ClearVar{Slot: 3}, "clear_var 3")
	encodeEquals(t, SetSymbol{Name: "x"}, "set_symbol x")
	encodeEquals(t, GetSymbol{Name: "x"}, "get_symbol x")
}

func TestArithmeticEncoding(t *testing.T) {
	cases := map[ArithOp]string{
		OpAdd: "add", OpSubtract: "subtract", OpMultiply: "multiply", OpDivide: "divide",
		OpRemainder: "remainder", OpAnd: "and", OpOr: "or", OpNot: "not", OpGT0: "gt0", OpBoolify: "boolify",
	}
	for op, want := range cases {
		encodeEquals(t, Arithmetic{Op: op}, want)
	}
}

func TestObjectsAndMessagingEncoding(t *testing.T) {
	encodeEquals(t, SendMessage{}, "send_message")
	encodeEquals(t, GetAttribute{Name: "len"}, "get_attribute len")
	encodeEquals(t, Index{}, "index")
	encodeEquals(t, Call{Loc: "foo::bar"}, "call foo::bar")
}
