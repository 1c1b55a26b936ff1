package compiler

import "github.com/ochre-lang/ochre/internal/token"

// maxLocals and maxUpvalues are the per-function caps of spec §3.5/§8:
// locals (plus the reserved slot 0) and captured upvalues each fit in one
// byte operand.
const (
	maxLocals   = 256
	maxUpvalues = 256
	maxConstant = 256
	maxJump     = 1 << 16
)

type FunctionKind int

const (
	KindScript FunctionKind = iota
	KindFunction
	KindMethod
	KindInitializer
)

// local tracks one declared name in a function's locals array. depth -1
// means "declared but not yet initialized" — reading it is a compile
// error, per spec §4.2 (forbids self-reference in a var's own
// initializer).
type local struct {
	name       token.Token
	depth      int
	isCaptured bool
}

// upvalueRef records how a nested function reaches an enclosing variable:
// either directly off the enclosing function's locals (isLocal=true,
// index = local slot) or by forwarding the enclosing function's own
// upvalue (isLocal=false, index = that upvalue's index).
type upvalueRef struct {
	index   byte
	isLocal bool
}

// classCompiler tracks class nesting so `this`/`super` can be statically
// rejected outside a class, and whether the current class has a
// superclass (super is only legal then).
type classCompiler struct {
	enclosing      *classCompiler
	hasSuperclass  bool
}
