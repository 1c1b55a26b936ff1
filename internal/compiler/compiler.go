// Package compiler implements the single-pass Pratt parser/compiler of
// spec §4.2: it scans, resolves scope, and emits bytecode in one pass,
// with no intermediate AST.
package compiler

import (
	"strconv"

	"github.com/ochre-lang/ochre/internal/heap"
	"github.com/ochre-lang/ochre/internal/lexer"
	"github.com/ochre-lang/ochre/internal/sourceerr"
	"github.com/ochre-lang/ochre/internal/token"
	"github.com/ochre-lang/ochre/internal/value"
)

// funcCompiler is one nested FunctionCompiler context of spec §3.5: it
// owns the function currently being emitted into, its locals/upvalues,
// and links to the compiler that was active before it (the enclosing
// function, or nil at the script level).
type funcCompiler struct {
	enclosing *funcCompiler
	function  *value.ObjFunction
	kind      FunctionKind

	locals     [maxLocals]local
	localCount int
	upvalues   [maxUpvalues]upvalueRef
	scopeDepth int
}

type parser struct {
	scanner *lexer.Scanner
	heap    *heap.Heap

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool
	errs      []*sourceerr.Error

	fc *funcCompiler
	cc *classCompiler
}

// Compile is the entry point of spec §4.2: parses declarations until EOF,
// emitting into the script function's chunk, and returns nil if any error
// was reported.
func Compile(source string, h *heap.Heap) (*value.ObjFunction, []*sourceerr.Error) {
	p := &parser{scanner: lexer.New(source), heap: h}
	p.beginFunction(KindScript, "")

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}

	fn := p.endFunction()
	if p.hadError {
		return nil, p.errs
	}
	return fn, nil
}

// beginFunction pushes a new FunctionCompiler, reserving local slot 0 for
// the callee (or, for a method, the receiver bound to `this`) per spec
// §4.2. The in-progress function is pushed onto the heap's compiler-root
// stack so GC during compilation can see it (spec §3.7).
func (p *parser) beginFunction(kind FunctionKind, name string) {
	fc := &funcCompiler{enclosing: p.fc, kind: kind, scopeDepth: 0}
	fc.function = p.heap.NewFunction()
	p.heap.PushCompilerRoot(fc.function)
	if kind != KindScript {
		fc.function.Name = p.heap.InternString(name)
	}
	slot0 := local{depth: 0}
	if kind != KindFunction && kind != KindScript {
		slot0.name = token.Token{Lexeme: "this"}
	}
	fc.locals[0] = slot0
	fc.localCount = 1
	p.fc = fc
}

// endFunction closes out the current FunctionCompiler: emits the implicit
// trailing return (spec §4.2 — `GET_LOCAL 0; return` for an initializer so
// a constructor always yields the new instance, `nil; return` otherwise),
// pops the compiler-root, and restores the enclosing compiler.
func (p *parser) endFunction() *value.ObjFunction {
	p.emitReturn()
	fn := p.fc.function
	p.heap.PopCompilerRoot()
	p.fc = p.fc.enclosing
	return fn
}

func (p *parser) emitReturn() {
	if p.fc.kind == KindInitializer {
		p.emitByte(byte(value.OpGetLocal))
		p.emitByte(0)
	} else {
		p.emitByte(byte(value.OpNil))
	}
	p.emitByte(byte(value.OpReturn))
}

func (p *parser) currentChunk() *value.Chunk { return p.fc.function.Chunk }

// ---- token stream -------------------------------------------------------

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.Next()
		if p.current.Kind != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(k token.Kind) bool { return p.current.Kind == k }

func (p *parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(k token.Kind, msg string) {
	if p.current.Kind == k {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

// ---- error reporting / panic-mode recovery ------------------------------

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *parser) errorAt(t token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	p.errs = append(p.errs, sourceerr.New(sourceerr.Syntax, t.Line, "%s", msg))
}

// synchronize scans forward to the next statement boundary, per spec
// §4.2/§7: a semicolon just consumed, or a statement-starting keyword.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.Semicolon {
			return
		}
		switch p.current.Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// ---- bytecode emission --------------------------------------------------

func (p *parser) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

func (p *parser) emitBytes(a, b byte) {
	p.emitByte(a)
	p.emitByte(b)
}

func (p *parser) emitOp(op value.OpCode) { p.emitByte(byte(op)) }

func (p *parser) emitConstant(v value.Value) {
	p.emitBytes(byte(value.OpConstant), p.makeConstant(v))
}

func (p *parser) makeConstant(v value.Value) byte {
	idx := p.currentChunk().AddConstant(v)
	if idx >= maxConstant {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

// emitJump writes op followed by a two-byte placeholder, returning the
// placeholder's offset for patchJump to fill in later.
func (p *parser) emitJump(op value.OpCode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.currentChunk().Code) - 2
}

func (p *parser) patchJump(offset int) {
	jump := len(p.currentChunk().Code) - offset - 2
	if jump > maxJump-1 {
		p.error("Too much code to jump over.")
		return
	}
	p.currentChunk().Code[offset] = byte(jump >> 8)
	p.currentChunk().Code[offset+1] = byte(jump & 0xff)
}

func (p *parser) emitLoop(loopStart int) {
	p.emitOp(value.OpLoop)
	offset := len(p.currentChunk().Code) - loopStart + 2
	if offset > maxJump-1 {
		p.error("Loop body too large.")
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset & 0xff))
}

// ---- scope ---------------------------------------------------------------

func (p *parser) beginScope() { p.fc.scopeDepth++ }

func (p *parser) endScope() {
	p.fc.scopeDepth--
	for p.fc.localCount > 0 && p.fc.locals[p.fc.localCount-1].depth > p.fc.scopeDepth {
		if p.fc.locals[p.fc.localCount-1].isCaptured {
			p.emitOp(value.OpCloseUpvalue)
		} else {
			p.emitOp(value.OpPop)
		}
		p.fc.localCount--
	}
}

// ---- expressions (Pratt) -------------------------------------------------

func (p *parser) expression() { p.parsePrecedence(precAssignment) }

func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := getRule(p.previous.Kind).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for prec <= getRule(p.current.Kind).precedence {
		p.advance()
		infix := getRule(p.previous.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.Equal) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) number(canAssign bool) {
	n, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(value.Number(n))
}

func (p *parser) string(canAssign bool) {
	raw := p.previous.Lexeme
	s := p.heap.InternString(raw[1 : len(raw)-1])
	p.emitConstant(value.FromObj(s))
}

func (p *parser) literal(canAssign bool) {
	switch p.previous.Kind {
	case token.False:
		p.emitOp(value.OpFalse)
	case token.True:
		p.emitOp(value.OpTrue)
	case token.Nil:
		p.emitOp(value.OpNil)
	}
}

func (p *parser) grouping(canAssign bool) {
	p.expression()
	p.consume(token.RightParen, "Expect ')' after expression.")
}

func (p *parser) unary(canAssign bool) {
	op := p.previous.Kind
	p.parsePrecedence(precUnary)
	switch op {
	case token.Bang:
		p.emitOp(value.OpNot)
	case token.Minus:
		p.emitOp(value.OpNegate)
	}
}

func (p *parser) binary(canAssign bool) {
	op := p.previous.Kind
	r := getRule(op)
	p.parsePrecedence(r.precedence + 1)
	switch op {
	case token.BangEqual:
		p.emitBytes(byte(value.OpEqual), byte(value.OpNot))
	case token.EqualEqual:
		p.emitOp(value.OpEqual)
	case token.Greater:
		p.emitOp(value.OpGreater)
	case token.GreaterEqual:
		p.emitBytes(byte(value.OpLess), byte(value.OpNot))
	case token.Less:
		p.emitOp(value.OpLess)
	case token.LessEqual:
		p.emitBytes(byte(value.OpGreater), byte(value.OpNot))
	case token.Plus:
		p.emitOp(value.OpAdd)
	case token.Minus:
		p.emitOp(value.OpSubtract)
	case token.Star:
		p.emitOp(value.OpMultiply)
	case token.Slash:
		p.emitOp(value.OpDivide)
	}
}

// and_ and or_ compile short-circuit control flow as jumps (spec §4.2,
// §9): never a generic shunt that evaluates both sides.
func (p *parser) and_(canAssign bool) {
	endJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *parser) or_(canAssign bool) {
	elseJump := p.emitJump(value.OpJumpIfFalse)
	endJump := p.emitJump(value.OpJump)
	p.patchJump(elseJump)
	p.emitOp(value.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *parser) call(canAssign bool) {
	argCount := p.argumentList()
	p.emitBytes(byte(value.OpCall), argCount)
}

func (p *parser) argumentList() byte {
	count := 0
	if !p.check(token.RightParen) {
		for {
			p.expression()
			if count == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			count++
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(count)
}

func (p *parser) dot(canAssign bool) {
	p.consume(token.Identifier, "Expect property name after '.'.")
	name := p.makeConstant(value.FromObj(p.heap.InternString(p.previous.Lexeme)))

	switch {
	case canAssign && p.match(token.Equal):
		p.expression()
		p.emitBytes(byte(value.OpSetProperty), name)
	case p.match(token.LeftParen):
		argCount := p.argumentList()
		p.emitBytes(byte(value.OpInvoke), name)
		p.emitByte(argCount)
	default:
		p.emitBytes(byte(value.OpGetProperty), name)
	}
}

func (p *parser) this(canAssign bool) {
	if p.cc == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	p.namedVariable(token.Token{Lexeme: "this"}, false)
}

func (p *parser) super(canAssign bool) {
	if p.cc == nil {
		p.error("Can't use 'super' outside of a class.")
	} else if !p.cc.hasSuperclass {
		p.error("Can't use 'super' in a class with no superclass.")
	}
	p.consume(token.Dot, "Expect '.' after 'super'.")
	p.consume(token.Identifier, "Expect superclass method name.")
	name := p.makeConstant(value.FromObj(p.heap.InternString(p.previous.Lexeme)))

	p.namedVariable(token.Token{Lexeme: "this"}, false)
	if p.match(token.LeftParen) {
		argCount := p.argumentList()
		p.namedVariable(token.Token{Lexeme: "super"}, false)
		p.emitBytes(byte(value.OpSuperInvoke), name)
		p.emitByte(argCount)
	} else {
		p.namedVariable(token.Token{Lexeme: "super"}, false)
		p.emitBytes(byte(value.OpGetSuper), name)
	}
}
