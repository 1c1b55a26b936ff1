package compiler

import (
	"github.com/ochre-lang/ochre/internal/token"
	"github.com/ochre-lang/ochre/internal/value"
)

// declaration is the top of the statement grammar (spec §4.2's BNF):
// a classDecl, funDecl, varDecl, or a plain statement, with panic-mode
// recovery at each boundary.
func (p *parser) declaration() {
	switch {
	case p.match(token.Class):
		p.classDeclaration()
	case p.match(token.Fun):
		p.funDeclaration()
	case p.match(token.Var):
		p.varDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.Print):
		p.printStatement()
	case p.match(token.For):
		p.forStatement()
	case p.match(token.If):
		p.ifStatement()
	case p.match(token.Return):
		p.returnStatement()
	case p.match(token.While):
		p.whileStatement()
	case p.match(token.LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) block() {
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	p.emitOp(value.OpPrint)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	p.emitOp(value.OpPop)
}

func (p *parser) ifStatement() {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()

	elseJump := p.emitJump(value.OpJump)
	p.patchJump(thenJump)
	p.emitOp(value.OpPop)

	if p.match(token.Else) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.currentChunk().Code)
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(value.OpPop)
}

// forStatement desugars entirely to while + block, per spec §4.2: no
// for-specific opcode exists, it is JUMP/JUMP_IF_FALSE/LOOP and locals
// like everything else.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case p.match(token.Semicolon):
		// no initializer
	case p.match(token.Var):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().Code)
	exitJump := -1
	if !p.match(token.Semicolon) {
		p.expression()
		p.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = p.emitJump(value.OpJumpIfFalse)
		p.emitOp(value.OpPop)
	}

	if !p.match(token.RightParen) {
		bodyJump := p.emitJump(value.OpJump)
		incrementStart := len(p.currentChunk().Code)
		p.expression()
		p.emitOp(value.OpPop)
		p.consume(token.RightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(value.OpPop)
	}

	p.endScope()
}

func (p *parser) returnStatement() {
	if p.fc.kind == KindScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(token.Semicolon) {
		p.emitReturn()
		return
	}
	if p.fc.kind == KindInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after return value.")
	p.emitOp(value.OpReturn)
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(token.Equal) {
		p.expression()
	} else {
		p.emitOp(value.OpNil)
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(KindFunction)
	p.defineVariable(global)
}

// function compiles a parameter list and body into its own chunk, then
// emits OP_CLOSURE with one (isLocal, index) pair per captured upvalue
// trailing the instruction, per spec §4.3/§4.4.
func (p *parser) function(kind FunctionKind) {
	p.beginFunction(kind, p.previous.Lexeme)
	p.beginScope()

	p.consume(token.LeftParen, "Expect '(' after function name.")
	if !p.check(token.RightParen) {
		for {
			p.fc.function.Arity++
			if p.fc.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before function body.")
	p.block()

	compiled := p.fc
	fn := p.endFunction()
	upvalues := compiled.upvalues
	upvalueCount := fn.UpvalueCount

	idx := p.makeConstant(value.FromObj(fn))
	p.emitBytes(byte(value.OpClosure), idx)
	for i := 0; i < upvalueCount; i++ {
		p.emitByte(boolByte(upvalues[i].isLocal))
		p.emitByte(upvalues[i].index)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (p *parser) classDeclaration() {
	p.consume(token.Identifier, "Expect class name.")
	nameTok := p.previous
	nameConstant := p.identifierConstant(nameTok)
	p.declareVariable()

	p.emitBytes(byte(value.OpClass), nameConstant)
	p.defineVariable(nameConstant)

	cc := &classCompiler{enclosing: p.cc}
	p.cc = cc

	if p.match(token.Less) {
		p.consume(token.Identifier, "Expect superclass name.")
		p.variable(false)
		if identifiersEqual(nameTok, p.previous) {
			p.error("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal(token.Token{Lexeme: "super"})
		p.defineVariable(0)

		p.namedVariable(nameTok, false)
		p.emitOp(value.OpInherit)
		cc.hasSuperclass = true
	}

	p.namedVariable(nameTok, false)
	p.consume(token.LeftBrace, "Expect '{' before class body.")
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RightBrace, "Expect '}' after class body.")
	p.emitOp(value.OpPop)

	if cc.hasSuperclass {
		p.endScope()
	}
	p.cc = p.cc.enclosing
}

func (p *parser) method() {
	p.consume(token.Identifier, "Expect method name.")
	name := p.previous.Lexeme
	constant := p.identifierConstant(p.previous)

	kind := KindMethod
	if name == "init" {
		kind = KindInitializer
	}
	p.function(kind)
	p.emitBytes(byte(value.OpMethod), constant)
}
