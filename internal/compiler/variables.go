package compiler

import (
	"github.com/ochre-lang/ochre/internal/token"
	"github.com/ochre-lang/ochre/internal/value"
)

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

// namedVariable resolves name against the local, upvalue, and (falling
// through) global scopes in that order, per spec §4.2/§4.4, and emits the
// matching get/set opcode pair.
func (p *parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp value.OpCode
	arg, ok := p.resolveLocal(p.fc, name)
	if ok {
		getOp, setOp = value.OpGetLocal, value.OpSetLocal
	} else if arg, ok = p.resolveUpvalue(p.fc, name); ok {
		getOp, setOp = value.OpGetUpvalue, value.OpSetUpvalue
	} else {
		arg = int(p.identifierConstant(name))
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitBytes(byte(setOp), byte(arg))
	} else {
		p.emitBytes(byte(getOp), byte(arg))
	}
}

func (p *parser) identifierConstant(name token.Token) byte {
	return p.makeConstant(value.FromObj(p.heap.InternString(name.Lexeme)))
}

func identifiersEqual(a, b token.Token) bool { return a.Lexeme == b.Lexeme }

// resolveLocal walks fc's locals from the innermost outward, per spec
// §4.2's shadowing rule (the most recently declared name wins).
func (p *parser) resolveLocal(fc *funcCompiler, name token.Token) (int, bool) {
	for i := fc.localCount - 1; i >= 0; i-- {
		l := fc.locals[i]
		if identifiersEqual(l.name, name) {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i, true
		}
	}
	return 0, false
}

// resolveUpvalue recurses into the enclosing compiler: if name is a local
// there, capture it directly; if it's an upvalue there, forward it. This
// is the "upvalues chain through intermediate functions" behavior of spec
// §3.5/§4.2.
func (p *parser) resolveUpvalue(fc *funcCompiler, name token.Token) (int, bool) {
	if fc.enclosing == nil {
		return 0, false
	}
	if local, ok := p.resolveLocal(fc.enclosing, name); ok {
		fc.enclosing.locals[local].isCaptured = true
		return p.addUpvalue(fc, byte(local), true), true
	}
	if up, ok := p.resolveUpvalue(fc.enclosing, name); ok {
		return p.addUpvalue(fc, byte(up), false), true
	}
	return 0, false
}

// addUpvalue dedupes against already-captured upvalues in fc so the same
// variable never gets two slots.
func (p *parser) addUpvalue(fc *funcCompiler, index byte, isLocal bool) int {
	count := fc.function.UpvalueCount
	for i := 0; i < count; i++ {
		u := fc.upvalues[i]
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if count == maxUpvalues {
		p.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues[count] = upvalueRef{index: index, isLocal: isLocal}
	fc.function.UpvalueCount++
	return count
}

// ---- declaration plumbing -------------------------------------------------

func (p *parser) declareVariable() {
	if p.fc.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := p.fc.localCount - 1; i >= 0; i-- {
		l := p.fc.locals[i]
		if l.depth != -1 && l.depth < p.fc.scopeDepth {
			break
		}
		if identifiersEqual(l.name, name) {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) addLocal(name token.Token) {
	if p.fc.localCount == maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.fc.locals[p.fc.localCount] = local{name: name, depth: -1}
	p.fc.localCount++
}

// parseVariable consumes the name token, declares it if inside a scope,
// and returns the global-name constant index to use if it isn't.
func (p *parser) parseVariable(errMsg string) byte {
	p.consume(token.Identifier, errMsg)
	p.declareVariable()
	if p.fc.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *parser) markInitialized() {
	if p.fc.scopeDepth == 0 {
		return
	}
	p.fc.locals[p.fc.localCount-1].depth = p.fc.scopeDepth
}

func (p *parser) defineVariable(global byte) {
	if p.fc.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(byte(value.OpDefineGlobal), global)
}
