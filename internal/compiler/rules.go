package compiler

import "github.com/ochre-lang/ochre/internal/token"

// precedence is the ladder of spec §4.2:
// None < Assignment < Or < And < Equality < Comparison < Term < Factor <
// Unary < Call < Primary
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules maps each token kind to its prefix rule, infix rule and infix
// precedence (spec §4.2). It is a Go map keyed by token kind; kinds with no
// entry get getRule's empty rule.
//
// Populated in init() rather than via a var initializer: the method
// expressions below (transitively, through parsePrecedence/getRule) refer
// back to rules itself, which a direct initializer would make Go reject as
// an initialization cycle.
var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LeftParen:    {(*parser).grouping, (*parser).call, precCall},
		token.Dot:          {nil, (*parser).dot, precCall},
		token.Minus:        {(*parser).unary, (*parser).binary, precTerm},
		token.Plus:         {nil, (*parser).binary, precTerm},
		token.Slash:        {nil, (*parser).binary, precFactor},
		token.Star:         {nil, (*parser).binary, precFactor},
		token.Bang:         {(*parser).unary, nil, precNone},
		token.BangEqual:    {nil, (*parser).binary, precEquality},
		token.EqualEqual:   {nil, (*parser).binary, precEquality},
		token.Greater:      {nil, (*parser).binary, precComparison},
		token.GreaterEqual: {nil, (*parser).binary, precComparison},
		token.Less:         {nil, (*parser).binary, precComparison},
		token.LessEqual:    {nil, (*parser).binary, precComparison},
		token.Identifier:   {(*parser).variable, nil, precNone},
		token.String:       {(*parser).string, nil, precNone},
		token.Number:       {(*parser).number, nil, precNone},
		token.And:          {nil, (*parser).and_, precAnd},
		token.Or:           {nil, (*parser).or_, precOr},
		token.False:        {(*parser).literal, nil, precNone},
		token.Nil:          {(*parser).literal, nil, precNone},
		token.True:         {(*parser).literal, nil, precNone},
		token.This:         {(*parser).this, nil, precNone},
		token.Super:        {(*parser).super, nil, precNone},
	}
}

func getRule(k token.Kind) rule {
	if r, ok := rules[k]; ok {
		return r
	}
	return rule{precedence: precNone}
}
