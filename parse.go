package gosolve

// parser is a precedence-climbing parser over the token stream of
// substituted canonical text. Group nodes take their source text and depth
// from the bracket resolver.
type parser struct {
	text string
	toks []Token
	pos  int
	br   *Brackets
}

// parsed is a parse result: a lone expression, or an equation when hasEq.
type parsed struct {
	lhs, rhs Expr
	hasEq    bool
}

func parseText(text string, br *Brackets) (*parsed, error) {
	sc := ScanText(text, nil)
	p := &parser{text: text, toks: sc.Tokens, br: br}

	out := &parsed{}
	var err error
	if out.lhs, err = p.parseSide(); err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind == TokEquals {
		p.next()
		out.hasEq = true
		if out.rhs, err = p.parseSide(); err != nil {
			return nil, err
		}
	}
	if t := p.peek(); t.Kind != TokEnd {
		return nil, p.unexpected(t)
	}
	return out, nil
}

func (p *parser) peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokEnd, Offset: len(p.text)}
	}
	return p.toks[p.pos]
}

func (p *parser) next() Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) unexpected(t Token) error {
	if t.Kind == TokEnd {
		return newError(ErrMalformedEquation, StageParse, t.Offset, "unexpected end of input")
	}
	if t.Kind == TokEquals {
		return newError(ErrMalformedEquation, StageParse, t.Offset, "missing operand before '='")
	}
	return newError(ErrMalformedEquation, StageParse, t.Offset, "unexpected %q", t.Text)
}

func (p *parser) parseSide() (Expr, error) {
	if t := p.peek(); t.Kind == TokEquals || t.Kind == TokEnd {
		return nil, newError(ErrMalformedEquation, StageParse, t.Offset, "empty side")
	}
	return p.parseExpr(precAdditive)
}

func (p *parser) parseExpr(minPrec int) (Expr, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.Kind != TokOp {
			return lhs, nil
		}
		op := opBySymbol[t.Text[0]]
		if op.Precedence() < minPrec {
			return lhs, nil
		}
		p.next()
		nextMin := op.Precedence() + 1
		if op.rightAssoc() {
			nextMin = op.Precedence()
		}
		rhs, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		lhs = &BinOp{op: op, left: lhs, right: rhs}
	}
}

func (p *parser) parseOperand() (Expr, error) {
	t := p.peek()
	if t.Kind == TokOp && (t.Text == "-" || t.Text == "+") {
		p.next()
		operand, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		if t.Text == "+" {
			return operand, nil
		}
		return &Neg{arg: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.Kind {
	case TokNumber:
		v, err := parseLiteral(t.Text)
		if err != nil {
			return nil, newError(ErrMalformedEquation, StageParse, t.Offset, "bad literal %q", t.Text)
		}
		return &Num{val: v}, nil
	case TokIdent:
		if v, ok := constants[t.Text]; ok {
			return &Num{val: v}, nil
		}
		return &Sym{name: t.Text}, nil
	case TokFunc:
		if open := p.peek(); open.Kind != TokLParen {
			return nil, newError(ErrMalformedEquation, StageParse, t.Offset, "function %q without argument", t.Text)
		}
		arg, err := p.parseGroup(p.next())
		if err != nil {
			return nil, err
		}
		return &Call{fn: funcByName[t.Text], arg: arg}, nil
	case TokLParen:
		return p.parseGroup(t)
	}
	return nil, p.unexpected(t)
}

func (p *parser) parseGroup(open Token) (*Group, error) {
	if t := p.peek(); t.Kind == TokRParen {
		return nil, newError(ErrMalformedEquation, StageParse, t.Offset, "empty brackets")
	}
	inner, err := p.parseExpr(precAdditive)
	if err != nil {
		return nil, err
	}
	closing := p.next()
	if closing.Kind != TokRParen {
		return nil, p.unexpected(closing)
	}
	end, ok := p.br.Match[open.Offset]
	if !ok || end != closing.Offset {
		return nil, newError(ErrUnbalancedBrackets, StageParse, open.Offset, "bracket does not close where expected")
	}
	return &Group{inner: inner, src: p.text[open.Offset : end+1], open: open.Offset, depth: p.br.Depth[open.Offset]}, nil
}
