package expr

import "fmt"

// binaryLevels lists the binary operators from lowest to highest
// precedence. Every operator is its own left-associative level.
var binaryLevels = []string{
	"||", "&&", "!==", "===", "!=", "==", ">=", ">", "<=", "<", "-", "+", "/", "*",
}

type parser struct {
	text string
	toks []token
	pos  int
}

// Parse parses formula text into an expression tree.
func Parse(text string) (Node, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{text: text, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(p.peek(), "empty expression")
	}
	n, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s %q", t.kind, t.text)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

func (p *parser) expect(op string) error {
	if !p.isOp(op) {
		t := p.peek()
		if t.kind == tokEOF {
			return p.errorf(t, "expected %q, found end of input", op)
		}
		return p.errorf(t, "expected %q, found %q", op, t.text)
	}
	p.next()
	return nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Text: p.text, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// parseTernary parses cond ? a : b, which binds loosest and nests to the right.
func (p *parser) parseTernary() (Node, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.isOp("?") {
		return cond, nil
	}
	q := p.next()
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	otherwise, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &Ternary{Cond: cond, Then: then, Else: otherwise, Offset: q.pos}, nil
}

func (p *parser) parseBinary(level int) (Node, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	op := binaryLevels[level]

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.isOp(op) {
		t := p.next()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right, Offset: t.pos}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	t := p.peek()
	switch {
	case t.kind == tokIdent && t.text == "typeof":
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "typeof", Operand: operand, Offset: t.pos}, nil
	case t.kind == tokOp && (t.text == "!" || t.text == "-" || t.text == "+"):
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: t.text, Operand: operand, Offset: t.pos}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("."):
			dot := p.next()
			name := p.next()
			if name.kind != tokIdent {
				return nil, p.errorf(name, "expected property name after '.'")
			}
			n = &Member{Object: n, Name: name.text, Offset: dot.pos}
		case p.isOp("("):
			open := p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			n = &Call{Callee: n, Args: args, Offset: open.pos}
		default:
			return n, nil
		}
	}
}

func (p *parser) parseArgs() ([]Node, error) {
	var args []Node
	if p.isOp(")") {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isOp(",") {
			p.next()
			continue
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &Literal{Value: t.num, Offset: t.pos}, nil
	case tokString:
		return &Literal{Value: t.text, Offset: t.pos}, nil
	case tokIdent:
		switch t.text {
		case "true":
			return &Literal{Value: true, Offset: t.pos}, nil
		case "false":
			return &Literal{Value: false, Offset: t.pos}, nil
		case "null":
			return &Literal{Value: nil, Offset: t.pos}, nil
		case "undefined":
			return &Literal{Value: Undefined, Offset: t.pos}, nil
		case "typeof":
			return nil, p.errorf(t, "unexpected typeof")
		}
		return &Ident{Name: t.text, Offset: t.pos}, nil
	case tokOp:
		if t.text == "(" {
			n, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return nil, p.errorf(t, "unexpected end of input")
}
