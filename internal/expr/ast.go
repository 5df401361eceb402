package expr

import (
	"strconv"
	"strings"
)

// Node is a parsed expression.
type Node interface {
	// Pos returns the byte offset of the node in the formula.
	Pos() int
	String() string
}

// Literal is a number, string, boolean, null or undefined constant.
type Literal struct {
	Value  any
	Offset int
}

// Ident is a bare name resolved against parameters, scope and globals.
type Ident struct {
	Name   string
	Offset int
}

// Unary is a prefix operator: "!", "-" or "typeof".
type Unary struct {
	Op      string
	Operand Node
	Offset  int
}

// Binary is an infix operator.
type Binary struct {
	Op          string
	Left, Right Node
	Offset      int
}

// Ternary is cond ? then : otherwise.
type Ternary struct {
	Cond, Then, Else Node
	Offset           int
}

// Member is object.name.
type Member struct {
	Object Node
	Name   string
	Offset int
}

// Call invokes Callee with Args. When Callee is a Member the call is a
// method call on the member's object.
type Call struct {
	Callee Node
	Args   []Node
	Offset int
}

func (n *Literal) Pos() int { return n.Offset }
func (n *Ident) Pos() int   { return n.Offset }
func (n *Unary) Pos() int   { return n.Offset }
func (n *Binary) Pos() int  { return n.Offset }
func (n *Ternary) Pos() int { return n.Offset }
func (n *Member) Pos() int  { return n.Offset }
func (n *Call) Pos() int    { return n.Offset }

func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return formatNumber(v)
	}
	return toString(n.Value)
}

func (n *Ident) String() string { return n.Name }

func (n *Unary) String() string {
	if n.Op == "typeof" {
		return "(typeof " + n.Operand.String() + ")"
	}
	return "(" + n.Op + n.Operand.String() + ")"
}

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

func (n *Ternary) String() string {
	return "(" + n.Cond.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

func (n *Member) String() string {
	return n.Object.String() + "." + n.Name
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}
