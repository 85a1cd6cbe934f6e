package tir

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a deterministic textual form of n into w. The form is meant
// for humans and golden tests, it is not parsed back.
func Fprint(w io.Writer, n Node) error {
	p := &printer{}
	p.node(n)
	if _, err := io.WriteString(w, p.b.String()); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}

	return nil
}

// Sprint returns the textual form of n.
func Sprint(n Node) string {
	p := &printer{}
	p.node(n)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) line(s string) {
	p.b.WriteString(strings.Repeat("  ", p.indent))
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

func (p *printer) node(n Node) {
	switch v := n.(type) {
	case *Func:
		p.line(fmt.Sprintf("func %s() %s {", v.Name, v.Result()))
		p.indent++
		p.stmts(v.Body)
		p.indent--
		p.line("}")
	case *Block:
		p.stmts(v)
	case Stmt:
		p.stmt(v)
	case *CatchClause:
		p.line(catchHeader(v) + " {")
		p.indent++
		p.stmts(v.Body)
		p.indent--
		p.line("}")
	case Expr:
		p.body(v)
	default:
		panic(fmt.Errorf("dump: unhandled node %T", n))
	}
}

func (p *printer) stmts(b *Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		p.stmt(s)
	}
}

func (p *printer) stmt(s Stmt) {
	switch v := s.(type) {
	case *Let:
		p.expr("let "+v.Name+" = ", v.Value, "")
	case *ExprStmt:
		p.expr("", v.X, "")
	case *Throw:
		p.expr("throw ", v.Value, "")
	case *BlockStmt:
		p.line("{")
		p.indent++
		p.stmts(v.Body)
		p.indent--
		p.line("}")
	case *If:
		p.expr("if ", v.Cond, " {")
		p.indent++
		p.stmts(v.Then)
		p.indent--
		if v.Else != nil {
			p.line("} else {")
			p.indent++
			p.stmts(v.Else)
			p.indent--
		}
		p.line("}")
	default:
		panic(fmt.Errorf("dump: unhandled statement %T", s))
	}
}

// body renders an expression in statement position: binds are unfolded into
// a flat sequence of lines.
func (p *printer) body(x Expr) {
	for {
		b, ok := x.(*Bind)
		if !ok {
			break
		}
		p.expr("let "+b.Name+" = ", b.Value, "")
		x = b.Body
	}
	p.expr("", x, "")
}

// expr renders x whose first line starts with prefix and whose last line ends
// with suffix.
func (p *printer) expr(prefix string, x Expr, suffix string) {
	if inline(x) {
		p.line(prefix + p.inline(x) + suffix)
		return
	}

	switch v := x.(type) {
	case *Bind:
		p.line(prefix + "{")
		p.indent++
		p.body(v)
		p.indent--
		p.line("}" + suffix)
	case *Match:
		p.expr(prefix+"match ", v.Subject, " {")
		p.indent++
		p.arm("ok("+v.OkName+") => {", v.OnOk)
		p.arm("err("+v.ErrName+") => {", v.OnErr)
		p.indent--
		p.line("}" + suffix)
	case *Cond:
		p.expr(prefix+"if ", v.Cond, " {")
		p.indent++
		p.body(v.Then)
		p.indent--
		p.line("} else {")
		p.indent++
		p.body(v.Else)
		p.indent--
		p.line("}" + suffix)
	case *Return:
		p.expr(prefix+"return ", v.Value, suffix)
	case *OkValue:
		p.expr(prefix+"ok(", v.X, ")"+suffix)
	case *ErrValue:
		p.expr(prefix+"err(", v.X, ")"+suffix)
	case *Call:
		p.line(prefix + v.Fun + "(")
		p.indent++
		for _, a := range v.Args {
			p.expr("", a, ",")
		}
		p.indent--
		p.line(")" + suffix)
	case *TryCatch:
		p.line(prefix + "try {")
		p.indent++
		p.stmts(v.Try)
		p.indent--
		for _, c := range v.Catches {
			p.line("} " + catchHeader(c) + " {")
			p.indent++
			p.stmts(c.Body)
			p.indent--
		}
		p.line("}" + suffix)
	default:
		panic(fmt.Errorf("dump: unhandled expression %T", x))
	}
}

func (p *printer) arm(head string, x Expr) {
	p.line(head)
	p.indent++
	p.body(x)
	p.indent--
	p.line("}")
}

func (p *printer) inline(x Expr) string {
	switch v := x.(type) {
	case *Ident:
		return v.Name
	case *Lit:
		return v.Value
	case *Invalid:
		return "<invalid: " + v.Reason + ">"
	case *Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = p.inline(a)
		}
		return v.Fun + "(" + strings.Join(args, ", ") + ")"
	case *Return:
		return "return " + p.inline(v.Value)
	case *OkValue:
		return "ok(" + p.inline(v.X) + ")"
	case *ErrValue:
		return "err(" + p.inline(v.X) + ")"
	default:
		panic(fmt.Errorf("dump: %T cannot be rendered inline", x))
	}
}

func inline(x Expr) bool {
	switch v := x.(type) {
	case *Ident, *Lit, *Invalid:
		return true
	case *Call:
		for _, a := range v.Args {
			if !inline(a) {
				return false
			}
		}
		return true
	case *Return:
		return inline(v.Value)
	case *OkValue:
		return inline(v.X)
	case *ErrValue:
		return inline(v.X)
	default:
		return false
	}
}

func catchHeader(c *CatchClause) string {
	if c.Binding == "" {
		return "catch (" + string(c.Pattern) + ")"
	}

	return "catch (" + c.Binding + ": " + string(c.Pattern) + ")"
}
