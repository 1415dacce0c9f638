// Package prettyprinter renders the typed tree as indented text with type,
// effect and ownership annotations. The output is for debugging and test
// assertions, not for re-parsing.
package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/typesystem"
)

type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// PrintUnit renders the whole unit.
func (p *CodePrinter) PrintUnit(unit *hir.Unit) string {
	p.buf.Reset()
	for _, n := range unit.Exprs {
		p.printNode(n)
		p.buf.WriteByte('\n')
	}
	return p.buf.String()
}

// PrintNode renders a single subtree.
func (p *CodePrinter) PrintNode(n hir.Node) string {
	p.buf.Reset()
	p.printNode(n)
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
}

func (p *CodePrinter) line(format string, args ...any) {
	p.writeIndent()
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

// annot renders the node's shared annotations.
func annot(n hir.Node) string {
	s := ": " + n.Type().String()
	if n.EffectTag() == typesystem.EffectProc {
		s += " !"
	}
	return s
}

func (p *CodePrinter) printNode(n hir.Node) {
	switch n := n.(type) {
	case *hir.Literal:
		p.line("lit %s%s", literalText(n), annot(n))

	case *hir.VarRef:
		p.line("ref %s%s", n.Name, annot(n))

	case *hir.FieldAccess:
		p.line("field .%s%s", n.Field, annot(n))
		p.nested(n.Target)

	case *hir.Call:
		p.line("call%s%s", dispatchText(n.Dispatch), annot(n))
		p.nested(n.Callee)
		for _, a := range n.Args {
			p.nested(a)
		}

	case *hir.Def:
		head := "val"
		if n.IsSubroutine() {
			head = "def"
		}
		own := ""
		if n.Own.Moved {
			own = " [" + n.Own.String() + "]"
		}
		p.line("%s %s :: %s%s", head, n.Name, n.Scheme, own)
		p.indent++
		for _, param := range n.Params {
			p.line("param %s: %s", param.Name, param.Typ)
		}
		p.printNode(n.Body)
		p.indent--

	case *hir.Lambda:
		p.line("lambda%s%s", captureText(n.Captures, n.MoveCapture), annot(n))
		p.indent++
		for _, param := range n.Params {
			p.line("param %s: %s", param.Name, param.Typ)
		}
		p.printNode(n.Body)
		p.indent--

	case *hir.ArrayLit:
		p.line("list%s", annot(n))
		for _, e := range n.Elems {
			p.nested(e)
		}

	case *hir.RecordLit:
		p.line("record%s", annot(n))
		p.indent++
		for _, f := range n.Fields {
			p.line("field %s =", f.Name)
			p.nested(f.Value)
		}
		p.indent--

	case *hir.Comprehension:
		p.line("comprehend %s%s", n.Binding.Name, annot(n))
		p.nested(n.Source)
		if n.Filter != nil {
			p.nested(n.Filter)
		}
		p.nested(n.Body)

	case *hir.Block:
		p.line("block%s", annot(n))
		for _, e := range n.Exprs {
			p.nested(e)
		}

	default:
		p.line("<%T>", n)
	}
}

func (p *CodePrinter) nested(n hir.Node) {
	p.indent++
	p.printNode(n)
	p.indent--
}

func literalText(n *hir.Literal) string {
	switch n.Kind {
	case hir.LitInt:
		return strconv.FormatInt(n.Int, 10)
	case hir.LitFloat:
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	case hir.LitString:
		return strconv.Quote(n.Str)
	case hir.LitBool:
		return strconv.FormatBool(n.Bool)
	default:
		return "()"
	}
}

func dispatchText(d hir.Dispatch) string {
	switch d.Kind {
	case hir.DispatchStatic:
		return fmt.Sprintf(" static(%s.%s#%d)", d.Trait, d.Method, d.ImplIndex)
	case hir.DispatchTable:
		return fmt.Sprintf(" table(%s.%s)", d.Trait, d.Method)
	default:
		return ""
	}
}

func captureText(captures []hir.Capture, move bool) string {
	if len(captures) == 0 {
		return ""
	}
	s := " ["
	for i, c := range captures {
		if i > 0 {
			s += " "
		}
		if c.ByValue || move {
			s += "move:" + c.Name
		} else {
			s += c.Name
		}
	}
	return s + "]"
}
