package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/npillmayer/gmexpr/ast"
	"github.com/npillmayer/gmexpr/gmexpr/ui/termui"
	"github.com/npillmayer/gmexpr/sframe"
)

// Formatter renders session results. Mode is one of canonical, infix or tree.
type Formatter struct {
	termui.DefaultFormatter
	Mode string
}

// Format renders checked expressions, signature listings and variable
// declarations, and delegates everything else to the default formatter.
func (f Formatter) Format(item interface{}, w io.Writer) (bool, error) {
	tracer().Debugf("format item of type %T", item)
	switch t := item.(type) {
	case Checked:
		return true, f.checked(t, w)
	case SignatureList:
		item = signatureTable(t)
	case []*sframe.VarDecl:
		item = variableTable(t)
	}
	return f.DefaultFormatter.Format(item, w)
}

func (f Formatter) checked(c Checked, w io.Writer) error {
	if c.Expr != nil {
		var err error
		switch f.Mode {
		case "tree":
			_, err = fmt.Fprintln(w, treeList(c.Expr).Render())
		case "infix":
			_, err = fmt.Fprintf(w, "▶ %s : %s\n", ast.Format(c.Expr, ast.Infix), c.Expr.Type())
		default:
			_, err = fmt.Fprintf(w, "▶ %s : %s\n", ast.String(c.Expr), c.Expr.Type())
		}
		if err != nil {
			return err
		}
	}
	if c.Diags != nil && c.Diags.Len() > 0 {
		return c.Diags.Render(w, c.Source)
	}
	if c.Err != nil {
		_, err := fmt.Fprintf(w, "error: %v\n", c.Err)
		return err
	}
	return nil
}

// treeList renders an expression as an indented tree, one node per line.
func treeList(e ast.Expression) list.Writer {
	lw := list.NewWriter()
	lw.SetStyle(list.StyleConnectedLight)
	var add func(ast.Expression)
	add = func(e ast.Expression) {
		lw.AppendItem(nodeLabel(e))
		if children := e.Children(); len(children) > 0 {
			lw.Indent()
			for _, ch := range children {
				add(ch)
			}
			lw.UnIndent()
		}
	}
	add(e)
	return lw
}

func nodeLabel(e ast.Expression) string {
	var label string
	switch x := e.(type) {
	case *ast.IntLiteral, *ast.DoubleLiteral:
		label = ast.String(x)
	case *ast.Variable:
		label = x.Name
	case *ast.ArrayLiteral:
		label = "a__[]"
	case *ast.Index:
		groups := make([]string, len(x.Dims))
		for i, g := range x.Dims {
			groups[i] = "[" + strings.Repeat(",", len(g)-1) + "]"
		}
		label = "index " + strings.Join(groups, "")
	case *ast.Call:
		label = x.Name + "()"
	case *ast.Unary:
		label = "unary " + x.Op.String()
	case *ast.Binary:
		label = "binary " + x.Op.String()
	}
	return fmt.Sprintf("%s : %s", label, e.Type())
}

func signatureTable(sigs SignatureList) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Function", "Parameters", "Result"})
	for _, s := range sigs {
		params := make([]string, len(s.Sig.Params))
		for i, p := range s.Sig.Params {
			params[i] = p.String()
		}
		tw.AppendRow(table.Row{s.Name, strings.Join(params, ", "), s.Sig.Result.String()})
	}
	tw.SetStyle(table.StyleLight)
	return tw
}

func variableTable(decls []*sframe.VarDecl) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Variable", "Type"})
	for _, d := range decls {
		tw.AppendRow(table.Row{d.Name, d.Type.String()})
	}
	tw.SetStyle(table.StyleLight)
	return tw
}
