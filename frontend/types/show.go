package types

import (
	"fmt"
	"github.com/hashicorp/go-set/v3"
	"strings"
)

// TypeString renders t. Cyclic types (which only Unifier.Inferred produces)
// print with a binder: a pointer to a record containing itself is
//
//	μt0.↑{next:t0}
//
// Distinct variables which would print the same, such as the alphas of two
// `null` literals, are told apart by the ID of their node: α<null@n3>.
func TypeString(t Type) string {
	p := &typePrinter{
		recursive: make(map[Type]string),
		onPath:    set.New[Type](0),
		explored:  set.New[Type](0),
		labels:    make(map[varLabel]*set.Set[VarID]),
	}
	p.findCycles(t)
	p.write(t)
	return p.sb.String()
}

type typePrinter struct {
	sb strings.Builder
	// recursive holds the nodes some descendant points back to, with their binder name
	recursive map[Type]string
	onPath    *set.Set[Type]
	explored  *set.Set[Type]
	// labels holds the IDs of the variables sharing each label
	labels map[varLabel]*set.Set[VarID]
}

func (p *typePrinter) findCycles(t Type) {
	if p.onPath.Contains(t) {
		if _, ok := p.recursive[t]; !ok {
			p.recursive[t] = fmt.Sprintf("t%d", len(p.recursive))
		}
		return
	}
	if p.explored.Contains(t) {
		return
	}
	if v, ok := t.(*Var); ok {
		label := labelOf(v)
		if p.labels[label] == nil {
			p.labels[label] = set.New[VarID](1)
		}
		p.labels[label].Insert(v.ID)
	}
	p.onPath.Insert(t)
	for _, arg := range t.Args() {
		if arg != nil {
			p.findCycles(arg)
		}
	}
	p.onPath.Remove(t)
	p.explored.Insert(t)
}

func (p *typePrinter) write(t Type) {
	if t == nil {
		p.sb.WriteString("<nil>")
		return
	}
	name, isRecursive := p.recursive[t]
	if isRecursive {
		if p.onPath.Contains(t) {
			p.sb.WriteString(name)
			return
		}
		p.sb.WriteString("μ" + name + ".")
	}
	p.onPath.Insert(t)
	defer p.onPath.Remove(t)

	switch t := t.(type) {
	case *Int:
		p.sb.WriteString("int")
	case *Bool:
		p.sb.WriteString("boolean")
	case *Absent:
		p.sb.WriteString("◇")
	case *Ref:
		p.sb.WriteString("↑")
		p.write(t.Inner)
	case *Func:
		p.sb.WriteByte('(')
		for i, param := range t.Params {
			if i > 0 {
				p.sb.WriteByte(',')
			}
			p.write(param)
		}
		p.sb.WriteString(") -> ")
		p.write(t.Ret)
	case *Array:
		p.sb.WriteString("array[")
		p.write(t.Elem)
		p.sb.WriteByte(']')
	case *Record:
		p.sb.WriteByte('{')
		for i, field := range t.Fields {
			if i > 0 {
				p.sb.WriteByte(',')
			}
			p.sb.WriteString(t.Names.Get(i))
			p.sb.WriteByte(':')
			p.write(field)
		}
		p.sb.WriteByte('}')
	case *Var:
		label := labelOf(t)
		text := label.text
		if ids := p.labels[label]; ids != nil && ids.Size() > 1 {
			text += "@" + t.ID.Node.String()
		}
		if t.ID.Kind == TermVar {
			p.sb.WriteString("[[" + text + "]]")
		} else {
			p.sb.WriteString("α<" + text + ">")
		}
	default:
		panic(fmt.Sprintf("unexpected type %T", t))
	}
}

type varLabel struct {
	kind VarKind
	text string
}

func labelOf(v *Var) varLabel {
	if v.ID.Kind == AlphaVar && v.ID.Field != "" {
		return varLabel{v.ID.Kind, v.Label + ":" + v.ID.Field}
	}
	return varLabel{v.ID.Kind, v.Label}
}
