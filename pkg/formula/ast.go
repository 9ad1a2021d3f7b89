package formula

import "fmt"

// Proposition is an atomic proposition looked up in the state's label set.
type Proposition struct {
	node
	Name string
}

func NewProposition(name string) *Proposition { return &Proposition{Name: name} }

func (f *Proposition) Key() string         { return f.Name }
func (f *Proposition) Children() []Formula { return nil }
func (f *Proposition) Eval(s State) bool {
	res := s.HasProposition(f.Name)
	s.SetNow(f.id, res)
	return res
}

// Constant is the literal TRUE or FALSE.
type Constant struct {
	node
	Value bool
}

func NewConstant(value bool) *Constant { return &Constant{Value: value} }

func (f *Constant) Key() string {
	if f.Value {
		return "TRUE"
	}
	return "FALSE"
}
func (f *Constant) Children() []Formula { return nil }
func (f *Constant) Eval(s State) bool {
	s.SetNow(f.id, f.Value)
	return f.Value
}

// Not is logical negation.
type Not struct {
	node
	F Formula
}

func NewNot(f Formula) *Not { return &Not{F: f} }

func (f *Not) Key() string         { return fmt.Sprintf("! %s", f.F.Key()) }
func (f *Not) Children() []Formula { return []Formula{f.F} }
func (f *Not) Eval(s State) bool {
	res := !f.F.Eval(s)
	s.SetNow(f.id, res)
	return res
}

// Paren preserves explicit grouping from the source text.
type Paren struct {
	node
	F Formula
}

func NewParen(f Formula) *Paren { return &Paren{F: f} }

func (f *Paren) Key() string         { return fmt.Sprintf("(%s)", f.F.Key()) }
func (f *Paren) Children() []Formula { return []Formula{f.F} }
func (f *Paren) Eval(s State) bool {
	res := f.F.Eval(s)
	s.SetNow(f.id, res)
	return res
}

// And is logical conjunction. Both operands are always evaluated so their
// cache entries are populated.
type And struct {
	node
	Left, Right Formula
}

func NewAnd(l, r Formula) *And { return &And{Left: l, Right: r} }

func (f *And) Key() string         { return fmt.Sprintf("%s & %s", f.Left.Key(), f.Right.Key()) }
func (f *And) Children() []Formula { return []Formula{f.Left, f.Right} }
func (f *And) Eval(s State) bool {
	a := f.Left.Eval(s)
	b := f.Right.Eval(s)
	res := a && b
	s.SetNow(f.id, res)
	return res
}

// Or is logical disjunction.
type Or struct {
	node
	Left, Right Formula
}

func NewOr(l, r Formula) *Or { return &Or{Left: l, Right: r} }

func (f *Or) Key() string         { return fmt.Sprintf("%s | %s", f.Left.Key(), f.Right.Key()) }
func (f *Or) Children() []Formula { return []Formula{f.Left, f.Right} }
func (f *Or) Eval(s State) bool {
	a := f.Left.Eval(s)
	b := f.Right.Eval(s)
	res := a || b
	s.SetNow(f.id, res)
	return res
}

// Implies is material implication.
type Implies struct {
	node
	Left, Right Formula
}

func NewImplies(l, r Formula) *Implies { return &Implies{Left: l, Right: r} }

func (f *Implies) Key() string         { return fmt.Sprintf("%s -> %s", f.Left.Key(), f.Right.Key()) }
func (f *Implies) Children() []Formula { return []Formula{f.Left, f.Right} }
func (f *Implies) Eval(s State) bool {
	a := f.Left.Eval(s)
	b := f.Right.Eval(s)
	res := !a || b
	s.SetNow(f.id, res)
	return res
}

// Iff is logical equivalence.
type Iff struct {
	node
	Left, Right Formula
}

func NewIff(l, r Formula) *Iff { return &Iff{Left: l, Right: r} }

func (f *Iff) Key() string         { return fmt.Sprintf("%s <-> %s", f.Left.Key(), f.Right.Key()) }
func (f *Iff) Children() []Formula { return []Formula{f.Left, f.Right} }
func (f *Iff) Eval(s State) bool {
	a := f.Left.Eval(s)
	b := f.Right.Eval(s)
	res := a == b
	s.SetNow(f.id, res)
	return res
}

// EY ("exists yesterday") holds when some immediate predecessor satisfied
// the operand. It is false on a state with no predecessors.
type EY struct {
	node
	F Formula
}

func NewEY(f Formula) *EY { return &EY{F: f} }

func (f *EY) Key() string         { return fmt.Sprintf("EY(%s)", f.F.Key()) }
func (f *EY) Children() []Formula { return []Formula{f.F} }
func (f *EY) Eval(s State) bool {
	res := anyPred(s, f.F.nodeID())
	f.F.Eval(s)
	s.SetNow(f.id, res)
	return res
}

// AY ("all yesterday") holds when every immediate predecessor satisfied the
// operand. It is vacuously true on a state with no predecessors.
type AY struct {
	node
	F Formula
}

func NewAY(f Formula) *AY { return &AY{F: f} }

func (f *AY) Key() string         { return fmt.Sprintf("AY(%s)", f.F.Key()) }
func (f *AY) Children() []Formula { return []Formula{f.F} }
func (f *AY) Eval(s State) bool {
	res := allPreds(s, f.F.nodeID())
	f.F.Eval(s)
	s.SetNow(f.id, res)
	return res
}

// EP ("exists previously") holds when the operand holds now or held at some
// point on some path into the past.
type EP struct {
	node
	F Formula
}

func NewEP(f Formula) *EP { return &EP{F: f} }

func (f *EP) Key() string         { return fmt.Sprintf("EP(%s)", f.F.Key()) }
func (f *EP) Children() []Formula { return []Formula{f.F} }
func (f *EP) Eval(s State) bool {
	res := f.F.Eval(s) || anyPred(s, f.id)
	s.SetNow(f.id, res)
	return res
}

// AP ("all previously") holds when the operand holds now, or every path into
// the past reaches a state where it held. On a state with no predecessors it
// reduces to the operand.
type AP struct {
	node
	F Formula
}

func NewAP(f Formula) *AP { return &AP{F: f} }

func (f *AP) Key() string         { return fmt.Sprintf("AP(%s)", f.F.Key()) }
func (f *AP) Children() []Formula { return []Formula{f.F} }
func (f *AP) Eval(s State) bool {
	res := f.F.Eval(s) || (hasPreds(s) && allPreds(s, f.id))
	s.SetNow(f.id, res)
	return res
}

// EH ("exists historically") holds when the operand holds now and along some
// entire path into the past.
type EH struct {
	node
	F Formula
}

func NewEH(f Formula) *EH { return &EH{F: f} }

func (f *EH) Key() string         { return fmt.Sprintf("EH(%s)", f.F.Key()) }
func (f *EH) Children() []Formula { return []Formula{f.F} }
func (f *EH) Eval(s State) bool {
	res := f.F.Eval(s) && (!hasPreds(s) || anyPred(s, f.id))
	s.SetNow(f.id, res)
	return res
}

// AH ("all historically") holds when the operand holds now and along every
// path into the past.
type AH struct {
	node
	F Formula
}

func NewAH(f Formula) *AH { return &AH{F: f} }

func (f *AH) Key() string         { return fmt.Sprintf("AH(%s)", f.F.Key()) }
func (f *AH) Children() []Formula { return []Formula{f.F} }
func (f *AH) Eval(s State) bool {
	res := f.F.Eval(s) && allPreds(s, f.id)
	s.SetNow(f.id, res)
	return res
}

// ES ("exists since") holds when the right operand holds now, or the left
// operand holds now and some predecessor already satisfied the since.
type ES struct {
	node
	Left, Right Formula
}

func NewES(l, r Formula) *ES { return &ES{Left: l, Right: r} }

func (f *ES) Key() string         { return fmt.Sprintf("E(%s S %s)", f.Left.Key(), f.Right.Key()) }
func (f *ES) Children() []Formula { return []Formula{f.Left, f.Right} }
func (f *ES) Eval(s State) bool {
	p := f.Left.Eval(s)
	q := f.Right.Eval(s)
	res := q || (p && anyPred(s, f.id))
	s.SetNow(f.id, res)
	return res
}

// AS ("all since") holds when the right operand holds now, or the left
// operand holds now and every predecessor already satisfied the since. On a
// state with no predecessors it reduces to the right operand.
type AS struct {
	node
	Left, Right Formula
}

func NewAS(l, r Formula) *AS { return &AS{Left: l, Right: r} }

func (f *AS) Key() string         { return fmt.Sprintf("A(%s S %s)", f.Left.Key(), f.Right.Key()) }
func (f *AS) Children() []Formula { return []Formula{f.Left, f.Right} }
func (f *AS) Eval(s State) bool {
	p := f.Left.Eval(s)
	q := f.Right.Eval(s)
	res := q || (p && hasPreds(s) && allPreds(s, f.id))
	s.SetNow(f.id, res)
	return res
}
