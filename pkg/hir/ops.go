package hir

import "fmt"

// Ref is a handle to one Signal plus the Builder that owns it, carrying
// the original's Integer method-chaining surface (spec Design Notes:
// "keep the fluent operator style, express it as explicit methods on a
// value type instead of a mutable object").
type Ref struct {
	B   *Builder
	Mod ModuleID
	ID  SignalID
}

func (r Ref) sig() *Signal { return r.B.signal(r) }

// Name returns the underlying signal's name.
func (r Ref) Name() string { return r.sig().Name }

// Width returns the signal's resolved width, or an error if inference
// has not yet determined it.
func (r Ref) Width() (int, error) { return r.sig().ResolvedWidth() }

func widthOf(r Ref) *int {
	w, err := r.Width()
	if err != nil {
		return nil
	}
	return &w
}

// binaryOp builds a two-input, one-output block of kind, producing a
// result signal of width matching a (binary ops require equal-width
// operands upstream; width inference ties b's width to a's via Deps).
func binaryOp(kind BlockKind, a, b Ref, resultName string) (Ref, error) {
	if a.B != b.B {
		return Ref{}, fmt.Errorf("hir: operands belong to different builders")
	}
	out, err := a.B.NewSignal(resultName, widthOf(a))
	if err != nil {
		return Ref{}, err
	}
	out.sig().Deps = append(out.sig().Deps, WidthDep{Other: a.ID, Delta: 0})
	blk, err := a.B.newBlock(kind, []SignalID{a.ID, b.ID}, []SignalID{out.ID})
	if err != nil {
		return Ref{}, err
	}
	out.B.markAssign(out)
	a.B.markAccess(a)
	a.B.markAccess(b)
	_ = blk
	return out, nil
}

// Add returns a + b (spec §4.5 add2).
func (r Ref) Add(other Ref) (Ref, error) { return binaryOp(Add2, r, other, "") }

// Sub returns r - other (spec §4.5 sub2).
func (r Ref) Sub(other Ref) (Ref, error) { return binaryOp(Sub2, r, other, "") }

// And, Or, Xor, Nand, Nor are the bitwise block variants.
func (r Ref) And(other Ref) (Ref, error)  { return binaryOp(And2, r, other, "") }
func (r Ref) Or(other Ref) (Ref, error)   { return binaryOp(Or2, r, other, "") }
func (r Ref) Xor(other Ref) (Ref, error)  { return binaryOp(Xor2, r, other, "") }
func (r Ref) Nand(other Ref) (Ref, error) { return binaryOp(Nand2, r, other, "") }
func (r Ref) Nor(other Ref) (Ref, error)  { return binaryOp(Nor2, r, other, "") }

// Mult returns r * other, doubling the operand width (spec §4.5 mult2
// "output width is the sum of the two operand widths").
func (r Ref) Mult(other Ref) (Ref, error) {
	if r.B != other.B {
		return Ref{}, fmt.Errorf("hir: operands belong to different builders")
	}
	var width *int
	wa, erra := r.Width()
	wb, errb := other.Width()
	if erra == nil && errb == nil {
		w := wa + wb
		width = &w
	}
	out, err := r.B.NewSignal("", width)
	if err != nil {
		return Ref{}, err
	}
	if width == nil {
		out.sig().Deps = append(out.sig().Deps,
			WidthDep{Other: r.ID, Delta: 0},
			WidthDep{Other: other.ID, Delta: 0},
		)
	}
	if _, err := r.B.newBlock(Mult2, []SignalID{r.ID, other.ID}, []SignalID{out.ID}); err != nil {
		return Ref{}, err
	}
	out.B.markAssign(out)
	r.B.markAccess(r)
	r.B.markAccess(other)
	return out, nil
}

// Not returns the bitwise complement, same width as r.
func (r Ref) Not() (Ref, error) {
	out, err := r.B.NewSignal("", widthOf(r))
	if err != nil {
		return Ref{}, err
	}
	out.sig().Deps = append(out.sig().Deps, WidthDep{Other: r.ID, Delta: 0})
	if _, err := r.B.newBlock(Not, []SignalID{r.ID}, []SignalID{out.ID}); err != nil {
		return Ref{}, err
	}
	out.B.markAssign(out)
	r.B.markAccess(r)
	return out, nil
}

// Complement returns the two's-complement negation, same width as r.
func (r Ref) Complement() (Ref, error) {
	out, err := r.B.NewSignal("", widthOf(r))
	if err != nil {
		return Ref{}, err
	}
	out.sig().Deps = append(out.sig().Deps, WidthDep{Other: r.ID, Delta: 0})
	if _, err := r.B.newBlock(Complement, []SignalID{r.ID}, []SignalID{out.ID}); err != nil {
		return Ref{}, err
	}
	out.B.markAssign(out)
	r.B.markAccess(r)
	return out, nil
}

// add3Behavior picks the TernaryAdd behavior tag from the two addend
// signs, matching the original's sign-pair dispatch exactly (spec §4.5
// add3 / §4.9's TIA inclusion).
func add3Behavior(sign1, sign2 int) (behavior string, swap bool) {
	switch {
	case sign1 == 1 && sign2 == -1:
		return "add_subw", false
	case sign1 == -1 && sign2 == 1:
		return "add_subw", true
	case sign1 == -1 && sign2 == -1:
		return "sub_subw", false
	default:
		return "add_addw", false
	}
}

// Add3 builds a ternary-input-adder instance: r + sign1*b + sign2*c.
// sign1/sign2 are each +1 or -1 (spec §4.9 / §6 TIA inclusion).
func (r Ref) Add3(b, c Ref, sign1, sign2 int) (Ref, error) {
	behavior, swap := add3Behavior(sign1, sign2)
	in2, in3 := b, c
	if swap {
		in2, in3 = c, b
	}
	out, err := r.B.NewSignal("", widthOf(r))
	if err != nil {
		return Ref{}, err
	}
	out.sig().Deps = append(out.sig().Deps, WidthDep{Other: r.ID, Delta: 0})
	blk, err := r.B.newBlock(TernaryAdd, []SignalID{r.ID, in2.ID, in3.ID}, []SignalID{out.ID})
	if err != nil {
		return Ref{}, err
	}
	blk.Behavior = behavior
	out.B.markAssign(out)
	r.B.markAccess(r)
	r.B.markAccess(in2)
	r.B.markAccess(in3)
	return out, nil
}

// Shift returns r shifted by positions (positive = left/toward MSB).
// positions == 0 emits a pass-through Assign block (spec §4.5 shift);
// |positions| >= width collapses to a zero constant.
func (r Ref) Shift(positions int, arith bool) (Ref, error) {
	w, err := r.Width()
	if err == nil && positions != 0 && abs(positions) >= w {
		return r.B.Constant(0, w, 0)
	}
	out, err2 := r.B.NewSignal("", widthOf(r))
	if err2 != nil {
		return Ref{}, err2
	}
	out.sig().Deps = append(out.sig().Deps, WidthDep{Other: r.ID, Delta: 0})
	kind := Shift
	if positions == 0 {
		kind = Assign
	}
	blk, err2 := r.B.newBlock(kind, []SignalID{r.ID}, []SignalID{out.ID})
	if err2 != nil {
		return Ref{}, err2
	}
	blk.ShiftPositions = positions
	blk.Arith = arith
	out.B.markAssign(out)
	r.B.markAccess(r)
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Extend sign- or zero-extends r to newWidth (spec §4.5 extend).
func (r Ref) Extend(newWidth int, arith bool) (Ref, error) {
	w := newWidth
	out, err := r.B.NewSignal("", &w)
	if err != nil {
		return Ref{}, err
	}
	blk, err := r.B.newBlock(Extend, []SignalID{r.ID}, []SignalID{out.ID})
	if err != nil {
		return Ref{}, err
	}
	blk.Arith = arith
	out.B.markAssign(out)
	r.B.markAccess(r)
	return out, nil
}

// Shorten truncates r to newWidth, dropping the lower dropLower bits
// (spec §4.5 shorten).
func (r Ref) Shorten(newWidth, dropLower int) (Ref, error) {
	w := newWidth
	out, err := r.B.NewSignal("", &w)
	if err != nil {
		return Ref{}, err
	}
	blk, err := r.B.newBlock(Shorten, []SignalID{r.ID}, []SignalID{out.ID})
	if err != nil {
		return Ref{}, err
	}
	blk.ShortenLower = dropLower
	out.B.markAssign(out)
	r.B.markAccess(r)
	return out, nil
}

// Resize extends or shortens r to newWidth, or returns r unchanged when
// newWidth already matches (spec §4.5 resize's no-op-on-equal-width case).
func (r Ref) Resize(newWidth int, arith bool) (Ref, error) {
	w, err := r.Width()
	if err == nil && w == newWidth {
		return r, nil
	}
	if err == nil && newWidth > w {
		return r.Extend(newWidth, arith)
	}
	return r.Shorten(newWidth, 0)
}

// Copy creates a new signal that copy-assigns from r (spec §4.5 copy:
// "a fresh signal of the same width whose own initializer statement is a
// direct assignment from the source").
func (r Ref) Copy(name string) (Ref, error) {
	out, err := r.B.NewSignal(name, widthOf(r))
	if err != nil {
		return Ref{}, err
	}
	out.sig().Deps = append(out.sig().Deps, WidthDep{Other: r.ID, Delta: 0})
	out.sig().Init = InitCopyAssign
	out.sig().InitSrc = r.ID
	out.B.markAssign(out)
	r.B.markAccess(r)
	return out, nil
}

// Constant allocates a new signal whose own initializer is a two's
// complement bit-string literal for value at the given width/decimals
// (spec §4.5 constant).
func (b *Builder) Constant(value int, width, decimals int) (Ref, error) {
	w := width
	out, err := b.NewSignal("", &w)
	if err != nil {
		return Ref{}, err
	}
	out.sig().Init = InitConstant
	out.sig().InitBits = twosComplementBits(value, width)
	return out, nil
}

// twosComplementBits renders value as a width-bit two's complement
// literal, MSB first.
func twosComplementBits(value, width int) string {
	uv := uint64(value)
	if value < 0 {
		uv = uint64(int64(1)<<uint(width)) + uint64(value)
	}
	bits := make([]byte, width)
	for i := 0; i < width; i++ {
		bit := (uv >> uint(width-1-i)) & 1
		if bit == 1 {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}
	return string(bits)
}

// Acc accumulates sigs with a balanced reduction tree: direct pass-through
// for one signal, a single add2 for two, an add3 (ternary adder) for three
// when useTIA is set, else recursive balanced-tree addition (spec §4.5 acc
// / §7 EmptyAccumulation).
func Acc(b *Builder, sigs []Ref, useTIA bool) (Ref, error) {
	switch len(sigs) {
	case 0:
		return Ref{}, fmt.Errorf("hir: empty accumulation")
	case 1:
		return sigs[0], nil
	case 2:
		return sigs[0].Add(sigs[1])
	case 3:
		if useTIA {
			return sigs[0].Add3(sigs[1], sigs[2], 1, 1)
		}
		lo, err := sigs[0].Add(sigs[1])
		if err != nil {
			return Ref{}, err
		}
		return lo.Add(sigs[2])
	default:
		mid := len(sigs) / 2
		left, err := Acc(b, sigs[:mid], useTIA)
		if err != nil {
			return Ref{}, err
		}
		right, err := Acc(b, sigs[mid:], useTIA)
		if err != nil {
			return Ref{}, err
		}
		return left.Add(right)
	}
}
