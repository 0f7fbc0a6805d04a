package object

import "github.com/roach88/mergers/internal/ir"

// Representation is a sealed interface: only Empty, Single, Custom and
// Collection implement it.
type Representation interface {
	Kind() ir.Kind
	representation()
}

// Empty holds no object.
type Empty struct{}

// Single holds one object merged with the external Merge function.
type Single struct {
	Object Object
}

// Custom holds one self-merging object.
type Custom struct {
	Object MergeInterface
}

// Collection holds objects merged position by position.
type Collection struct {
	Objects []Object
}

func (Empty) representation()      {}
func (Single) representation()     {}
func (Custom) representation()     {}
func (Collection) representation() {}

func (Empty) Kind() ir.Kind      { return ir.KindUnknown }
func (Single) Kind() ir.Kind     { return ir.KindSingle }
func (Custom) Kind() ir.Kind     { return ir.KindCustom }
func (Collection) Kind() ir.Kind { return ir.KindCollection }

// IsEmpty reports whether r carries no object. A nil Representation is empty.
func IsEmpty(r Representation) bool {
	switch v := r.(type) {
	case nil, Empty:
		return true
	case Single:
		return v.Object == nil
	case Custom:
		return v.Object == nil
	case Collection:
		return false
	default:
		return true
	}
}

// Len is the number of objects r carries.
func Len(r Representation) int {
	switch v := r.(type) {
	case Single, Custom:
		if IsEmpty(v) {
			return 0
		}
		return 1
	case Collection:
		return len(v.Objects)
	default:
		return 0
	}
}
