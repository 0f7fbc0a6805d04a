package object

import (
	"errors"
	"fmt"
)

var (
	// ErrKindMismatch is returned when an entry's representation differs from the accumulator's.
	ErrKindMismatch = errors.New("representation kind mismatch")
	// ErrLengthMismatch is returned when two collections differ in length.
	ErrLengthMismatch = errors.New("collection length mismatch")
	// ErrUnsupportedObject is returned when no merge rule exists for a pair of objects.
	ErrUnsupportedObject = errors.New("unsupported object")
	// ErrEmpty is returned when folding into an empty accumulator.
	ErrEmpty = errors.New("empty accumulator")
)

// Merge merges other into target in place. It is the external merge
// function used by Single and by the elements of a Collection; other is
// never modified.
func Merge(target, other Object) error {
	if target == nil || other == nil {
		return fmt.Errorf("%w: nil object", ErrUnsupportedObject)
	}
	switch t := target.(type) {
	case *Histogram:
		o, ok := other.(*Histogram)
		if !ok {
			return mismatch(target, other)
		}
		return t.add(o)
	case *Counter:
		o, ok := other.(*Counter)
		if !ok {
			return mismatch(target, other)
		}
		t.Value += o.Value
		return nil
	case MergeInterface:
		o, ok := other.(MergeInterface)
		if !ok {
			return mismatch(target, other)
		}
		return t.Merge(o)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedObject, target)
	}
}

func mismatch(target, other Object) error {
	return fmt.Errorf("%w: cannot merge %s into %s", ErrUnsupportedObject, other.TypeName(), target.TypeName())
}

// MergeCollection merges other into target element by element.
// Lengths must match; nothing is merged when they don't.
func MergeCollection(target, other Collection) error {
	if len(target.Objects) != len(other.Objects) {
		return fmt.Errorf("%w: accumulator has %d objects, entry has %d",
			ErrLengthMismatch, len(target.Objects), len(other.Objects))
	}
	for i := range target.Objects {
		if err := Merge(target.Objects[i], other.Objects[i]); err != nil {
			return fmt.Errorf("collection[%d]: %w", i, err)
		}
	}
	return nil
}

// Fold merges entry into acc and returns how many objects were folded in:
// 1 for Single and Custom, the collection length for Collection.
// The entry must have the same kind as acc.
func Fold(acc, entry Representation) (int, error) {
	switch a := acc.(type) {
	case Single:
		e, ok := entry.(Single)
		if !ok {
			return 0, kindMismatch(acc, entry)
		}
		if err := Merge(a.Object, e.Object); err != nil {
			return 0, err
		}
		return 1, nil
	case Custom:
		e, ok := entry.(Custom)
		if !ok {
			return 0, kindMismatch(acc, entry)
		}
		if a.Object == nil || e.Object == nil {
			return 0, fmt.Errorf("%w: nil custom object", ErrUnsupportedObject)
		}
		if err := a.Object.Merge(e.Object); err != nil {
			return 0, err
		}
		return 1, nil
	case Collection:
		e, ok := entry.(Collection)
		if !ok {
			return 0, kindMismatch(acc, entry)
		}
		if err := MergeCollection(a, e); err != nil {
			return 0, err
		}
		return len(a.Objects), nil
	case Empty, nil:
		return 0, ErrEmpty
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedObject, acc)
	}
}

func kindMismatch(acc, entry Representation) error {
	entryKind := "nil"
	if entry != nil {
		entryKind = entry.Kind().String()
	}
	return fmt.Errorf("%w: accumulator is %s, entry is %s", ErrKindMismatch, acc.Kind(), entryKind)
}
