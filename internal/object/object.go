package object

// Object is anything that can be merged and published.
// TypeName selects the factory used to decode it; Name is the user-facing title.
type Object interface {
	Name() string
	TypeName() string
}

// MergeInterface is implemented by objects that know how to merge themselves.
// Merge is destructive on the receiver and must not retain other.
type MergeInterface interface {
	Object
	Merge(other MergeInterface) error
}
