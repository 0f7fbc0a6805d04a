// Package object holds the mergeable objects and the closed set of
// representations a producer payload can decode into.
//
// Representation is a sealed interface with exactly four implementations:
//
//	Empty      no object yet
//	Single     one object merged by the external Merge function
//	Custom     one object implementing MergeInterface
//	Collection an ordered slice of objects merged element-wise
//
// Fold is the only place the merge step dispatches on the representation,
// using an exhaustive type switch. Adding a fifth representation means
// touching Fold, Encode and Decode, and nothing else.
package object
