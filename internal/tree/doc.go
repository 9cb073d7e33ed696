// Package tree holds a configuration document between parsing and typed
// binding, and addresses it by dotted path.
//
// A document is a [Mapping] of string keys to [Value]s, where every Value is
// either a nested Mapping or a [Scalar] leaf. Paths such as
// "gpg.gpg-agent.preload" descend one mapping per segment:
//
//	doc := tree.FromMap(raw)
//	if err := doc.Move("preload-gpg-agent", "gpg.gpg-agent.preload"); err != nil {
//		return err
//	}
//
// [Mapping.Set] never overwrites an existing value; it fails with
// [ErrPathAlreadySet] instead. [Mapping.Get] fails with [ErrInvalidPath] when a
// path descends through a scalar.
package tree
