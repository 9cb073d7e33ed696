package tree

import (
	"strings"

	"github.com/thoreinstein/passmenu/internal/errors"
)

// Separator joins the segments of a dotted path.
const Separator = "."

var (
	// ErrInvalidPath indicates a path is empty, has an empty segment, or
	// descends through a value that is not a mapping.
	ErrInvalidPath = errors.New("invalid path")

	// ErrPathAlreadySet indicates a Set target, or one of its parents,
	// already holds a value that must not be overwritten.
	ErrPathAlreadySet = errors.New("path already set")
)

// Path is a parsed dotted path. The first segment addresses a key of the
// root mapping.
type Path []string

// ParsePath splits s on Separator. Every segment must be non-empty.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, errors.Wrap(ErrInvalidPath, "empty path")
	}
	p := Path(strings.Split(s, Separator))
	for _, seg := range p {
		if seg == "" {
			return nil, errors.Wrapf(ErrInvalidPath, "empty segment in %q", s)
		}
	}
	return p, nil
}

// Head returns the first segment.
func (p Path) Head() string {
	return p[0]
}

// Tail returns every segment after the head; it is empty for a single-segment path.
func (p Path) Tail() Path {
	return p[1:]
}

func (p Path) String() string {
	return strings.Join(p, Separator)
}

// Get returns the value at path. A missing key anywhere along the path yields
// (nil, false, nil). Descending through a non-mapping value is an
// ErrInvalidPath error.
func (m Mapping) Get(path string) (Value, bool, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, false, err
	}

	cur := m
	for i, seg := range p {
		v, ok := cur[seg]
		if !ok {
			return nil, false, nil
		}
		if i == len(p)-1 {
			return v, true, nil
		}
		child, ok := v.(Mapping)
		if !ok {
			return nil, false, errors.Wrapf(ErrInvalidPath,
				"expected a nested structure at %q", p[:i+1].String())
		}
		cur = child
	}
	return nil, false, nil
}

// Set stores v at path. Missing parents are created, existing mappings are
// descended into, and null placeholders on the way are replaced with new
// mappings. Set never overwrites: an existing leaf (even a null one) or a
// non-null scalar parent is an ErrPathAlreadySet error, and the tree is left
// unchanged when Set fails.
func (m Mapping) Set(path string, v Value) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	if v == nil {
		v = Null()
	}

	if err := m.checkSet(p); err != nil {
		return err
	}

	cur := m
	for _, seg := range p[:len(p)-1] {
		child, ok := cur[seg].(Mapping)
		if !ok {
			// Absent or null placeholder; checkSet rejected everything else.
			child = Mapping{}
			cur[seg] = child
		}
		cur = child
	}
	cur[p[len(p)-1]] = v
	return nil
}

// checkSet walks p without mutating m and reports the conflict Set would hit.
func (m Mapping) checkSet(p Path) error {
	cur := m
	for i, seg := range p {
		existing, ok := cur[seg]
		if !ok {
			return nil
		}
		if i == len(p)-1 {
			return errors.Wrapf(ErrPathAlreadySet, "%q", p.String())
		}
		switch node := existing.(type) {
		case Mapping:
			cur = node
		case Scalar:
			if node.IsNull() {
				return nil
			}
			return errors.Wrapf(ErrPathAlreadySet, "%q holds a value, cannot create %q",
				p[:i+1].String(), p.String())
		default:
			return errors.Wrapf(ErrPathAlreadySet, "%q", p[:i+1].String())
		}
	}
	return nil
}

// Remove deletes the value at path. Removing a path that does not exist,
// including one that would descend through a scalar, is a no-op. Parents
// left empty by the removal are kept.
func (m Mapping) Remove(path string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}

	cur := m
	for _, seg := range p[:len(p)-1] {
		child, ok := cur[seg].(Mapping)
		if !ok {
			return nil
		}
		cur = child
	}
	delete(cur, p[len(p)-1])
	return nil
}

// Move relocates the value at src to dst. When src is absent the tree is not
// touched and nothing is written at dst. When dst cannot be set the value is
// put back at src and the Set error is returned.
func (m Mapping) Move(src, dst string) error {
	v, ok, err := m.Get(src)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := m.Remove(src); err != nil {
		return err
	}
	if err := m.Set(dst, v); err != nil {
		// src's parents survive Remove, so restoring cannot conflict.
		_ = m.Set(src, v)
		return err
	}
	return nil
}
