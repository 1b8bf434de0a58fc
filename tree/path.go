package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one hop of a Path: an object key or an array index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a node relative to a root, e.g. "condition[0].code".
type Path []Step

// ParsePath parses dotted keys with optional [n] array indexes.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	var p Path
	for _, part := range strings.Split(s, ".") {
		key := part
		var indexes []int
		if open := strings.IndexByte(part, '['); open >= 0 {
			key = part[:open]
			rest := part[open:]
			for rest != "" {
				if rest[0] != '[' {
					return nil, fmt.Errorf("path %q: unexpected %q", s, rest)
				}
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					return nil, fmt.Errorf("path %q: unterminated index", s)
				}
				i, err := strconv.Atoi(rest[1:end])
				if err != nil || i < 0 {
					return nil, fmt.Errorf("path %q: bad index %q", s, rest[1:end])
				}
				indexes = append(indexes, i)
				rest = rest[end+1:]
			}
		}
		if key == "" {
			return nil, fmt.Errorf("path %q: empty key", s)
		}
		p = append(p, Step{Key: key})
		for _, i := range indexes {
			p = append(p, Step{Index: i, IsIndex: true})
		}
	}
	return p, nil
}

// MustParsePath is ParsePath for literals; it panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String formats the path back to its dotted form.
func (p Path) String() string {
	var b strings.Builder
	for i, st := range p {
		if st.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(st.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(st.Key)
	}
	return b.String()
}

// Equal reports whether p and q address the same node.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Child returns p extended by one key step. p is not modified.
func (p Path) Child(key string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Step{Key: key})
}

// Item returns p extended by one index step. p is not modified.
func (p Path) Item(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Step{Index: i, IsIndex: true})
}

// Lookup follows p from n.
func (n *Node) Lookup(p Path) (*Node, bool) {
	cur := n
	for _, st := range p {
		var ok bool
		if st.IsIndex {
			cur, ok = cur.Index(st.Index)
		} else {
			cur, ok = cur.Get(st.Key)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
