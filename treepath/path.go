package treepath

import (
	"strconv"
	"strings"
)

// Path identifies an element in a hierarchy using a subset of XPath
// syntax: slash-delimited element names with a one-based index suffix
// disambiguating repeated siblings ("/a/b[2]"). Relative paths use ".."
// to refer to the enclosing element ("../..", "../sibling").
//
// An index of [1] is implicit: "/a/b" and "/a/b[1]" are the same path
// and parse to the same value.
type Path struct {
	absolute bool
	chunks   []string
}

// Parse parses a path string. A leading slash makes the path absolute.
func Parse(s string) *Path {
	p := &Path{}
	if strings.HasPrefix(s, "/") {
		p.absolute = true
		s = s[1:]
	}
	if s == "" || s == "." {
		return p
	}
	for _, chunk := range strings.Split(s, "/") {
		p.chunks = append(p.chunks, normalize(chunk))
	}
	return p
}

// normalize strips the implicit "[1]" index suffix.
func normalize(chunk string) string {
	return strings.TrimSuffix(chunk, "[1]")
}

// IsAbsolute reports whether the path starts at the document root.
func (p *Path) IsAbsolute() bool {
	return p.absolute
}

// Depth returns the number of path elements.
func (p *Path) Depth() int {
	return len(p.chunks)
}

func (p *Path) String() string {
	if len(p.chunks) == 0 {
		if p.absolute {
			return "/"
		}
		return "."
	}
	joined := strings.Join(p.chunks, "/")
	if p.absolute {
		return "/" + joined
	}
	return joined
}

// Equal reports whether two paths identify the same element.
func (p *Path) Equal(other *Path) bool {
	if p.absolute != other.absolute || len(p.chunks) != len(other.chunks) {
		return false
	}
	for i, c := range p.chunks {
		if c != other.chunks[i] {
			return false
		}
	}
	return true
}

// SamePosition reports whether two paths identify the same sibling
// position: equal up to the final element, whose one-based index must
// match while its name may differ. Members of a sequence are named
// after their dynamic type on the write side but after their document
// type on the read side, so a marker into a sequence matches by
// position, not by name.
func (p *Path) SamePosition(other *Path) bool {
	if p.absolute != other.absolute || len(p.chunks) != len(other.chunks) || len(p.chunks) == 0 {
		return false
	}
	last := len(p.chunks) - 1
	for i := 0; i < last; i++ {
		if p.chunks[i] != other.chunks[i] {
			return false
		}
	}
	return chunkIndex(p.chunks[last]) == chunkIndex(other.chunks[last])
}

// chunkIndex extracts the sibling index of one path element; a chunk
// without an index suffix is the first of its name.
func chunkIndex(chunk string) int {
	open := strings.IndexByte(chunk, '[')
	if open < 0 || !strings.HasSuffix(chunk, "]") {
		return 1
	}
	n, err := strconv.Atoi(chunk[open+1 : len(chunk)-1])
	if err != nil {
		return 1
	}
	return n
}

// RelativeTo expresses target relative to p: the returned path, applied
// at p, leads to target. Both paths must be absolute. The result is the
// marker form written into serialized documents ("..", "../sibling").
func (p *Path) RelativeTo(target *Path) *Path {
	common := 0
	for common < len(p.chunks) && common < len(target.chunks) &&
		p.chunks[common] == target.chunks[common] {
		common++
	}
	rel := &Path{}
	for i := common; i < len(p.chunks); i++ {
		rel.chunks = append(rel.chunks, "..")
	}
	rel.chunks = append(rel.chunks, target.chunks[common:]...)
	return rel
}

// Apply resolves a relative path against p, yielding an absolute path.
// A ".." that would climb above the root is ignored rather than failing;
// an unresolvable marker surfaces later as a failed reference lookup.
func (p *Path) Apply(rel *Path) *Path {
	res := &Path{absolute: p.absolute}
	res.chunks = append(res.chunks, p.chunks...)
	for _, chunk := range rel.chunks {
		if chunk == ".." {
			if n := len(res.chunks); n > 0 {
				res.chunks = res.chunks[:n-1]
			}
			continue
		}
		res.chunks = append(res.chunks, chunk)
	}
	return res
}
