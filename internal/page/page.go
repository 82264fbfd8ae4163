package page

import (
	"fmt"
	"strconv"
)

// Page is one logical page resident in a frame.
// Identity is Number only; Referenced and Modified are metadata.
type Page struct {
	Number     uint32
	Referenced bool
	Modified   bool
}

// New returns a freshly loaded page with cleared flags.
func New(number uint32) Page {
	return Page{Number: number}
}

// Same reports whether p and o are the same logical page.
func (p Page) Same(o Page) bool { return p.Number == o.Number }

// Class is the NRU priority class: 0=(R0,M0) 1=(R0,M1) 2=(R1,M0) 3=(R1,M1).
func (p Page) Class() int {
	c := 0
	if p.Referenced {
		c += 2
	}
	if p.Modified {
		c++
	}
	return c
}

func (p Page) String() string {
	s := strconv.FormatUint(uint64(p.Number), 10)
	switch {
	case p.Referenced && p.Modified:
		return s + "(rm)"
	case p.Referenced:
		return s + "(r)"
	case p.Modified:
		return s + "(m)"
	}
	return s
}

// Access is one element of a reference string.
type Access struct {
	Number uint32
	Write  bool
}

// Reads converts plain page numbers into read accesses.
func Reads(numbers []uint32) []Access {
	out := make([]Access, len(numbers))
	for i, n := range numbers {
		out[i] = Access{Number: n}
	}
	return out
}

// Numbers drops the write flag.
func Numbers(accesses []Access) []uint32 {
	out := make([]uint32, len(accesses))
	for i, a := range accesses {
		out[i] = a.Number
	}
	return out
}

func (a Access) String() string {
	if a.Write {
		return fmt.Sprintf("%dw", a.Number)
	}
	return strconv.FormatUint(uint64(a.Number), 10)
}
