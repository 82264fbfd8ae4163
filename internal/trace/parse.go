package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tuannm99/pagesim/internal/page"
)

var ErrInvalidToken = errors.New("trace: invalid token")

// Parse reads a reference string: page numbers separated by whitespace or
// commas, a trailing w/W marks a write. Text after '#' on a line is ignored.
func Parse(s string) ([]page.Access, error) {
	return Read(strings.NewReader(s))
}

// Read is Parse over a stream.
func Read(r io.Reader) ([]page.Access, error) {
	var out []page.Access

	br := bufio.NewReader(r)
	line := 0
	for {
		text, rerr := br.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, fmt.Errorf("trace: read: %w", rerr)
		}
		if text == "" && rerr != nil {
			break
		}
		line++
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
		})
		for _, tok := range fields {
			a, err := parseToken(tok)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			out = append(out, a)
		}
		if rerr != nil {
			break
		}
	}

	return out, nil
}

func parseToken(tok string) (page.Access, error) {
	var a page.Access
	num := tok
	if n := len(tok); n > 1 && (tok[n-1] == 'w' || tok[n-1] == 'W') {
		a.Write = true
		num = tok[:n-1]
	}

	v, err := strconv.ParseUint(num, 10, 32)
	if err != nil {
		return a, fmt.Errorf("%w %q", ErrInvalidToken, tok)
	}
	a.Number = uint32(v)
	return a, nil
}

// Format renders accesses in the form Parse accepts.
func Format(accesses []page.Access) string {
	var b strings.Builder
	for i, a := range accesses {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.String())
	}
	return b.String()
}
