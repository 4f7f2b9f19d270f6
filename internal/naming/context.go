package naming

import (
	"strconv"

	"github.com/mcncl/polytyper/internal/errors"
)

// maxSuffix bounds the counter search for one base name.
const maxSuffix = 1 << 20

// Context issues unique names within one request. The first request for a
// base name gets it bare, later ones get base2, base3, and so on.
type Context struct {
	issued   map[string]bool
	counters map[string]int
}

// NewContext returns a Context that will never issue any of reserved.
func NewContext(reserved ...string) *Context {
	c := &Context{issued: make(map[string]bool), counters: make(map[string]int)}
	for _, r := range reserved {
		c.issued[r] = true
	}
	return c
}

// Issue returns the next free name for base.
func (c *Context) Issue(base string) (string, error) {
	if !c.issued[base] {
		c.issued[base] = true
		return base, nil
	}
	n := c.counters[base]
	if n < 2 {
		n = 2
	}
	for ; n < maxSuffix; n++ {
		candidate := base + strconv.Itoa(n)
		if !c.issued[candidate] {
			c.issued[candidate] = true
			c.counters[base] = n + 1
			return candidate, nil
		}
	}
	return "", errors.NewNamingError("unable to issue a unique name",
		errors.Mark(errors.AssertionFailedf("suffix counter for %q exhausted", base), errors.ErrNamingCollision))
}

// Issued reports whether name has been handed out or reserved.
func (c *Context) Issued(name string) bool { return c.issued[name] }
