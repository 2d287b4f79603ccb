// Package invalid holds declarations luabind must reject.
package invalid

import (
	"iter"
	"strings"
)

//luabind:expose
type Mismatch struct{}

func (m *Mismatch) GetSize() int     { return 0 }
func (m *Mismatch) SetSize(v string) {}

//luabind:expose
//luabind:expose
type Twice struct{}

//luabind:expose
type Clash struct {
	Size int
}

func (c *Clash) GetSize() int { return c.Size }

//luabind:expose
type Lookup struct {
	Index map[string]int
}

//luabind:expose
type Pairs struct {
	All iter.Seq2[int, string]
}

//luabind:external
type Builder = strings.Builder

//luabind:expose
type Left struct{}

//luabind:expose
type Right struct{}

//luabind:expose
type Both struct {
	Left
	Right
}

//luabind:expose
type Fine struct {
	Name string
}
