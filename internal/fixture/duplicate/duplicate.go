// Package duplicate exposes types under two declarations each.
package duplicate

//luabind:expose
type First struct {
	Name string
}

//luabind:external
type FirstAgain = First

//luabind:external
type SecondAlias = Second

//luabind:expose
type Second struct {
	Name string
}
