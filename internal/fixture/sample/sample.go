// Package sample is a scene model annotated for luabind.
package sample

import (
	"errors"
	"iter"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/chazu/luabind/internal/fixture/sample/geom"
	"github.com/chazu/luabind/lib/luart"
)

// Entity is the base of everything in a scene.
//
//luabind:expose
type Entity struct {
	// ID is unique per scene.
	ID int `lua:"id,readonly"`
}

// Person is a scene character.
//
//luabind:expose
type Person struct {
	Entity

	// Name is shown above the head.
	Name     string
	Nickname *string
	Age      int32
	Score    float64
	Alive    bool
	Tags     []string
	Home     *Address
	Work     Address
	Position *Vec
	Data     *lua.LTable
	Extra    lua.LValue
	Secret   string `lua:"-"`
	Token    string `lua:"apiToken,writeonly"`
	Greeter  func(self *Person, greeting string) string
	Adder    func(a, b, c, d int) int
	Notify   func(msg string) error
	Peers    iter.Seq[*Person]

	//luabind:mapper TimeMapper import=./time
	Born time.Time

	//luabind:exclude
	Internal int
	hidden   int
}

// GetMood returns the current mood.
func (p *Person) GetMood() string { return p.mood() }

// SetMood changes the mood.
func (p *Person) SetMood(m string) { p.Tags = append(p.Tags, "mood:"+m) }

func (p *Person) GetLevel() (int, error) {
	if p.Age < 0 {
		return 0, errors.New("negative age")
	}
	return int(p.Age) / 10, nil
}

// Greet says hello.
func (p *Person) Greet(greeting string) string { return greeting + ", " + p.Name }

func (p *Person) Split() (string, string, error) { return p.Name, p.Name, nil }

func (p *Person) Walk(dx, dy float64, run bool, label *string, callback func(int) int) {}

func (p *Person) mood() string { return "calm" }

// Address is only partially visible to scripts.
//
//luabind:expose opt-in
type Address struct {
	//luabind:expose
	City   string
	Street string
}

// Vec is a 2D vector.
//
//luabind:external X Y Len missing
type Vec = geom.Vec

// Celsius is converted by a mapper type.
//
//luabind:mapper CelsiusMapper
type Celsius struct {
	Degrees float64
}

type timeMapper struct{}

// TimeMapper converts timestamps to RFC 3339 strings.
var TimeMapper timeMapper

func (timeMapper) ToLua(L *lua.LState, v time.Time) lua.LValue {
	return lua.LString(v.Format(time.RFC3339))
}

func (timeMapper) FromLua(L *lua.LState, v lua.LValue) time.Time {
	t, _ := time.Parse(time.RFC3339, luart.CheckString(L, v))
	return t
}

type CelsiusMapper struct{}

func (*CelsiusMapper) ToLua(L *lua.LState, v Celsius) lua.LValue {
	return lua.LNumber(v.Degrees)
}

func (*CelsiusMapper) FromLua(L *lua.LState, v lua.LValue) Celsius {
	return Celsius{Degrees: luart.CheckFloat64(L, v)}
}

// Thermostat reads temperatures.
//
//luabind:expose
type Thermostat struct {
	Current Celsius
	Target  *Celsius
}

// Token builds its own Lua value.
//
//luabind:expose
type Token struct {
	Value string
}

func (t *Token) ToLua(L *lua.LState) lua.LValue {
	return lua.LString(t.Value)
}
