package typing

import (
	"context"
	"go/types"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/luabind/classify"
	"github.com/chazu/luabind/diag"
	"github.com/chazu/luabind/gowrap"
)

const samplePkg = "github.com/chazu/luabind/internal/fixture/sample"

var loadSample = sync.OnceValues(func() (*gowrap.Universe, error) {
	return gowrap.Load(context.Background(), gowrap.LoadOptions{}, samplePkg)
})

func model(t *testing.T, name string) *Model {
	t.Helper()
	u, err := loadSample()
	if err != nil {
		t.Fatalf("loading fixtures: %v", err)
	}
	for _, r := range u.Roots {
		if r.Name != name {
			continue
		}
		members, err := gowrap.NewCollector(u, r, diag.NewReporter("luabind.test")).Collect()
		if err != nil {
			t.Fatalf("Collect(%s): %v", name, err)
		}
		m, err := Build(classify.New(u), r, members)
		if err != nil {
			t.Fatalf("Build(%s): %v", name, err)
		}
		return m
	}
	t.Fatalf("root %s not found", name)
	return nil
}

func assertLines(t *testing.T, out string, want []string) {
	t.Helper()
	lines := make(map[string]bool)
	for _, l := range strings.Split(out, "\n") {
		lines[l] = true
	}
	for _, w := range want {
		if !lines[w] {
			t.Errorf("missing line %q in:\n%s", w, out)
		}
	}
}

func TestLua_Person(t *testing.T) {
	out, err := Lua(model(t, "Person"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "--- Generated with luabind\n--- Person is a scene character.\n--- @class Person: Entity\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	assertLines(t, out, []string{
		"--- Name is shown above the head.",
		"--- @field name string",
		"--- @field nickname string?",
		"--- @field age integer",
		"--- @field score number",
		"--- @field alive boolean",
		"--- @field tags string[]",
		"--- @field home Address?",
		"--- @field work Address",
		"--- @field position Vec?",
		"--- @field data table?",
		"--- @field extra any",
		"--- @field apiToken string",
		"--- @field greeter fun(self: Person?, greeting: string): string",
		"--- @field adder fun(a: integer, b: integer, c: integer, d: integer): integer",
		"--- @field notify fun(msg: string)",
		"--- @field peers (Person?)[]",
		"--- @field born Time",
		"--- @field level integer",
		"--- Getter: GetMood returns the current mood.",
		"--- Setter: SetMood changes the mood.",
		"--- @field greet fun(self: Person, greeting: string): string",
		"--- @field split fun(self: Person): string, string",
		"--- @field walk fun(self: Person, dx: number, dy: number, run: boolean, label: string?, callback: fun(arg0: integer): integer)",
		"--- " + noDoc,
	})
	if strings.Contains(out, "\n\n") {
		t.Error("blank lines in Lua typing")
	}
}

func TestLua_Mutability(t *testing.T) {
	out, err := Lua(model(t, "Person"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(out, "\n")
	mutability := make(map[string]string)
	for i, l := range lines {
		if name, ok := strings.CutPrefix(l, "--- @field "); ok && i > 0 {
			name, _, _ = strings.Cut(name, " ")
			mutability[name] = strings.TrimPrefix(lines[i-1], "--- ")
		}
	}
	tests := map[string]string{
		"name":     "mutable",
		"tags":     "immutable",
		"peers":    "immutable",
		"apiToken": "mutable",
		"level":    "immutable",
		"mood":     "mutable",
		"greet":    "immutable",
	}
	for name, want := range tests {
		if got := mutability[name]; got != want {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}
}

func TestTypeScript_Person(t *testing.T) {
	out, err := TypeScript(model(t, "Person"))
	if err != nil {
		t.Fatal(err)
	}
	wantHead := `// Generated with luabind
/**
 * Person is a scene character.
 */
import {Address} from "./Address";
import {Entity} from "./Entity";
import {Time} from "./time";
import {Vec} from "./Vec";

/** @noSelf **/
export interface Person extends Entity {
`
	if !strings.HasPrefix(out, wantHead) {
		t.Errorf("got header:\n%s\nwant:\n%s", out, wantHead)
	}
	assertLines(t, out, []string{
		"     * Name is shown above the head.",
		"    name: string;",
		"    nickname: string | undefined;",
		"    age: number;",
		"    score: number;",
		"    readonly tags: string[];",
		"    work: Address;",
		"    data: Record<string, any> | undefined;",
		"    extra: any;",
		"    greeter: (this: Person | undefined, greeting: string) => string;",
		"    adder: (a: number, b: number, c: number, d: number) => number;",
		"    notify: (msg: string) => void;",
		"    readonly peers: (Person | undefined)[];",
		"    born: Time;",
		"    readonly level: number;",
		"    greet(greeting: string): string;",
		"    split(): LuaMultiReturn<[string, string]>;",
		"    walk(dx: number, dy: number, run: boolean, label: string | undefined, callback: (arg0: number) => number): void;",
		"}",
		"export type PersonType = Person;",
	})
}

func TestTypeScript_NoImports(t *testing.T) {
	out, err := TypeScript(model(t, "Entity"))
	if err != nil {
		t.Fatal(err)
	}
	want := `// Generated with luabind
/**
 * Entity is the base of everything in a scene.
 */

/** @noSelf **/
export interface Entity {
    /**
     * ID is unique per scene.
     */
    readonly id: number;
}
export type EntityType = Entity;
`
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

// Only the packages named on the command line are parsed, so members of
// the aliased geom.Vec carry no docs.
func TestLua_External(t *testing.T) {
	out, err := Lua(model(t, "Vec"))
	if err != nil {
		t.Fatal(err)
	}
	want := `--- Generated with luabind
--- Vec is a 2D vector.
--- @class Vec
--- No documentation provided
--- mutable
--- @field x number
--- No documentation provided
--- mutable
--- @field y number
--- No documentation provided
--- immutable
--- @field len fun(self: Vec): number
`
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestNamers_Natives(t *testing.T) {
	tests := []struct {
		kind classify.NativeKind
		lua  string
		ts   string
	}{
		{classify.RawValue, "any", "any"},
		{classify.Table, "table", "Record<string, any>"},
		{classify.LuaFunction, "function", "(...args: any[]) => any"},
	}
	for _, tt := range tests {
		n := classify.Native{Kind: tt.kind}
		if got := classify.Visit[string](n, luaNamer{}); got != tt.lua {
			t.Errorf("lua: got %q, want %q", got, tt.lua)
		}
		if got := classify.Visit[string](n, tsNamer{}); got != tt.ts {
			t.Errorf("ts: got %q, want %q", got, tt.ts)
		}
	}
}

func TestNamers_Grouping(t *testing.T) {
	fn := classify.Function{
		Params:  []classify.Param{{Name: "x", C: classify.Primitive{Kind: classify.Int64}}},
		Results: []classify.Classification{classify.Primitive{Kind: classify.Bool}},
	}
	list := classify.Iterable{Elem: fn}
	opt := classify.Nullable{Inner: fn}

	if got := classify.Visit[string](list, luaNamer{}); got != "(fun(x: integer): boolean)[]" {
		t.Errorf("lua list: %q", got)
	}
	if got := classify.Visit[string](opt, luaNamer{}); got != "(fun(x: integer): boolean)?" {
		t.Errorf("lua nullable: %q", got)
	}
	if got := classify.Visit[string](list, tsNamer{}); got != "((x: number) => boolean)[]" {
		t.Errorf("ts list: %q", got)
	}
	if got := classify.Visit[string](opt, tsNamer{}); got != "((x: number) => boolean) | undefined" {
		t.Errorf("ts nullable: %q", got)
	}

	table := classify.Nullable{Inner: classify.Native{Kind: classify.Table}}
	if got := classify.Visit[string](table, tsNamer{}); got != "Record<string, any> | undefined" {
		t.Errorf("ts nullable table: %q", got)
	}
	optList := classify.Iterable{Elem: classify.Nullable{Inner: classify.Primitive{Kind: classify.String}}}
	if got := classify.Visit[string](optList, tsNamer{}); got != "(string | undefined)[]" {
		t.Errorf("ts list of nullable: %q", got)
	}
	multi := classify.Iterable{Elem: classify.Function{
		Results: []classify.Classification{classify.Primitive{Kind: classify.String}, classify.Primitive{Kind: classify.Bool}},
	}}
	if got := classify.Visit[string](multi, tsNamer{}); got != "(() => LuaMultiReturn<[string, boolean]>)[]" {
		t.Errorf("ts list of multi-return: %q", got)
	}
}

func TestMappedName(t *testing.T) {
	pkg := types.NewPackage("example.com/units", "units")
	named := types.NewNamed(types.NewTypeName(0, pkg, "Celsius", nil), types.Typ[types.Float64], nil)
	if got := mappedName(named); got != "Celsius" {
		t.Errorf("got %q", got)
	}
	if got := mappedName(types.NewSlice(types.Typ[types.Int])); got != "[]int" {
		t.Errorf("got %q", got)
	}
}
