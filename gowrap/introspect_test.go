package gowrap

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/chazu/luabind/diag"
)

const (
	samplePkg  = "github.com/chazu/luabind/internal/fixture/sample"
	invalidPkg = "github.com/chazu/luabind/internal/fixture/invalid"
	dupPkg     = "github.com/chazu/luabind/internal/fixture/duplicate"
)

var (
	loadSample = sync.OnceValues(func() (*Universe, error) {
		return Load(context.Background(), LoadOptions{}, samplePkg)
	})
	loadInvalid = sync.OnceValues(func() (*Universe, error) {
		return Load(context.Background(), LoadOptions{}, invalidPkg)
	})
)

func mustSample(t *testing.T) *Universe {
	t.Helper()
	u, err := loadSample()
	if err != nil {
		t.Fatalf("Load(%s): %v", samplePkg, err)
	}
	return u
}

func mustInvalid(t *testing.T) *Universe {
	t.Helper()
	u, err := loadInvalid()
	if err != nil {
		t.Fatalf("Load(%s): %v", invalidPkg, err)
	}
	return u
}

func rootNamed(t *testing.T, u *Universe, name string) *Root {
	t.Helper()
	for _, r := range u.Roots {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("root %s not found", name)
	return nil
}

func TestLoad_Roots(t *testing.T) {
	u := mustSample(t)

	var names []string
	for _, r := range u.Roots {
		names = append(names, r.Name)
	}
	got := strings.Join(names, ",")
	want := "Entity,Person,Address,Vec,Thermostat,Token"
	if got != want {
		t.Errorf("roots = %q, want %q", got, want)
	}
	if len(u.Problems) != 0 {
		t.Errorf("unexpected problems: %v", u.Problems)
	}
}

func TestLoad_RootDetails(t *testing.T) {
	u := mustSample(t)

	person := rootNamed(t, u, "Person")
	if person.Doc != "Person is a scene character." {
		t.Errorf("Person doc = %q", person.Doc)
	}
	if person.AccessPkgPath != samplePkg+"/access" || person.AccessPkgName != "access" {
		t.Errorf("access package = %q (%q)", person.AccessPkgPath, person.AccessPkgName)
	}
	if person.Parent == nil || person.Parent.Name != "Entity" || person.ParentField != "Entity" {
		t.Errorf("Person parent = %v via %q", person.Parent, person.ParentField)
	}
	if !rootNamed(t, u, "Entity").Open {
		t.Error("Entity should be open: Person embeds it")
	}
	if person.Open {
		t.Error("Person should not be open")
	}

	if got := rootNamed(t, u, "Address").Policy; got != OptIn {
		t.Errorf("Address policy = %v, want opt-in", got)
	}

	vec := rootNamed(t, u, "Vec")
	if !vec.External {
		t.Error("Vec should be external")
	}
	if got := strings.Join(vec.Whitelist, " "); got != "X Y Len missing" {
		t.Errorf("Vec whitelist = %q", got)
	}
	if vec.Target.Obj().Pkg().Path() != samplePkg+"/geom" {
		t.Errorf("Vec target = %v", vec.Target)
	}
	if vec.Parent != nil {
		t.Error("external roots never have a parent")
	}

	if !rootNamed(t, u, "Token").SelfConverting {
		t.Error("Token implements ToLua and should be self-converting")
	}
	if person.SelfConverting {
		t.Error("Person is not self-converting")
	}
}

func TestLoad_Lookups(t *testing.T) {
	u := mustSample(t)
	person := rootNamed(t, u, "Person")

	if got := u.RootFor(person.Target); got != person {
		t.Errorf("RootFor(Person) = %v", got)
	}
	vec := rootNamed(t, u, "Vec")
	if got := u.RootFor(vec.Target); got != vec {
		t.Errorf("RootFor(geom.Vec) = %v", got)
	}

	celsius := u.Package(samplePkg).Types.Scope().Lookup("Celsius")
	m := u.MapperFor(celsius.Type())
	if m == nil {
		t.Fatal("Celsius should have a declaration mapper")
	}
	if m.Kind != MapperClass || m.Name != "CelsiusMapper" || m.PkgPath != samplePkg {
		t.Errorf("Celsius mapper = %+v", m)
	}
	if u.MapperFor(person.Target) != nil {
		t.Error("Person has no mapper")
	}
}

func TestLoad_InvalidDeclarations(t *testing.T) {
	u := mustInvalid(t)

	if len(u.Problems) != 1 {
		t.Fatalf("problems = %v, want exactly the duplicate directive", u.Problems)
	}
	if !errors.Is(u.Problems[0], diag.ErrConfiguration) {
		t.Errorf("problem kind: %v", u.Problems[0])
	}
	if !strings.Contains(u.Problems[0].Error(), "duplicate //luabind:expose") {
		t.Errorf("problem = %v", u.Problems[0])
	}

	both := rootNamed(t, u, "Both")
	if len(both.Problems) != 1 || !strings.Contains(both.Problems[0].Error(), "embeds 2 exposed types") {
		t.Errorf("Both problems = %v", both.Problems)
	}
	if both.Parent != nil {
		t.Error("ambiguous embedding must not pick a parent")
	}
}

func TestLoad_DuplicateRoots(t *testing.T) {
	u, err := Load(context.Background(), LoadOptions{}, dupPkg)
	if err != nil {
		t.Fatalf("Load(%s): %v", dupPkg, err)
	}

	tests := []struct {
		first, second string
	}{
		{"First", "FirstAgain"},
		{"SecondAlias", "Second"},
	}
	for _, tt := range tests {
		t.Run(tt.second, func(t *testing.T) {
			first := rootNamed(t, u, tt.first)
			second := rootNamed(t, u, tt.second)
			if len(first.Problems) != 0 {
				t.Errorf("%s problems = %v", tt.first, first.Problems)
			}
			if len(second.Problems) != 1 || !strings.Contains(second.Problems[0].Error(), "already exposed as "+tt.first) {
				t.Fatalf("%s problems = %v", tt.second, second.Problems)
			}
			if !errors.Is(second.Problems[0], diag.ErrConfiguration) {
				t.Errorf("problem kind: %v", second.Problems[0])
			}
			if got := u.RootFor(first.Target); got != first {
				t.Errorf("RootFor(%s) = %v, want the first declaration", tt.first, got)
			}
		})
	}
}

func TestLoad_NoPackages(t *testing.T) {
	_, err := Load(context.Background(), LoadOptions{}, "github.com/chazu/luabind/does/not/exist")
	if err == nil {
		t.Fatal("expected an error for a missing package")
	}
}
