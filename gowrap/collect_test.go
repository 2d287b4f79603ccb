package gowrap

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/chazu/luabind/diag"
)

func collect(t *testing.T, u *Universe, name string) (*MemberMap, *diag.Reporter) {
	t.Helper()
	rep := diag.NewReporter("luabind.test")
	mm, err := NewCollector(u, rootNamed(t, u, name), rep).Collect()
	if err != nil {
		t.Fatalf("Collect(%s): %v", name, err)
	}
	return mm, rep
}

func property(t *testing.T, mm *MemberMap, name string) *Property {
	t.Helper()
	m, ok := mm.Get(name)
	if !ok {
		t.Fatalf("member %s missing; have %v", name, mm.Names())
	}
	p, ok := m.(*Property)
	if !ok {
		t.Fatalf("member %s is %T, want *Property", name, m)
	}
	return p
}

func TestCollect_PersonMembers(t *testing.T) {
	u := mustSample(t)
	mm, _ := collect(t, u, "Person")

	got := strings.Join(mm.Names(), ",")
	want := "name,nickname,age,score,alive,tags,home,work,position,data,extra,apiToken," +
		"greeter,adder,notify,peers,born,level,mood,greet,split,walk"
	if got != want {
		t.Errorf("members =\n%s\nwant\n%s", got, want)
	}
}

func TestCollect_Properties(t *testing.T) {
	u := mustSample(t)
	mm, _ := collect(t, u, "Person")

	tests := []struct {
		name      string
		field     bool
		hasGetter bool
		hasSetter bool
		getterErr bool
	}{
		{"name", true, true, true, false},
		{"apiToken", true, false, true, false},
		{"mood", false, true, true, false},
		{"level", false, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := property(t, mm, tt.name)
			if p.Field != tt.field || p.HasGetter != tt.hasGetter || p.HasSetter != tt.hasSetter || p.GetterErr != tt.getterErr {
				t.Errorf("%s = field:%v get:%v set:%v getErr:%v", tt.name, p.Field, p.HasGetter, p.HasSetter, p.GetterErr)
			}
		})
	}

	if doc := property(t, mm, "name").DocString(); doc != "Name is shown above the head." {
		t.Errorf("name doc = %q", doc)
	}
	wantMood := "Getter: GetMood returns the current mood.\nSetter: SetMood changes the mood."
	if doc := property(t, mm, "mood").DocString(); doc != wantMood {
		t.Errorf("mood doc = %q, want %q", doc, wantMood)
	}
	born := property(t, mm, "born")
	if born.Mapper == nil || born.Mapper.Kind != MapperObject || born.Mapper.Import != "./time" {
		t.Errorf("born mapper = %+v", born.Mapper)
	}
}

func TestCollect_Exclusions(t *testing.T) {
	u := mustSample(t)
	mm, _ := collect(t, u, "Person")

	for _, name := range []string{"secret", "internal", "hidden", "id", "entity", "toLua"} {
		if _, ok := mm.Get(name); ok {
			t.Errorf("%s should not be collected", name)
		}
	}
	if m, ok := mm.Get("greet"); !ok {
		t.Error("greet missing")
	} else if _, isFn := m.(*Function); !isFn {
		t.Errorf("greet is %T, want *Function", m)
	}
}

func TestCollect_OptIn(t *testing.T) {
	u := mustSample(t)
	mm, _ := collect(t, u, "Address")

	if got := strings.Join(mm.Names(), ","); got != "city" {
		t.Errorf("Address members = %q, want city", got)
	}
}

func TestCollect_ReadonlyTag(t *testing.T) {
	u := mustSample(t)
	mm, _ := collect(t, u, "Entity")

	id := property(t, mm, "id")
	if !id.HasGetter || id.HasSetter {
		t.Errorf("id get:%v set:%v, want read-only", id.HasGetter, id.HasSetter)
	}
}

func TestCollect_ExternalWhitelist(t *testing.T) {
	u := mustSample(t)
	mm, rep := collect(t, u, "Vec")

	if got := strings.Join(mm.Names(), ","); got != "x,y,len" {
		t.Errorf("Vec members = %q, want x,y,len", got)
	}
	warnings := rep.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "missing is whitelisted") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestCollect_Idempotent(t *testing.T) {
	u := mustSample(t)
	c := NewCollector(u, rootNamed(t, u, "Person"), diag.NewReporter("luabind.test"))
	first, err := c.Collect()
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second Collect should return the first result")
	}

	fresh, _ := collect(t, u, "Person")
	if strings.Join(fresh.Names(), ",") != strings.Join(first.Names(), ",") {
		t.Error("collection is not deterministic")
	}
}

func TestCollect_Errors(t *testing.T) {
	u := mustInvalid(t)

	tests := []struct {
		root string
		kind error
		msg  string
	}{
		{"Mismatch", diag.ErrConfiguration, "disagree on type"},
		{"Clash", diag.ErrConfiguration, "clashes with a field"},
		{"Both", diag.ErrConfiguration, "embeds 2 exposed types"},
	}
	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			_, err := NewCollector(u, rootNamed(t, u, tt.root), diag.NewReporter("luabind.test")).Collect()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("error kind: %v", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestCollect_EmptyWhitelistWarns(t *testing.T) {
	u := mustInvalid(t)
	mm, rep := collect(t, u, "Builder")

	if mm.Len() != 0 {
		t.Errorf("Builder members = %v, want none", mm.Names())
	}
	if len(rep.Warnings()) != 1 {
		t.Errorf("warnings = %v", rep.Warnings())
	}
}
