package gowrap

import (
	"go/types"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/chazu/luabind/diag"
)

func TestMerge(t *testing.T) {
	root := &Root{Name: "Person"}
	intT := types.Typ[types.Int]
	strT := types.Typ[types.String]
	getter := &Property{Name: "age", GoName: "Age", Type: intT, Root: root, HasGetter: true, GetterDoc: "reads"}
	setter := &Property{Name: "age", GoName: "Age", Type: intT, Root: root, HasSetter: true, SetterDoc: "writes"}

	tests := []struct {
		name     string
		existing Member
		incoming Member
		wantErr  bool
	}{
		{"getter then setter", getter, setter, false},
		{"setter then getter", setter, getter, false},
		{"two getters", getter, getter, true},
		{"type mismatch", getter, &Property{Name: "age", Type: strT, Root: root, HasSetter: true}, true},
		{"field clash", &Property{Name: "age", Type: intT, Root: root, Field: true, HasGetter: true, HasSetter: true}, setter, true},
		{"function clash", &Function{Name: "age", Root: root}, getter, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.existing, tt.incoming)
			if tt.wantErr {
				if !errors.Is(err, diag.ErrConfiguration) {
					t.Errorf("Merge error = %v, want a configuration error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			p := got.(*Property)
			if !p.HasGetter || !p.HasSetter {
				t.Errorf("merged get:%v set:%v", p.HasGetter, p.HasSetter)
			}
			if p.DocString() != "Getter: reads\nSetter: writes" {
				t.Errorf("merged doc = %q", p.DocString())
			}
		})
	}

	if getter.HasSetter || setter.HasGetter {
		t.Error("Merge modified its arguments")
	}
}

func TestMemberMapOrder(t *testing.T) {
	root := &Root{Name: "T"}
	mm := NewMemberMap()
	for _, name := range []string{"b", "a", "c"} {
		if err := mm.Add(&Function{Name: name, Root: root}); err != nil {
			t.Fatal(err)
		}
	}
	names := mm.Names()
	if len(names) != 3 || names[0] != "b" || names[1] != "a" || names[2] != "c" {
		t.Errorf("Names() = %v, want registration order", names)
	}
	if err := mm.Add(&Function{Name: "a", Root: root}); err == nil {
		t.Error("duplicate function should fail")
	}
	if mm.Len() != 3 {
		t.Errorf("Len() = %d after failed add", mm.Len())
	}
}
