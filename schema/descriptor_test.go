package schema

import (
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/wippyai/serial/errors"
)

func profileDescriptor(t *testing.T) *Descriptor {
	t.Helper()
	desc, err := NewBuilder("Profile", KindStruct).
		AddElement("name", false).
		AddElement("age", true).
		AddElement("email", true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return desc
}

func TestDescriptor_ElementIndexBijection(t *testing.T) {
	desc := profileDescriptor(t)

	for i := 0; i < desc.NumElements(); i++ {
		name := desc.ElementName(i)
		if got := desc.ElementIndex(name); got != i {
			t.Errorf("ElementIndex(%q) = %d, want %d", name, got, i)
		}
	}

	if got := desc.ElementIndex("___not_registered___"); got != UnknownIndex {
		t.Errorf("ElementIndex(unknown) = %d, want %d", got, UnknownIndex)
	}
}

func TestDescriptor_ElementIndexConcurrent(t *testing.T) {
	desc := profileDescriptor(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < desc.NumElements(); i++ {
				if got := desc.ElementIndex(desc.ElementName(i)); got != i {
					t.Errorf("concurrent ElementIndex = %d, want %d", got, i)
				}
			}
		}()
	}
	wg.Wait()
}

func TestDescriptor_ProviderResolvedOnce(t *testing.T) {
	inner := NewBuilder("Inner", KindString).MustBuild()

	var calls int
	desc := NewBuilder("Outer", KindStruct).
		AddElement("field", false).
		SetElementProvider(func(index int) *Descriptor {
			calls++
			if index != 0 {
				t.Errorf("provider called with index %d, want 0", index)
			}
			return inner
		}).
		MustBuild()

	for i := 0; i < 3; i++ {
		got, err := desc.ElementDescriptor(0)
		if err != nil {
			t.Fatalf("ElementDescriptor failed: %v", err)
		}
		if got != inner {
			t.Errorf("ElementDescriptor = %v, want Inner", got)
		}
	}

	if calls != 1 {
		t.Errorf("provider invoked %d times, want 1", calls)
	}
}

func TestDescriptor_MissingDescriptor(t *testing.T) {
	desc := profileDescriptor(t)

	_, err := desc.ElementDescriptor(1)
	if err == nil {
		t.Fatal("expected missing descriptor error")
	}

	var serr *errors.Error
	if !stderrors.As(err, &serr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if serr.Kind != errors.KindMissingDescriptor {
		t.Errorf("Kind = %q, want missing_descriptor", serr.Kind)
	}
	if serr.Type != "Profile" {
		t.Errorf("Type = %q, want Profile", serr.Type)
	}
}

func TestDescriptor_OutOfRangePanics(t *testing.T) {
	desc := profileDescriptor(t)

	defer func() {
		if recover() == nil {
			t.Fatal("ElementName out of range should panic")
		}
	}()
	desc.ElementName(desc.NumElements())
}

func TestDescriptor_Cyclic(t *testing.T) {
	value := NewBuilder("Value", KindInt64).MustBuild()

	var node *Descriptor
	node = NewBuilder("Node", KindStruct).
		AddElement("value", false).
		AddElement("next", true).
		PushDescriptor(value).
		SetElementProvider(func(int) *Descriptor { return node }).
		MustBuild()

	next, err := node.ElementDescriptor(1)
	if err != nil {
		t.Fatalf("ElementDescriptor(next) failed: %v", err)
	}
	if next != node {
		t.Error("self-referential element should resolve to the node descriptor itself")
	}

	// Identity operations must terminate on the cyclic shape.
	if !node.Equal(node) {
		t.Error("cyclic descriptor should equal itself")
	}
	if node.Hash() != node.Hash() {
		t.Error("Hash should be stable")
	}
	if s := node.String(); !strings.Contains(s, "next?") {
		t.Errorf("String = %q, want optional marker on next", s)
	}
}

func TestDescriptor_EqualIgnoresAnnotations(t *testing.T) {
	inner := NewBuilder("City", KindString).MustBuild()

	a := NewBuilder("Address", KindStruct).
		AddElement("city", false).
		PushDescriptor(inner).
		MustBuild()

	b := NewBuilder("Address", KindStruct).
		AddElement("city", true).
		PushAnnotation(WireTag(9)).
		PushDescriptor(inner).
		PushTypeAnnotation("deprecated").
		MustBuild()

	if !a.Equal(b) {
		t.Error("annotations and optionality must not affect structural equality")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal descriptors must hash equal")
	}
}

func TestDescriptor_Unequal(t *testing.T) {
	str := NewBuilder("Str", KindString).MustBuild()
	num := NewBuilder("Num", KindInt64).MustBuild()

	base := NewBuilder("Pair", KindStruct).
		AddElement("a", false).
		PushDescriptor(str).
		MustBuild()

	tests := []struct {
		name  string
		other *Descriptor
	}{
		{
			name:  "different type name",
			other: NewBuilder("Other", KindStruct).AddElement("a", false).PushDescriptor(str).MustBuild(),
		},
		{
			name:  "different kind",
			other: NewBuilder("Pair", KindMap).AddElement("a", false).PushDescriptor(str).MustBuild(),
		},
		{
			name:  "different element count",
			other: NewBuilder("Pair", KindStruct).AddElement("a", false).AddElement("b", false).PushDescriptor(str).PushDescriptor(str).MustBuild(),
		},
		{
			name:  "different child descriptor",
			other: NewBuilder("Pair", KindStruct).AddElement("a", false).PushDescriptor(num).MustBuild(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if base.Equal(tt.other) {
				t.Error("descriptors should differ")
			}
		})
	}

	if base.Equal(nil) {
		t.Error("Equal(nil) should be false")
	}
}

func TestDescriptor_String(t *testing.T) {
	desc := profileDescriptor(t)
	s := desc.String()

	for _, want := range []string{"Profile", "struct", "name", "age?", "email?"} {
		if !strings.Contains(s, want) {
			t.Errorf("String = %q, want it to contain %q", s, want)
		}
	}

	prim := NewBuilder("Flag", KindBool).MustBuild()
	if got := prim.String(); got != "Flag(bool)" {
		t.Errorf("primitive String = %q, want Flag(bool)", got)
	}
}
