package schema

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/serial/errors"
)

func TestBuilder_Build(t *testing.T) {
	desc, err := NewBuilder("Profile", KindStruct).
		AddElement("name", false).
		AddElement("age", true).
		PushAnnotation(WireTag(7)).
		AddElement("address", true).
		PushTypeAnnotation("v2").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if desc.Name() != "Profile" {
		t.Errorf("Name = %q, want Profile", desc.Name())
	}
	if desc.Kind() != KindStruct {
		t.Errorf("Kind = %v, want struct", desc.Kind())
	}
	if desc.NumElements() != 3 {
		t.Fatalf("NumElements = %d, want 3", desc.NumElements())
	}
	if desc.ElementName(0) != "name" || desc.ElementName(1) != "age" || desc.ElementName(2) != "address" {
		t.Errorf("element names = %q %q %q", desc.ElementName(0), desc.ElementName(1), desc.ElementName(2))
	}
	if desc.IsElementOptional(0) {
		t.Error("name should not be optional")
	}
	if !desc.IsElementOptional(1) {
		t.Error("age should be optional")
	}
	if got := desc.ElementAnnotations(1); len(got) != 1 || got[0] != WireTag(7) {
		t.Errorf("age annotations = %v, want [WireTag(7)]", got)
	}
	if got := desc.ElementAnnotations(0); len(got) != 0 {
		t.Errorf("name annotations = %v, want none", got)
	}
	if got := desc.Annotations(); len(got) != 1 || got[0] != "v2" {
		t.Errorf("type annotations = %v, want [v2]", got)
	}
}

func TestBuilder_PushedDescriptorsInAdditionOrder(t *testing.T) {
	city := NewBuilder("City", KindString).MustBuild()
	zip := NewBuilder("Zip", KindString).MustBuild()

	desc := NewBuilder("Address", KindStruct).
		AddElement("city", false).
		AddElement("zip", false).
		AddElement("country", true).
		PushDescriptor(city).
		PushDescriptor(zip).
		MustBuild()

	got0, err := desc.ElementDescriptor(0)
	if err != nil {
		t.Fatalf("ElementDescriptor(0) failed: %v", err)
	}
	if got0 != city {
		t.Errorf("element 0 descriptor = %v, want City", got0)
	}
	got1, err := desc.ElementDescriptor(1)
	if err != nil {
		t.Fatalf("ElementDescriptor(1) failed: %v", err)
	}
	if got1 != zip {
		t.Errorf("element 1 descriptor = %v, want Zip", got1)
	}

	// Element 2 has neither a pushed descriptor nor a provider.
	if _, err := desc.ElementDescriptor(2); err == nil {
		t.Fatal("expected missing descriptor error for element 2")
	}
}

func TestBuilder_AnnotationWithoutElement(t *testing.T) {
	_, err := NewBuilder("Broken", KindStruct).
		PushAnnotation(WireTag(1)).
		Build()
	if err == nil {
		t.Fatal("expected error for annotation without element")
	}

	var serr *errors.Error
	if !stderrors.As(err, &serr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if serr.Phase != errors.PhaseBuild {
		t.Errorf("Phase = %q, want build", serr.Phase)
	}
	if serr.Kind != errors.KindNoElement {
		t.Errorf("Kind = %q, want no_element", serr.Kind)
	}
}

func TestBuilder_DuplicateElement(t *testing.T) {
	_, err := NewBuilder("Dup", KindStruct).
		AddElement("x", false).
		AddElement("x", true).
		Build()
	if err == nil {
		t.Fatal("expected error for duplicate element name")
	}

	var serr *errors.Error
	if !stderrors.As(err, &serr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if serr.Kind != errors.KindDuplicateElement {
		t.Errorf("Kind = %q, want duplicate_element", serr.Kind)
	}
	if serr.Type != "Dup" {
		t.Errorf("Type = %q, want Dup", serr.Type)
	}
}

func TestBuilder_DescriptorOverflow(t *testing.T) {
	inner := NewBuilder("Inner", KindString).MustBuild()

	_, err := NewBuilder("Over", KindStruct).
		AddElement("a", false).
		PushDescriptor(inner).
		PushDescriptor(inner).
		Build()
	if err == nil {
		t.Fatal("expected error for more pushed descriptors than elements")
	}

	var serr *errors.Error
	if !stderrors.As(err, &serr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if serr.Phase != errors.PhaseBuild {
		t.Errorf("Phase = %q, want build", serr.Phase)
	}
}

func TestBuilder_StickyError(t *testing.T) {
	_, err := NewBuilder("Sticky", KindStruct).
		PushAnnotation("too early").
		AddElement("fine", false).
		PushAnnotation("also fine").
		Build()
	if err == nil {
		t.Fatal("expected the first misuse to survive later valid calls")
	}

	var serr *errors.Error
	if !stderrors.As(err, &serr) {
		t.Fatalf("expected structured error, got %T", err)
	}
	if serr.Kind != errors.KindNoElement {
		t.Errorf("Kind = %q, want the first recorded error", serr.Kind)
	}
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustBuild should panic on a build error")
		}
	}()
	NewBuilder("Bad", KindStruct).PushAnnotation("x").MustBuild()
}
