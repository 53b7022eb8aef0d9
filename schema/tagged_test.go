package schema

import "testing"

func TestTagged_DefaultMapping(t *testing.T) {
	desc := NewBuilder("Order", KindStruct).
		AddElement("id", false).
		AddElement("total", false).
		AddElement("note", true).
		MustBuild()

	tagged := NewTagged(desc)

	for i := 0; i < desc.NumElements(); i++ {
		if got := tagged.TagByIndex(i); got != int32(i+1) {
			t.Errorf("TagByIndex(%d) = %d, want %d", i, got, i+1)
		}
	}
}

func TestTagged_ExplicitTags(t *testing.T) {
	desc := NewBuilder("Order", KindStruct).
		AddElement("id", false).
		AddElement("total", false).
		PushAnnotation(WireTag(12)).
		AddElement("note", true).
		MustBuild()

	tagged := NewTagged(desc)

	if got := tagged.TagByIndex(0); got != 1 {
		t.Errorf("TagByIndex(0) = %d, want default 1", got)
	}
	if got := tagged.TagByIndex(1); got != 12 {
		t.Errorf("TagByIndex(1) = %d, want explicit 12", got)
	}
	if got := tagged.TagByIndex(2); got != 3 {
		t.Errorf("TagByIndex(2) = %d, want default 3", got)
	}
}

func TestTagged_IndexByTag(t *testing.T) {
	desc := NewBuilder("Order", KindStruct).
		AddElement("id", false).
		AddElement("total", false).
		PushAnnotation(WireTag(12)).
		MustBuild()

	tagged := NewTagged(desc)

	tests := []struct {
		tag  int32
		want int
	}{
		{1, 0},
		{12, 1},
		{2, UnknownIndex},  // total's default is overridden, 2 maps to nothing
		{99, UnknownIndex}, // never registered
	}

	for _, tt := range tests {
		if got := tagged.IndexByTag(tt.tag); got != tt.want {
			t.Errorf("IndexByTag(%d) = %d, want %d", tt.tag, got, tt.want)
		}
	}
}

func TestTagged_DuplicateTagPanics(t *testing.T) {
	desc := NewBuilder("Clash", KindStruct).
		AddElement("a", false).
		PushAnnotation(WireTag(2)).
		AddElement("b", false).
		MustBuild()

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate wire tag should panic")
		}
	}()
	NewTagged(desc) // element b defaults to tag 2, clashing with a's explicit 2
}

func TestTagged_Descriptor(t *testing.T) {
	desc := NewBuilder("Order", KindStruct).AddElement("id", false).MustBuild()
	tagged := NewTagged(desc)
	if tagged.Descriptor() != desc {
		t.Error("Descriptor should return the projected descriptor")
	}
}
