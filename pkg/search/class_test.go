package search

import (
	"testing"

	"github.com/rubiojr/searchfields/pkg/fields"
)

func TestClassLiveFieldsAreShared(t *testing.T) {
	class := newBooksClass()
	a := class.New()
	b := class.New()

	fa, ok := a.Field("title")
	if !ok {
		t.Fatal("expected title field")
	}
	fb, _ := b.Field("title")
	if fa != fb {
		t.Fatal("expected filters of one class to share the live field")
	}

	fa.SetDefault(true)
	if !fb.IsDefault() {
		t.Error("expected change through one filter to be visible through the other")
	}

	frozen, _ := class.Registry().Get("title")
	if frozen == fa {
		t.Fatal("expected registry to hold a separate copy")
	}
	if frozen.IsDefault() {
		t.Error("expected registry copy to be unaffected by live changes")
	}
}

func TestClassInheritedHandles(t *testing.T) {
	sharedFirst := fields.Contains("shared_first")
	base1 := NewClass("base1", []Declaration{Declare("shared", sharedFirst)})
	base2 := NewClass("base2", []Declaration{
		Declare("shared", fields.Contains("shared_second")),
		Declare("only2", fields.Contains("only2")),
	})
	child := NewClass("child", []Declaration{Declare("own", fields.Exact("own"))}, base1, base2)

	if got, _ := child.Field("shared"); got != sharedFirst {
		t.Error("expected live handle from the first listed base")
	}
	if _, ok := child.Field("only2"); !ok {
		t.Error("expected live handle inherited from second base")
	}
	if _, ok := child.Field("missing"); ok {
		t.Error("expected missing field to be absent")
	}

	bases := child.Bases()
	if !equalStrings(bases, []string{"base1", "base2"}) {
		t.Errorf("expected bases [base1 base2], got %v", bases)
	}
	if child.Name() != "child" {
		t.Errorf("expected name child, got %s", child.Name())
	}
}

func TestFilterDefaultFieldsCached(t *testing.T) {
	filter := newBooksClass().New()
	if filter.defaultsComputed() {
		t.Fatal("expected defaults to be computed lazily")
	}

	first := filter.DefaultFields()
	if !filter.defaultsComputed() {
		t.Fatal("expected defaults to be cached after first use")
	}
	if filter.DefaultFields() != first {
		t.Error("expected the same cached registry on later calls")
	}

	want := []string{"id", "email", "@"}
	if got := first.Keys(); !equalStrings(got, want) {
		t.Errorf("expected default keys %v, got %v", want, got)
	}

	// A fresh filter sees the same defaults.
	if got := filter.Class().New().DefaultFields().Keys(); !equalStrings(got, want) {
		t.Errorf("expected default keys %v on new filter, got %v", want, got)
	}
}
