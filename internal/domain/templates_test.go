package domain

import "testing"

func TestTemplatesInstantiateKnownCategories(t *testing.T) {
	catalog := DefaultCatalog()
	for _, tpl := range Templates("") {
		if !catalog.Has(tpl.Category) {
			t.Fatalf("template %s uses unknown category %q", tpl.ID, tpl.Category)
		}
		p := tpl.Project(catalog)
		if p.Category != tpl.Category {
			t.Fatalf("Project().Category = %q, want %q", p.Category, tpl.Category)
		}
		if p.Value(FieldHeadline) == "" {
			t.Fatalf("template %s has no headline", tpl.ID)
		}
		if !IsAllowedAspectRatio(p.Output.AspectRatio) {
			t.Fatalf("template %s aspect ratio %q not allowed", tpl.ID, p.Output.AspectRatio)
		}
	}
}

func TestTemplatesFilterByKind(t *testing.T) {
	for _, tpl := range Templates(KindSample) {
		if tpl.Kind != KindSample {
			t.Fatalf("Templates(sample) returned %s of kind %q", tpl.ID, tpl.Kind)
		}
	}
	if _, ok := LookupTemplate("sample-bistro-opening"); !ok {
		t.Fatal("LookupTemplate(sample-bistro-opening) not found")
	}
	if _, ok := LookupTemplate("nope"); ok {
		t.Fatal("LookupTemplate(nope) found")
	}
}

func TestTemplateProjectsAreIndependent(t *testing.T) {
	tpl, _ := LookupTemplate("tpl-flash-sale")
	a := tpl.Project(DefaultCatalog())
	a.Text[FieldHeadline] = "changed"
	b := tpl.Project(DefaultCatalog())
	if b.Value(FieldHeadline) != "Flash Sale" {
		t.Fatalf("headline = %q, want %q", b.Value(FieldHeadline), "Flash Sale")
	}
	if a.ID == b.ID {
		t.Fatal("projects share an id")
	}
}
