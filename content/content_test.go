package content

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPageSetSlug(t *testing.T) {
	set := NewPageSet([]Post{
		{ID: "a", Slug: "first"},
		{ID: "b", Slug: "second"},
	})

	if got, ok := set.Slug("b"); !ok || got != "second" {
		t.Errorf("Slug(b) = %q, %v, want %q, true", got, ok, "second")
	}
	if got, ok := set.Slug("missing"); ok || got != "" {
		t.Errorf("Slug(missing) = %q, %v, want empty, false", got, ok)
	}
}

func TestPublishable(t *testing.T) {
	posts := []Post{
		{ID: "1", Slug: "ok", Published: true},
		{ID: "2", Slug: "draft", Published: false},
		{ID: "3", Slug: "", Published: true},
	}
	got := Publishable(posts)
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("Publishable = %+v, want only post 1", got)
	}
}

func TestSortByDateDesc(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	posts := []Post{
		{ID: "old", Date: day("2023-01-01")},
		{ID: "undated"},
		{ID: "new", Date: day("2023-02-01")},
	}
	SortByDateDesc(posts)

	want := []string{"new", "old", "undated"}
	for i, id := range want {
		if posts[i].ID != id {
			t.Errorf("posts[%d] = %q, want %q", i, posts[i].ID, id)
		}
	}
}

func TestBlockJSONKeepsToggleChildren(t *testing.T) {
	in := []Block{
		{
			ID:          "t1",
			Type:        TypeToggle,
			HasChildren: true,
			Value: Toggle{
				Text: []RichText{{Content: "more", Bold: true}},
				Children: []Block{
					{ID: "p1", Type: TypeParagraph, Value: Paragraph{Text: []RichText{{Content: "one"}}}},
					{ID: "i1", Type: TypeImage, Value: Image{Source: SourceFile, URL: "https://x/y.png"}},
				},
			},
		},
		{ID: "c1", Type: "callout", Value: Unsupported{}},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out []Block
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	toggle, ok := out[0].Value.(Toggle)
	if !ok {
		t.Fatalf("out[0].Value = %T, want Toggle", out[0].Value)
	}
	if len(toggle.Children) != 2 {
		t.Fatalf("toggle children = %d, want 2", len(toggle.Children))
	}
	if img, ok := toggle.Children[1].Value.(Image); !ok || img.URL != "https://x/y.png" {
		t.Errorf("child image = %+v", toggle.Children[1].Value)
	}
	if _, ok := out[1].Value.(Unsupported); !ok || out[1].Type != "callout" {
		t.Errorf("out[1] = %+v, want unsupported callout", out[1])
	}
}

func TestWalkVisitsToggleChildren(t *testing.T) {
	blocks := []Block{
		{ID: "a", Type: TypeParagraph, Value: Paragraph{}},
		{ID: "b", Type: TypeToggle, Value: Toggle{Children: []Block{
			{ID: "c", Type: TypeImage, Value: Image{}},
		}}},
	}
	var ids []string
	Walk(blocks, func(b Block) { ids = append(ids, b.ID) })
	if len(ids) != 3 || ids[2] != "c" {
		t.Errorf("Walk visited %v, want [a b c]", ids)
	}
}
