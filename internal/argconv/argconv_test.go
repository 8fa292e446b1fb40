package argconv

import (
	"encoding/json"
	"html/template"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type article struct {
	ID    int64
	Title string `json:"title"`
	Tags  []string
}

func (a article) Slug() string { return "article-" + a.Title }

type namedArgs map[string]any

type link struct {
	href string
	hits int64
}

func (l link) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"href": l.href, "hits": l.hits, "ratio": 0.5})
}

func TestMap_NormalisesValues(t *testing.T) {
	fn := func() string { return "x" }
	inner := &article{ID: 2, Title: "Inner"}
	got, err := Map(namedArgs{
		"article": article{ID: 9007199254740993, Title: "Hello", Tags: []string{"a"}},
		"count":   3,
		"html":    template.HTML("<b>ok</b>"),
		"nested":  namedArgs{"inner": inner},
		"link":    link{href: "/a", hits: 9007199254740993},
		"list":    []any{link{href: "/b"}, "plain"},
		" ":       "dropped",
		"fn":      fn,
	})
	if err != nil {
		t.Fatalf("map: %v", err)
	}

	if _, ok := got["fn"].(func() string); !ok {
		t.Fatalf("expected callable preserved, got %T", got["fn"])
	}
	delete(got, "fn")

	want := map[string]any{
		"article": article{ID: 9007199254740993, Title: "Hello", Tags: []string{"a"}},
		"count":   3,
		"html":    template.HTML("<b>ok</b>"),
		"nested":  map[string]any{"inner": inner},
		"link":    map[string]any{"href": "/a", "hits": int64(9007199254740993), "ratio": 0.5},
		"list":    []any{map[string]any{"href": "/b", "hits": int64(0), "ratio": 0.5}, "plain"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("map mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_StructKeepsMethods(t *testing.T) {
	got, err := Value(article{Title: "go"})
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	a, ok := got.(article)
	if !ok {
		t.Fatalf("expected article passed through, got %T", got)
	}
	if a.Slug() != "article-go" {
		t.Fatalf("unexpected slug %q", a.Slug())
	}
}

func TestMap_Nil(t *testing.T) {
	got, err := Map(nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %#v (err=%v)", got, err)
	}
}

func TestMap_RejectsNonObjects(t *testing.T) {
	if _, err := Map([]string{"a"}); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}
