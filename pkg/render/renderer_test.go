package render

import (
	"strings"
	"testing"

	"github.com/glimmer-dev/glimmer/pkg/vdom"
)

func renderString(t *testing.T, node *vdom.VNode) string {
	t.Helper()
	r := NewRenderer()
	out, err := r.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	return out
}

func TestRenderText(t *testing.T) {
	got := renderString(t, vdom.Text("hello"))
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestRenderTextEscapes(t *testing.T) {
	got := renderString(t, vdom.Text(`<script>alert("x")</script>`))
	want := "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderElement(t *testing.T) {
	node := vdom.El("div", vdom.Props{"class": "box"},
		vdom.El("span", nil, "inner"),
	)
	got := renderString(t, node)
	want := `<div class="box"><span>inner</span></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderAttributesSortedAndTyped(t *testing.T) {
	node := vdom.El("input", vdom.Props{
		"type":     "checkbox",
		"checked":  true,
		"disabled": false,
		"tabindex": 3,
		"data-x":   nil,
	})
	got := renderString(t, node)
	want := `<input checked tabindex="3" type="checkbox">`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderAttributeEscaping(t *testing.T) {
	node := vdom.El("div", vdom.Props{"title": "a\"b\nc"})
	got := renderString(t, node)
	want := `<div title="a&quot;b&#10;c"></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderVoidElementHasNoClosingTag(t *testing.T) {
	got := renderString(t, vdom.El("br", nil))
	if got != "<br>" {
		t.Errorf("got %q, want %q", got, "<br>")
	}
}

func TestRenderFragment(t *testing.T) {
	node := vdom.Fragment(
		vdom.El("p", nil, "one"),
		vdom.El("p", nil, "two"),
	)
	got := renderString(t, node)
	want := "<p>one</p><p>two</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderRawIsUnescaped(t *testing.T) {
	got := renderString(t, vdom.Raw("<b>bold</b>"))
	if got != "<b>bold</b>" {
		t.Errorf("got %q, want %q", got, "<b>bold</b>")
	}
}

func TestRenderNilNode(t *testing.T) {
	got := renderString(t, nil)
	if got != "" {
		t.Errorf("nil node rendered %q", got)
	}
}

func TestRenderToWriter(t *testing.T) {
	var sb strings.Builder
	r := NewRenderer()
	if err := r.RenderToWriter(&sb, vdom.El("em", nil, "hi")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sb.String() != "<em>hi</em>" {
		t.Errorf("got %q, want %q", sb.String(), "<em>hi</em>")
	}
}

func TestRenderUnknownKind(t *testing.T) {
	r := NewRenderer()
	if _, err := r.RenderToString(&vdom.VNode{Kind: vdom.VKind(99)}); err == nil {
		t.Error("expected an error for an unknown node kind")
	}
}
