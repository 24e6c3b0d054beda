package queryfilter

import (
	"encoding/json"
	"testing"
)

func TestLocation_StringAndJSON(t *testing.T) {
	l := loc(t, "/x?b=2&a=1&a=0")
	if l.String() != "/x?a=1&a=0&b=2" {
		t.Fatalf("string: %s", l.String())
	}
	b, err := json.Marshal(Navigation{Location: l, Mode: Push, Shallow: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// encoding/json escapes & as \u0026
	if string(b) != `{"location":"/x?a=1\u0026a=0\u0026b=2","mode":"push","shallow":true}` {
		t.Fatalf("json: %s", b)
	}
	var wire map[string]any
	if err := json.Unmarshal(b, &wire); err != nil || wire["location"] != "/x?a=1&a=0&b=2" {
		t.Fatalf("wire: %v %v", wire, err)
	}
	var back Navigation
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Location.String() != l.String() {
		t.Fatalf("back: %s", back.Location)
	}
	if _, err := ParseLocation("/x?a=%zz"); err == nil {
		t.Fatalf("bad escape should fail")
	}
	if (Location{}).String() != "/" {
		t.Fatalf("zero location")
	}
}

func TestHistory_PushReplaceBackForward(t *testing.T) {
	h := NewHistory(loc(t, "/a"))
	var popped []string
	h.Listen(func(l Location) { popped = append(popped, l.Path) })

	h.Navigate(Navigation{Location: loc(t, "/b"), Mode: Push})
	h.Navigate(Navigation{Location: loc(t, "/c"), Mode: Replace})
	if h.Len() != 2 || h.Location().Path != "/c" {
		t.Fatalf("stack: %d %s", h.Len(), h.Location())
	}
	if !h.Back() || h.Location().Path != "/a" || h.Back() {
		t.Fatalf("back: %s", h.Location())
	}
	if !h.Forward() || h.Location().Path != "/c" || h.Forward() {
		t.Fatalf("forward: %s", h.Location())
	}
	h.Back()
	h.Navigate(Navigation{Location: loc(t, "/d"), Mode: Push})
	if h.Len() != 2 || h.Forward() {
		t.Fatalf("push should drop forward entries")
	}
	if len(popped) != 3 || len(h.Navigations()) != 3 {
		t.Fatalf("popped %v navs %d", popped, len(h.Navigations()))
	}
}

func TestHistory_LocationIsACopy(t *testing.T) {
	h := NewHistory(loc(t, "/a?x=1"))
	l := h.Location()
	l.Query.Set("x", "2")
	if h.Location().Query.Get("x") != "1" {
		t.Fatalf("history leaked its query")
	}
}
