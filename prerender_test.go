package spa

import (
	"strings"
	"testing"
)

func TestInjectIndex(t *testing.T) {
	out, err := injectIndex([]byte(testIndex), "app", `<p id="msg">Hi &amp; bye</p>`, "Greeting")
	if err != nil {
		t.Fatalf("injectIndex: %v", err)
	}
	got := string(out)

	if !strings.Contains(got, `<div id="app"><p id="msg">Hi &amp; bye</p></div>`) {
		t.Errorf("container not replaced:\n%s", got)
	}
	if !strings.Contains(got, "<title>Greeting</title>") {
		t.Errorf("title not set:\n%s", got)
	}
	if strings.Count(got, "<title>") != 1 {
		t.Errorf("expected exactly one title:\n%s", got)
	}
	if !strings.HasPrefix(got, "<!DOCTYPE html>") {
		t.Errorf("doctype lost:\n%s", got)
	}
}

func TestInjectIndex_AddsMissingTitle(t *testing.T) {
	src := `<html><head></head><body><main id="root"></main></body></html>`
	out, err := injectIndex([]byte(src), "root", "<h1>x</h1>", "T")
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	if !strings.Contains(got, "<head><title>T</title></head>") {
		t.Errorf("title not added:\n%s", got)
	}
	if !strings.Contains(got, `<main id="root"><h1>x</h1></main>`) {
		t.Errorf("body not injected:\n%s", got)
	}
}

func TestInjectIndex_NoContainer(t *testing.T) {
	src := []byte(`<html><body><div id="other"></div></body></html>`)
	out, err := injectIndex(src, "app", "<p>x</p>", "T")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(src) {
		t.Errorf("document without container should be unchanged, got %s", out)
	}
}

func TestInjectIndex_EmptyTitleKeepsExisting(t *testing.T) {
	out, err := injectIndex([]byte(testIndex), "app", "", "")
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)
	if !strings.Contains(got, "<title>SPA</title>") {
		t.Errorf("title changed:\n%s", got)
	}
	if !strings.Contains(got, `<div id="app"></div>`) {
		t.Errorf("container not emptied:\n%s", got)
	}
}

func TestRequestNavigator(t *testing.T) {
	nav := &requestNavigator{path: "/posts/1"}
	if nav.Pathname() != "/posts/1" || nav.Replaced() != "" {
		t.Fatalf("initial state = %q %q", nav.Pathname(), nav.Replaced())
	}
	nav.Replace("/error")
	if nav.Pathname() != "/error" || nav.Replaced() != "/error" {
		t.Fatalf("after Replace = %q %q", nav.Pathname(), nav.Replaced())
	}
}
