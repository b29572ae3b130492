package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E100",
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "server error",
			code:    "E121",
			wantMsg: "index.html not found",
			wantCat: CategoryServer,
		},
		{
			name:    "deps error",
			code:    "E163",
			wantMsg: "Missing dependencies",
			wantCat: CategoryDeps,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown command %q", "serv")
	if err.Message != `unknown command "serv"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
	if err.Error() != `unknown command "serv"` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestSPAError_Error(t *testing.T) {
	err := New("E102")
	if got := err.Error(); got != "E102: Invalid port" {
		t.Errorf("Error() = %q", got)
	}

	err.Wrap(fmt.Errorf("port 70000 out of range"))
	if got := err.Error(); got != "E102: Invalid port: port 70000 out of range" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSPAError_WithLocation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "spa.json")
	content := "{\n  \"port\": 3000,\n  \"dist\": 12\n}\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("E101").WithLocation(file, 3, 11)
	if err.Location == nil {
		t.Fatal("Location should be set")
	}
	if err.Location.Line != 3 || err.Location.Column != 11 {
		t.Errorf("Location = %+v", err.Location)
	}
	want := []SourceLine{
		{Num: 1, Text: "{"},
		{Num: 2, Text: `  "port": 3000,`},
		{Num: 3, Text: `  "dist": 12`},
		{Num: 4, Text: "}"},
	}
	if fmt.Sprint(err.Source) != fmt.Sprint(want) {
		t.Errorf("Source = %v, want %v", err.Source, want)
	}
}

func TestSPAError_WithLocationMissingFile(t *testing.T) {
	err := New("E162").WithLocation("does-not-exist.go", 4, 1)
	if err.Location == nil {
		t.Fatal("Location should be set")
	}
	if err.Source != nil {
		t.Errorf("Source = %v, want nil", err.Source)
	}
}

func TestSPAError_Builders(t *testing.T) {
	err := New("E120").
		WithDetailf("looked in %s", "/srv/dist/frontend").
		WithSuggestion("set DIST_PATH")

	if err.Detail != "looked in /srv/dist/frontend" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "set DIST_PATH" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}

	err.WithDetail("plain")
	if err.Detail != "plain" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestSPAError_Wrap(t *testing.T) {
	inner := os.ErrNotExist
	err := New("E100").Wrap(inner)

	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is should see the wrapped error")
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap should return the wrapped error")
	}
}

func TestSPAError_Is(t *testing.T) {
	err := fmt.Errorf("load: %w", New("E104").WithDetail("store \"redis\""))

	if !stderrors.Is(err, New("E104")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("E100")) {
		t.Error("errors.Is should not match a different code")
	}
	if stderrors.Is(err, Newf(CategoryConfig, "no code")) {
		t.Error("errors.Is should not match an uncoded error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E122") != nil {
		t.Error("FromError(nil) should return nil")
	}

	plain := stderrors.New("listen tcp: address in use")
	se := FromError(plain, "E122")
	if se.Code != "E122" {
		t.Errorf("Code = %q, want E122", se.Code)
	}
	if se.Wrapped != plain {
		t.Error("FromError should wrap the original error")
	}

	existing := New("E121")
	wrapped := fmt.Errorf("serve: %w", existing)
	if got := FromError(wrapped, "E122"); got != existing {
		t.Errorf("FromError should return the SPAError in the chain, got %v", got)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"with column", &Location{File: "main.go", Line: 10, Column: 5}, "main.go:10:5"},
		{"without column", &Location{File: "main.go", Line: 10}, "main.go:10"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "main.go")
	content := `package main

import (
	"fmt"
	x
)
`
	if err := os.WriteFile(tmpFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("E162").
		WithLocation(tmpFile, 5, 2).
		WithDetail("expected import path").
		WithSuggestion("Fix the import block")

	formatted := err.Format()

	for _, want := range []string{
		"ERROR E162: Cannot parse source file",
		tmpFile + ":5:2",
		"→ 5 │ \tx",
		"  4 │ \t\"fmt\"",
		"expected import path",
		"Hint: Fix the import block",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q, got:\n%s", want, formatted)
		}
	}
}

func TestFormatWithoutCode(t *testing.T) {
	DisableColors()
	defer EnableColors()

	formatted := Newf(CategoryCLI, "nothing to do").Format()
	if !strings.Contains(formatted, "ERROR: nothing to do") {
		t.Errorf("Format = %q", formatted)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E101").WithLocation("spa.json", 10, 5)

	want := "spa.json:10:5: E101: Invalid configuration file"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E101").WithLocation("spa.json", 10, 5).Wrap(stderrors.New("unexpected EOF"))

	var got map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", jerr)
	}
	if got["code"] != "E101" {
		t.Errorf("code = %v", got["code"])
	}
	if got["category"] != "config" {
		t.Errorf("category = %v", got["category"])
	}
	if got["cause"] != "unexpected EOF" {
		t.Errorf("cause = %v", got["cause"])
	}
	loc, ok := got["location"].(map[string]any)
	if !ok {
		t.Fatalf("location = %v", got["location"])
	}
	if loc["file"] != "spa.json" || loc["line"] != float64(10) {
		t.Errorf("location = %v", loc)
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) != len(registry) {
		t.Errorf("GetAllCodes() returned %d codes, want %d", len(codes), len(registry))
	}
	for _, code := range codes {
		if !strings.HasPrefix(code, "E") || len(code) != 4 {
			t.Errorf("malformed code %q", code)
		}
	}
}

func TestGetTemplate(t *testing.T) {
	tmpl, ok := GetTemplate("E160")
	if !ok {
		t.Fatal("E160 should be registered")
	}
	if tmpl.Category != CategoryDeps {
		t.Errorf("Category = %q", tmpl.Category)
	}

	if _, ok := GetTemplate("E999"); ok {
		t.Error("E999 should not be registered")
	}
}

func TestRegistryComplete(t *testing.T) {
	for code, tmpl := range registry {
		if tmpl.Category == "" {
			t.Errorf("%s has no category", code)
		}
		if tmpl.Message == "" {
			t.Errorf("%s has no message", code)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("supercalifragilistic word", 8)
	if len(got) != 2 || got[0] != "supercalifragilistic" {
		t.Errorf("wrapText long word: got %v", got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if got := paint("test", ansiRed); got != "\033[31mtest\033[0m" {
		t.Errorf("paint with colors = %q", got)
	}

	DisableColors()
	if got := paint("test", ansiRed, ansiBold); got != "test" {
		t.Errorf("paint without colors = %q", got)
	}
	EnableColors()
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("serve: %w", New("E120"))
	if !HasCode(err, "E120") {
		t.Error("HasCode should find E120 in the chain")
	}
	if HasCode(err, "E121") {
		t.Error("HasCode should not match E121")
	}
	if HasCode(stderrors.New("plain"), "E120") {
		t.Error("HasCode should be false for plain errors")
	}
}
