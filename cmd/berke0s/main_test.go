package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/BreDEVs/kontrol-sub000/internal/config"
	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "42", want: 42},
		{in: " 7 ", want: 7},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseID(%q) err=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDesktop(t *testing.T) {
	idx, err := parseDesktop("2")
	if err != nil || idx != 1 {
		t.Fatalf("parseDesktop(2) = %d, %v", idx, err)
	}
	if _, err := parseDesktop("0"); err == nil {
		t.Fatalf("expected error for desktop 0")
	}
}

func TestNewWindowPayload(t *testing.T) {
	p := newWindowPayload("a", 5, 5, 0, 0)
	if !p.Centered {
		t.Fatalf("expected centered payload without a size, got %+v", p)
	}
	p = newWindowPayload("b", 10, 20, 300, 200)
	want := ipc.CreateWindowPayload{Title: "b", X: 10, Y: 20, Width: 300, Height: 200}
	if p != want {
		t.Fatalf("got %+v, want %+v", p, want)
	}
}

func TestFilterDesktop(t *testing.T) {
	windows := []ipc.WindowInfo{{ID: 1, Desktop: 0}, {ID: 2, Desktop: 1}, {ID: 3, Desktop: 1}}
	got := filterDesktop(windows, 1)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected filter result %+v", got)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 1}, "file:/c.yaml:3:1"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("got %q", got)
	}
}

func TestMainUsage_ListsConfigSubcommands(t *testing.T) {
	var buf bytes.Buffer
	printMainUsage(&buf)
	for _, sub := range []string{"validate", "print", "explain", "init"} {
		if !strings.Contains(buf.String(), "config "+sub) {
			t.Fatalf("usage missing config %s:\n%s", sub, buf.String())
		}
	}
}
