package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gridwerk/xlform-go/internal/live"
)

func runCLI(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func outputLines(output string) []string {
	return strings.Split(strings.TrimRight(output, "\n"), "\n")
}

func TestTranslateCommand(t *testing.T) {
	out, err := runCLI("translate", "--anchor", "C5", "--to", "r1c1", "=A1+B2")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got, want := strings.TrimSpace(out), "=R[-4]C[-2]+R[-3]C[-1]"; got != want {
		t.Fatalf("translate output %q, want %q", got, want)
	}

	out, err = runCLI("translate", "--anchor", "B2", "--to", "a1", "=R1C1", "=RC")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	lines := outputLines(out)
	if len(lines) != 2 || lines[0] != "=$A$1" || lines[1] != "=B2" {
		t.Fatalf("unexpected translate output: %q", lines)
	}
}

func TestTranslateCommandErrors(t *testing.T) {
	if _, err := runCLI("translate", "--anchor", "x", "--to", "a1", "=R1C1"); err == nil {
		t.Fatal("expected bad anchor error")
	}
	if _, err := runCLI("translate", "--anchor", "A1", "--to", "xyz", "=A1"); err == nil {
		t.Fatal("expected bad notation error")
	}
}

func TestEvalCommand(t *testing.T) {
	out, err := runCLI("eval", "--cell", "C5", "=ROW()*10+COLUMN()")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := strings.TrimSpace(out); got != "53" {
		t.Fatalf("eval output %q, want %q", got, "53")
	}

	out, err = runCLI("eval", "--cell", "A1", "=1/0")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := strings.TrimSpace(out); got != "#DIV/0!" {
		t.Fatalf("eval output %q, want %q", got, "#DIV/0!")
	}

	path := filepath.Join(t.TempDir(), "grid.csv")
	if err := os.WriteFile(path, []byte("1,2\n3,x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI("eval", "--grid", path, "--cell", "A1", "=SUM(A1:B2)", "=A2&B2")
	if err != nil {
		t.Fatalf("eval with grid: %v", err)
	}
	lines := outputLines(out)
	if len(lines) != 2 || lines[0] != "6" || lines[1] != "3x" {
		t.Fatalf("unexpected eval output: %q", lines)
	}

	out, err = runCLI("eval", "--grid", "", "--as-date", "=DATE(2005,2,23)", "=DATE(2005,2,23)+0.5", "=0.25")
	if err != nil {
		t.Fatalf("eval as date: %v", err)
	}
	lines = outputLines(out)
	want := []string{"2005-02-23", "2005-02-23 12:00:00", "06:00:00"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEvalCommandErrors(t *testing.T) {
	if _, err := runCLI("eval", "--grid", "", "--as-date=false", "=1+"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := runCLI("eval", "--grid", "nope.csv", "=1"); err == nil {
		t.Fatal("expected missing grid error")
	}
}

func TestEvalConfigFromEnvironment(t *testing.T) {
	t.Setenv("XLFORM_DATE_SYSTEM", "1904")
	out, err := runCLI("eval", "--grid", "", "--as-date=false", "--cell", "A1", "=DATE(2005,2,23)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := strings.TrimSpace(out); got != "36944" {
		t.Fatalf("1904 serial %q, want %q", got, "36944")
	}

	t.Setenv("XLFORM_DATE_SYSTEM", "1666")
	if _, err := runCLI("eval", "=1"); err == nil || !strings.Contains(err.Error(), "date_system") {
		t.Fatalf("expected date_system error, got %v", err)
	}
}

func TestEvalDelimiterFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	if err := os.WriteFile(path, []byte("1;2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XLFORM_CSV_DELIMITER", ";")
	out, err := runCLI("eval", "--grid", path, "--as-date=false", "--cell", "A1", "=SUM(A1:B1)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := strings.TrimSpace(out); got != "3" {
		t.Fatalf("eval output %q, want %q", got, "3")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI("version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "xlform ") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestServeMuxRouting(t *testing.T) {
	hub := live.NewHub()
	go hub.Run()

	srv := httptest.NewServer(newServeMux(hub))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q, want %q", ct, "application/json")
	}

	// A plain GET on the websocket endpoint is rejected by the upgrader.
	resp, err = http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("ws probe: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("ws probe status %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
