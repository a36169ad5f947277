package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDeckDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

const cleanEntdados = "TM 001 010125 0000\nSIST 1  SE\nFIM\n"

func TestParseCommandJSON(t *testing.T) {
	dir := writeDeckDir(t, map[string]string{
		"entdados.dat": cleanEntdados,
		"operuh.dat":   "REST 001\nLIM 001 10.0 20.0\nFIM\n",
	})
	stdout, _, err := execute(t, "parse", "--ui", "off", "--format", "json", "--color", "off", dir)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var report parseReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout)
	}
	if len(report.Files) != 2 {
		t.Fatalf("files = %+v", report.Files)
	}
	if report.Totals["TimePeriod"] != 1 || report.Totals["Subsystem"] != 1 || report.Totals["Restriction"] != 1 {
		t.Fatalf("totals = %v", report.Totals)
	}
	if report.Diagnostics.Total != 0 {
		t.Fatalf("diagnostics = %+v", report.Diagnostics)
	}
}

func TestDiagCommandExitCode(t *testing.T) {
	dir := writeDeckDir(t, map[string]string{
		"entdados.dat": cleanEntdados + "DP   1  48      100.0\n",
	})
	stdout, _, err := execute(t, "diag", "--ui", "off", "--format", "short", dir)
	var ee exitError
	if !errors.As(err, &ee) || ee.code != exitDeck {
		t.Fatalf("err = %v, want exit code %d", err, exitDeck)
	}
	if !strings.Contains(stdout, "XRF6001") || !strings.Contains(stdout, "period 48 does not name any TimePeriod") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestExitCodeMapping(t *testing.T) {
	if exitCode(nil) != exitOK {
		t.Fatalf("nil error must exit 0")
	}
	if exitCode(exitError{code: exitDeck}) != exitDeck {
		t.Fatalf("deck error must keep its code")
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("invalid mode accepted")
	}
}
