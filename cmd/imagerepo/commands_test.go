package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLI_AddAndList(t *testing.T) {
	dir := t.TempDir()
	endpoint := "sqlite://" + filepath.Join(dir, "repo.db")

	images := filepath.Join(dir, "images")
	if err := os.Mkdir(images, 0o755); err != nil {
		t.Fatalf("failed to create folder: %v", err)
	}
	for name, data := range map[string]string{"a.png": "aaaa", "b.jpg": "bb"} {
		if err := os.WriteFile(filepath.Join(images, name), []byte(data), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	_, stderr, err := runCLI(t, "--endpoint", endpoint, "init")
	if err != nil {
		t.Fatalf("init error: %v (%s)", err, stderr)
	}
	if !strings.Contains(stderr, "Status: Table 'images' created") {
		t.Fatalf("unexpected init status %q", stderr)
	}

	// a second init reports the existing table without failing
	_, stderr, err = runCLI(t, "--endpoint", endpoint, "init")
	if err != nil {
		t.Fatalf("second init error: %v", err)
	}
	if !strings.Contains(stderr, "already exists") {
		t.Fatalf("expected already exists status, got %q", stderr)
	}

	stdout, _, err := runCLI(t, "--endpoint", endpoint, "add-all", images)
	if err != nil {
		t.Fatalf("add-all error: %v", err)
	}
	if !strings.Contains(stdout, "a.png") || !strings.Contains(stdout, "b.jpg") {
		t.Fatalf("unexpected add-all output %q", stdout)
	}

	stdout, _, err = runCLI(t, "--endpoint", endpoint, "add", filepath.Join(images, "a.png"))
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if !strings.Contains(stdout, "id: 3") {
		t.Fatalf("expected third id, got %q", stdout)
	}

	stdout, _, err = runCLI(t, "--endpoint", endpoint, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	want := "1\t4\ta.png\n2\t2\tb.jpg\n3\t4\ta.png\n"
	if stdout != want {
		t.Fatalf("list output = %q, want %q", stdout, want)
	}

	if _, _, err := runCLI(t, "--endpoint", endpoint, "delete", "2"); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	stdout, _, err = runCLI(t, "--endpoint", endpoint, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if strings.Contains(stdout, "b.jpg") {
		t.Fatalf("expected b.jpg to be deleted, got %q", stdout)
	}
}

func TestCLI_AddMissingFile(t *testing.T) {
	dir := t.TempDir()
	endpoint := "sqlite://" + filepath.Join(dir, "repo.db")

	_, stderr, err := runCLI(t, "--endpoint", endpoint, "add", filepath.Join(dir, "missing.png"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(stderr, "Status: failed to read file") {
		t.Fatalf("unexpected status %q", stderr)
	}
}

func TestCLI_NoEndpoint(t *testing.T) {
	t.Setenv("IMAGEREPO_DATABASE_ENDPOINT", "")

	_, stderr, err := runCLI(t, "list")
	if err == nil {
		t.Fatal("expected error without endpoint")
	}
	if !strings.Contains(stderr, "please type in the database URL") {
		t.Fatalf("unexpected status %q", stderr)
	}
}

func TestReadPassword_FromEnvironment(t *testing.T) {
	t.Setenv(passwordEnv, "s3cret")

	got, err := readPassword(strings.NewReader(""), &bytes.Buffer{}, "root")
	if err != nil {
		t.Fatalf("readPassword error: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("expected password from env, got %q", got)
	}
}

func TestReadPassword_NonTerminal(t *testing.T) {
	t.Setenv(passwordEnv, "")
	if err := os.Unsetenv(passwordEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", passwordEnv, err)
	}

	got, err := readPassword(strings.NewReader("ignored\n"), &bytes.Buffer{}, "root")
	if err != nil {
		t.Fatalf("readPassword error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty password without a terminal, got %q", got)
	}
}
