package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	content := fmt.Sprintf(`dry_run = true

[paths]
data_dir = %q
log_dir = %q

[site]
niche = "woodworking"
site_url = "https://example.com"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))

	path := filepath.Join(base, "seoflow.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "config", "validate", "--path", configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "is valid")
	requireContains(t, out, "Dry-run mode is enabled")

	target := filepath.Join(base, "sample", "config.toml")
	out, err = runCLI(t, configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init without --overwrite to fail on existing file")
	}
}

func TestWorkflowsListsAllEleven(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, configPath, "workflows")
	if err != nil {
		t.Fatalf("workflows: %v", err)
	}
	for _, id := range []string{"wf01", "wf05", "wf11"} {
		requireContains(t, out, id)
	}
	requireContains(t, out, "Keyword Research")
}

func TestRecordsAddAndList(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, configPath, "records", "add",
		"-t", "NicheInputs", "-f", "niche=hand tool restoration")
	if err != nil {
		t.Fatalf("records add: %v", err)
	}
	requireContains(t, out, "Added record 1 to NicheInputs at new")

	out, err = runCLI(t, configPath, "records", "list", "-t", "NicheInputs")
	if err != nil {
		t.Fatalf("records list: %v", err)
	}
	requireContains(t, out, "hand tool restoration")

	if _, err := runCLI(t, configPath, "records", "list", "-t", "NoSuchTab"); err == nil {
		t.Fatal("expected unknown tab to fail")
	}
}

func TestRunWorkflowDryRun(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	if _, err := runCLI(t, configPath, "records", "add",
		"-t", "NicheInputs", "-f", "niche=woodworking"); err != nil {
		t.Fatalf("records add: %v", err)
	}

	out, err := runCLI(t, configPath, "run", "wf01")
	if err != nil {
		t.Fatalf("run wf01: %v", err)
	}
	requireContains(t, out, "wf01 Keyword Research: 1 processed")

	out, err = runCLI(t, configPath, "records", "list", "-t", "NicheInputs")
	if err != nil {
		t.Fatalf("records list: %v", err)
	}
	requireContains(t, out, "researched")
}

func TestRunUnknownWorkflow(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	if _, err := runCLI(t, configPath, "run", "wf99"); err == nil {
		t.Fatal("expected unknown workflow to fail")
	}
}

func TestApproveRejectsWrongStage(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, configPath, "records", "add",
		"-t", "PublishQueue", "-f", "title=Test post")
	if err != nil {
		t.Fatalf("records add: %v", err)
	}
	requireContains(t, out, "Added record 1")

	_, err = runCLI(t, configPath, "records", "approve", "1")
	if err == nil {
		t.Fatal("expected approve of a ready record to fail")
	}
	if !strings.Contains(err.Error(), "illustrated") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	base := t.TempDir()
	content := fmt.Sprintf(`dry_run = true

[paths]
data_dir = %q
log_dir = %q
api_token = "secret-value"

[site]
niche = "woodworking"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	configPath := filepath.Join(base, "seoflow.toml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "woodworking")
	requireContains(t, out, "<redacted>")
	if strings.Contains(out, "secret-value") {
		t.Fatal("secrets must not be printed")
	}
}
