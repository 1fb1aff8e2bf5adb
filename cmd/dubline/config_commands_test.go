package main

import (
	"os"
	"path/filepath"
	"testing"

	"dubline/internal/testsupport"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "dubline.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)
	requireContains(t, out, "OPENAI_API_KEY")

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat sample: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("sample config is empty")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dubline.toml")
	if err := os.WriteFile(target, []byte("# mine\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	_, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil {
		t.Fatal("expected error for existing config")
	}
	requireContains(t, err.Error(), "--overwrite")

	data, _ := os.ReadFile(target)
	if string(data) != "# mine\n" {
		t.Fatalf("existing config modified: %q", data)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	data, _ = os.ReadFile(target)
	if string(data) == "# mine\n" {
		t.Fatal("expected sample to replace existing config")
	}
}

func TestConfigValidateUsesConfigFlag(t *testing.T) {
	clearProviderEnv(t)
	cfg := testsupport.NewConfig(t)
	cfg.Translation.Providers = []string{"llm"}
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+path)
	requireContains(t, out, "Translation providers: llm\n")
	requireContains(t, out, "Configuration valid")
	requireNotContains(t, out, "defaults were used")

	if _, err := os.Stat(cfg.Paths.OutputDir); err != nil {
		t.Fatalf("expected output dir to be created: %v", err)
	}
}

func TestConfigValidateRejectsInvalidConfig(t *testing.T) {
	clearProviderEnv(t)
	cfg := testsupport.NewConfig(t)
	cfg.Audio.SampleRate = 44100
	path := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "audio.sample_rate")
}
