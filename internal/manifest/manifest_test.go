package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPackageName(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"torch==2.2.2", "torch"},
		{"torchcrepe", "torchcrepe"},
		{"numpy>=1.23,<1.24", "numpy"},
		{"uvicorn[standard]>=0.20", "uvicorn"},
		{"soundfile ; sys_platform == 'darwin'", "soundfile"},
		{"  scipy  ", "scipy"},
		{"# a comment", ""},
		{"", ""},
		{"-r extra.txt", ""},
		{"--no-binary :all:", ""},
	}

	for _, tt := range tests {
		if got := PackageName(tt.line); got != tt.want {
			t.Errorf("PackageName(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestRuleSet_Matches(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		want bool
	}{
		{"torch", true},
		{"Torch", true},
		{"torchcrepe", false}, // prefix collision must not match
		{"torchaudio", true},
		{"tensorflow", true},
		{"tensorflow-estimator", false},
		{"numpy", true},
		{"onnxruntime-gpu", true},
		{"onnxruntime_gpu", true}, // pip name normalization
		{"onnxruntime", false},
	}

	for _, tt := range tests {
		if got := rules.Matches(tt.name); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "requirements.txt")
	dst := filepath.Join(dir, "requirements_macos.txt")

	input := strings.Join([]string{
		"# core",
		"torch",
		"torchcrepe",
		"numpy==1.26",
		"tensorflow",
		"scipy>=1.11",
		"",
	}, "\n")
	if err := os.WriteFile(src, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Sanitize(src, dst, DefaultRules())
	if err != nil {
		t.Fatalf("Sanitize() error: %v", err)
	}

	out, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	got := string(out)

	for _, dropped := range []string{"torch\n", "numpy==1.26", "tensorflow"} {
		if strings.Contains(got, dropped) {
			t.Errorf("filtered manifest still contains %q:\n%s", dropped, got)
		}
	}
	if !strings.Contains(got, "torchcrepe") {
		t.Errorf("torchcrepe must survive the torch rule:\n%s", got)
	}
	if !strings.Contains(got, "scipy>=1.11") {
		t.Errorf("unrelated requirement dropped:\n%s", got)
	}
	if !strings.Contains(got, "# core") {
		t.Errorf("comments should pass through:\n%s", got)
	}

	if res.Kept != 2 {
		t.Errorf("Kept = %d, want 2", res.Kept)
	}
	wantDropped := []string{"torch", "numpy==1.26", "tensorflow"}
	if len(res.Dropped) != len(wantDropped) {
		t.Fatalf("Dropped = %v, want %v", res.Dropped, wantDropped)
	}
	for i, want := range wantDropped {
		if res.Dropped[i] != want {
			t.Errorf("Dropped[%d] = %q, want %q", i, res.Dropped[i], want)
		}
	}
}

func TestSanitize_MissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Sanitize(filepath.Join(dir, "missing.txt"), filepath.Join(dir, "out.txt"), DefaultRules())
	if err == nil {
		t.Fatal("expected error for missing source manifest")
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	content := "drop = [\"torch\", \"my-gpu-lib\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error: %v", err)
	}
	if !rules.Matches("my-gpu-lib") {
		t.Error("custom rule not loaded")
	}
	if rules.Matches("numpy") {
		t.Error("custom rules should replace defaults, not extend them")
	}
}

func TestLoadRules_EmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatal(err)
	}
	if !rules.Matches("torch") {
		t.Error("empty path should return default rules")
	}
}

func TestLoadRules_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(path, []byte("not toml ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRules_NoDrops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(path, []byte("drop = []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected error for empty rule set")
	}
}
