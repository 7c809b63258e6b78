package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/sentinel/internal/config"
	"github.com/dshills/sentinel/internal/output"
	"github.com/dshills/sentinel/internal/review"
)

// resetFlags resets all package-level flag variables to their defaults.
func resetFlags() {
	flagConfig = ""
	flagLogJSON = false
	flagDir = ""
	flagPaths = ""
	flagExclude = ""
	flagMaxDiffBytes = 0
	flagProvider = ""
	flagProfile = ""
	flagProfilesDir = ""
	flagFormat = ""
	flagOut = ""
	flagOutDir = ""
	flagFailOn = ""
	flagExitPolicy = ""
	flagMaxComments = 0
	flagNoRedact = false
	flagNoBuiltins = false
	flagNoColor = false
	flagMergeBase = false
	flagContextStdout = false
	flagRenderFormat = "human"
	flagRenderPretty = false
	flagConfigLocal = false
	flagConfigForce = false
	flagGHOwner = ""
	flagGHRepo = ""
	flagGHDryRun = false
}

// withExitCode resets exitCode for the test and restores it afterwards.
func withExitCode(t *testing.T) {
	t.Helper()
	saved := exitCode
	t.Cleanup(func() { exitCode = saved })
	exitCode = ExitSuccess
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const todoRule = `{"id":"style.no-todo-comment","area":"DX","severity":"minor","description":"No inline TODOs.","trigger":{"type":"pattern","signals":["added-line:TODO"]}}`

// writeProfile creates a profile named web with one rule, one boundary rule
// and a handbook page.
func writeProfile(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "profiles", "web")
	mustWrite(t, filepath.Join(root, "docs", "rules", "rules.json"), `{"version":1,"rules":[`+todoRule+`]}`)
	mustWrite(t, filepath.Join(root, "docs", "rules", "boundaries.json"),
		`{"forbidden":[{"rule":"arch.modular-boundaries","from":{"glob":"src/features/a/**"},"to":{"glob":"**/internal/**"},"explain":"Features must not reach into each other's internals."}]}`)
	mustWrite(t, filepath.Join(root, "docs", "handbook", "01-overview.md"), "# Overview\n\nKeep features isolated.\n")
	return root
}

const sampleDiff = `diff --git a/src/app.ts b/src/app.ts
index 1111111..2222222 100644
--- a/src/app.ts
+++ b/src/app.ts
@@ -1,2 +1,3 @@
 const a = 1;
+// TODO: refactor
 const b = 2;
diff --git a/src/features/a/index.ts b/src/features/a/index.ts
index 1111111..2222222 100644
--- a/src/features/a/index.ts
+++ b/src/features/a/index.ts
@@ -1,1 +1,2 @@
 export const a = 1;
+import x from 'feature-b/internal/utils'
`

// --- splitComma tests ---

func TestSplitComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single value", "foo", []string{"foo"}},
		{"multiple values", "a,b,c", []string{"a", "b", "c"}},
		{"whitespace trimmed", " a , b , c ", []string{"a", "b", "c"}},
		{"empty parts skipped", "a,,b", []string{"a", "b"}},
		{"all empty", ",,,", nil},
		{"glob patterns", "*.go,src/**/*.ts", []string{"*.go", "src/**/*.ts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitComma(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitComma(%q) = %v (len %d), want %v (len %d)",
					tt.input, got, len(got), tt.want, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitComma(%q)[%d] = %q, want %q",
						tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	if got := buildOverrides(); len(got) != 0 {
		t.Errorf("buildOverrides() = %v, want empty map", got)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagProvider = "mock"
	flagProfile = "web"
	flagProfilesDir = "packages/profiles"
	flagFormat = "json"
	flagOutDir = "out"
	flagFailOn = "major"
	flagExitPolicy = "legacy"
	flagMaxComments = 7
	flagMaxDiffBytes = 1024
	flagNoRedact = true
	flagNoBuiltins = true

	want := map[string]string{
		"provider":     "mock",
		"profile":      "web",
		"profilesDir":  "packages/profiles",
		"format":       "json",
		"outDir":       "out",
		"failOn":       "major",
		"exitPolicy":   "legacy",
		"maxComments":  "7",
		"maxDiffBytes": "1024",
		"redact":       "false",
		"builtins":     "false",
	}
	got := buildOverrides()
	if len(got) != len(want) {
		t.Fatalf("buildOverrides() has %d keys, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("overrides[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestBuildOverrides_ZeroIntsExcluded(t *testing.T) {
	resetFlags()
	flagFormat = "sarif"
	got := buildOverrides()
	if _, ok := got["maxComments"]; ok {
		t.Error("maxComments should be excluded when zero")
	}
	if _, ok := got["maxDiffBytes"]; ok {
		t.Error("maxDiffBytes should be excluded when zero")
	}
	if got["format"] != "sarif" {
		t.Errorf("format = %q, want sarif", got["format"])
	}
}

// --- buildDiffOpts tests ---

func TestBuildDiffOpts(t *testing.T) {
	resetFlags()
	cfg, err := loadConfigForTest(t)
	if err != nil {
		t.Fatal(err)
	}

	opts := buildDiffOpts(cfg)
	if opts.MaxDiffBytes != cfg.MaxDiffBytes {
		t.Errorf("MaxDiffBytes = %d, want %d", opts.MaxDiffBytes, cfg.MaxDiffBytes)
	}
	if len(opts.Include) != 1 || opts.Include[0] != "**/*" {
		t.Errorf("Include = %v, want default", opts.Include)
	}

	flagDir = "/repo"
	flagPaths = "src/**"
	flagExclude = "**/*_test.go"
	opts = buildDiffOpts(cfg)
	if opts.Dir != "/repo" {
		t.Errorf("Dir = %q, want /repo", opts.Dir)
	}
	if len(opts.Include) != 1 || opts.Include[0] != "src/**" {
		t.Errorf("Include = %v, want [src/**]", opts.Include)
	}
	if last := opts.Exclude[len(opts.Exclude)-1]; last != "**/*_test.go" {
		t.Errorf("Exclude should end with the flag value, got %v", opts.Exclude)
	}
	if len(opts.Exclude) != len(cfg.Exclude)+1 {
		t.Errorf("Exclude = %v, want config excludes plus flag", opts.Exclude)
	}
}

func loadConfigForTest(t *testing.T) (config.Config, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return loadConfig(nil)
}

// --- version tests ---

func TestVersionCmd_Execute(t *testing.T) {
	versionCmd.SetArgs([]string{})
	if err := versionCmd.Execute(); err != nil {
		t.Fatalf("version command returned error: %v", err)
	}
}

func TestVersionConstant(t *testing.T) {
	if version == "" {
		t.Error("version constant is empty")
	}
}

// --- config command tests ---

func TestConfigInit_CreatesFile(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configCmd.SetArgs([]string{"init"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "sentinel", "config.json"))
	if err != nil {
		t.Fatalf("config init did not create config.json: %v", err)
	}
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid JSON: %v", err)
	}
	if cfg["provider"] != "local" {
		t.Errorf("provider = %v, want local", cfg["provider"])
	}
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path := filepath.Join(tmpDir, "sentinel", "config.json")
	mustWrite(t, path, `{"provider":"mock"}`)

	configCmd.SetArgs([]string{"init"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config init with existing file returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"provider":"mock"}` {
		t.Errorf("config init overwrote existing file: %s", data)
	}
}

func TestConfigSet_UpdatesFile(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configCmd.SetArgs([]string{"set", "failOn", "major"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "sentinel", "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg["failOn"] != "major" {
		t.Errorf("failOn = %v, want major", cfg["failOn"])
	}
	if _, ok := cfg["provider"]; ok {
		t.Error("config set should only persist keys present in the file")
	}
}

func TestConfigSet_ExplicitPath(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.json")
	flagConfig = path

	configCmd.SetArgs([]string{"set", "maxComments", "5"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"maxComments": 5`) {
		t.Errorf("config file = %s, want maxComments 5", data)
	}
}

func TestConfigSet_InvalidKey(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configCmd.SetArgs([]string{"set", "nonexistent", "value"})
	if err := configCmd.Execute(); err == nil {
		t.Error("config set with invalid key should return error")
	}
}

func TestConfigSet_InvalidValue(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configCmd.SetArgs([]string{"set", "failOn", "blocker"})
	if err := configCmd.Execute(); err == nil {
		t.Error("config set with invalid failOn should return error")
	}
}

func TestConfigSet_MissingArgs(t *testing.T) {
	resetFlags()
	configCmd.SetArgs([]string{"set", "failOn"})
	if err := configCmd.Execute(); err == nil {
		t.Error("config set with one arg should return error")
	}
}

func TestConfigShow_Execute(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var buf bytes.Buffer
	configCmd.SetOut(&buf)
	t.Cleanup(func() { configCmd.SetOut(nil) })

	configCmd.SetArgs([]string{"show"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"profile": "default"`) {
		t.Errorf("config show output missing default profile:\n%s", buf.String())
	}
}

// --- github command tests ---

func TestGithubCmd_InvalidPRNumber(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	withExitCode(t)

	githubCmd.SetArgs([]string{"abc"})
	if err := githubCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != ExitUsageError {
		t.Errorf("exitCode = %d, want %d (ExitUsageError)", exitCode, ExitUsageError)
	}
}

func TestGithubCmd_MissingToken(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")
	withExitCode(t)

	githubCmd.SetArgs([]string{"12", "--owner", "acme", "--repo", "app"})
	if err := githubCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != ExitAuthError {
		t.Errorf("exitCode = %d, want %d (ExitAuthError)", exitCode, ExitAuthError)
	}
}

func TestGithubCmd_MissingArg(t *testing.T) {
	resetFlags()
	githubCmd.SetArgs([]string{})
	if err := githubCmd.Execute(); err == nil {
		t.Error("github command without args should return error")
	}
}

// --- review command tests ---

func TestReviewCmd_HasSubcommands(t *testing.T) {
	expected := map[string]bool{
		"unstaged": false,
		"staged":   false,
		"commit":   false,
		"range":    false,
		"diff":     false,
	}

	for _, sub := range reviewCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("review subcommand %q not found", name)
		}
	}
}

func TestReviewCommitCmd_MissingArg(t *testing.T) {
	resetFlags()
	reviewCmd.SetArgs([]string{"commit"})
	if err := reviewCmd.Execute(); err == nil {
		t.Error("review commit without rev arg should return error")
	}
}

func TestReviewRangeCmd_MissingArg(t *testing.T) {
	resetFlags()
	reviewCmd.SetArgs([]string{"range"})
	if err := reviewCmd.Execute(); err == nil {
		t.Error("review range without arg should return error")
	}
}

// reviewFixture runs "review diff" over sampleDiff with the web profile and
// returns the run printed to --out along with the artifact root.
func reviewFixture(t *testing.T, extra ...string) (*review.Run, string) {
	t.Helper()
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	withExitCode(t)

	work := t.TempDir()
	diffPath := filepath.Join(work, "change.diff")
	mustWrite(t, diffPath, sampleDiff)
	outDir := filepath.Join(work, "out")
	outFile := filepath.Join(work, "stdout.json")

	args := []string{"diff", diffPath,
		"--dir", work,
		"--profile", writeProfile(t),
		"--out-dir", outDir,
		"--format", "json",
		"--out", outFile,
	}
	reviewCmd.SetArgs(append(args, extra...))
	if err := reviewCmd.Execute(); err != nil {
		t.Fatalf("review diff returned error: %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("review did not write --out: %v (exitCode %d)", err, exitCode)
	}
	run, err := output.ParseRun(data)
	if err != nil {
		t.Fatalf("output is not a run: %v", err)
	}
	return run, outDir
}

func TestReviewDiff_WritesArtifacts(t *testing.T) {
	run, outDir := reviewFixture(t)

	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d with failOn none", exitCode, ExitSuccess)
	}
	if len(run.Findings) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(run.Findings), run.Findings)
	}
	if run.Profile != "web" {
		t.Errorf("Profile = %q, want web", run.Profile)
	}
	if run.Context == nil || run.Context.Profile != "web" || !run.Context.BoundariesIncluded {
		t.Errorf("Context = %+v, want web profile with boundaries", run.Context)
	}
	if run.Metadata["mode"] != "diff" || run.Metadata["files"] != "2" {
		t.Errorf("Metadata = %v", run.Metadata)
	}
	if run.Artifacts == nil {
		t.Fatal("Artifacts is nil")
	}

	wantJSON := filepath.Join("reviews", run.RunID, output.FileReviewJSON)
	if run.Artifacts.ReviewJSON != wantJSON {
		t.Errorf("ReviewJSON = %q, want %q", run.Artifacts.ReviewJSON, wantJSON)
	}
	for _, rel := range []string{
		run.Artifacts.ReviewJSON,
		run.Artifacts.ReviewMD,
		run.Artifacts.ReviewHumanMD,
		run.Artifacts.ReviewHTML,
		run.Artifacts.Context,
	} {
		if rel == "" {
			t.Error("artifact path is empty")
			continue
		}
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("artifact %s missing: %v", rel, err)
		}
	}
	if run.Artifacts.Context != filepath.Join("context", "web.md") {
		t.Errorf("Context artifact = %q, want context/web.md", run.Artifacts.Context)
	}

	stored, err := output.ReadRun(filepath.Join(outDir, run.Artifacts.ReviewJSON))
	if err != nil {
		t.Fatal(err)
	}
	if stored.RunID != run.RunID || len(stored.Findings) != len(run.Findings) {
		t.Errorf("review.json run %s/%d differs from stdout run %s/%d",
			stored.RunID, len(stored.Findings), run.RunID, len(run.Findings))
	}
}

func TestReviewDiff_ThresholdExit(t *testing.T) {
	reviewFixture(t, "--fail-on", "minor")
	if exitCode != ExitFindings {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitFindings)
	}
}

func TestReviewDiff_ThresholdBelowTop(t *testing.T) {
	reviewFixture(t, "--fail-on", "critical")
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
}

func TestReviewDiff_LegacyExit(t *testing.T) {
	reviewFixture(t, "--exit-policy", "legacy")
	if exitCode != review.LegacyExitMajor {
		t.Errorf("exitCode = %d, want %d", exitCode, review.LegacyExitMajor)
	}
}

func TestReviewDiff_MaxComments(t *testing.T) {
	run, _ := reviewFixture(t, "--max-comments", "1")
	if len(run.Findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(run.Findings))
	}
	if run.Summary == nil || run.Summary.FindingsTotal != 1 {
		t.Errorf("Summary = %+v, want total 1", run.Summary)
	}
	if run.Config == nil || run.Config.MaxComments != 1 {
		t.Errorf("Config = %+v, want maxComments 1", run.Config)
	}
}

func TestReviewDiff_NoBuiltins(t *testing.T) {
	// The profile's own TODO rule still fires without built-ins.
	run, _ := reviewFixture(t, "--no-builtins")
	if len(run.Findings) != 2 {
		t.Errorf("got %d findings, want 2", len(run.Findings))
	}
}

func TestReviewDiff_MissingRules(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	withExitCode(t)

	work := t.TempDir()
	diffPath := filepath.Join(work, "change.diff")
	mustWrite(t, diffPath, sampleDiff)
	profile := filepath.Join(work, "profiles", "empty")
	mustWrite(t, filepath.Join(profile, "docs", "handbook", "a.md"), "# A\n")

	reviewCmd.SetArgs([]string{"diff", diffPath, "--dir", work, "--profile", profile, "--out-dir", filepath.Join(work, "out")})
	if err := reviewCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

// --- render command tests ---

func TestRender_FromStoredRun(t *testing.T) {
	run, outDir := reviewFixture(t)
	resetFlags()

	humanOut := filepath.Join(t.TempDir(), "human.md")
	renderCmd.SetArgs([]string{filepath.Join(outDir, run.Artifacts.ReviewMD), "--out", humanOut})
	if err := renderCmd.Execute(); err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	got, err := os.ReadFile(humanOut)
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(filepath.Join(outDir, run.Artifacts.ReviewHumanMD))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("render from transport differs from review.human.md:\n%s\n---\n%s", got, want)
	}

	resetFlags()
	jsonOut := filepath.Join(t.TempDir(), "run.json")
	renderCmd.SetArgs([]string{filepath.Join(outDir, run.Artifacts.ReviewJSON), "--format", "json", "--out", jsonOut})
	if err := renderCmd.Execute(); err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	again, err := output.ReadRun(jsonOut)
	if err != nil {
		t.Fatal(err)
	}
	if again.RunID != run.RunID {
		t.Errorf("RunID = %q, want %q", again.RunID, run.RunID)
	}
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
}

func TestRender_MissingFile(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	withExitCode(t)

	renderCmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.json")})
	if err := renderCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

// --- context command tests ---

func TestContextBuild(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	withExitCode(t)
	profile := writeProfile(t)
	outDir := filepath.Join(t.TempDir(), "out")

	var buf bytes.Buffer
	contextCmd.SetOut(&buf)
	t.Cleanup(func() { contextCmd.SetOut(nil) })

	contextCmd.SetArgs([]string{"build", "--profile", profile, "--out-dir", outDir})
	if err := contextCmd.Execute(); err != nil {
		t.Fatalf("context build returned error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "context", "web.md"))
	if err != nil {
		t.Fatalf("context file missing: %v (exitCode %d)", err, exitCode)
	}
	if !strings.Contains(string(data), "Keep features isolated.") {
		t.Error("context document missing handbook text")
	}
	if !strings.Contains(buf.String(), "Wrote context for profile web") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	resetFlags()
	buf.Reset()
	contextCmd.SetArgs([]string{"build", "--profile", profile, "--stdout"})
	if err := contextCmd.Execute(); err != nil {
		t.Fatalf("context build --stdout returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Keep features isolated.") {
		t.Error("--stdout output missing handbook text")
	}
	if strings.Contains(buf.String(), "Wrote context") {
		t.Error("--stdout should print only the document")
	}
}

func TestContextBuild_UnknownProfile(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	withExitCode(t)

	contextCmd.SetArgs([]string{"build", "--dir", t.TempDir(), "--profile", "missing"})
	if err := contextCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

// --- rules command tests ---

func TestRulesValidate(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	withExitCode(t)

	var buf bytes.Buffer
	rulesCmd.SetOut(&buf)
	t.Cleanup(func() { rulesCmd.SetOut(nil) })

	rulesCmd.SetArgs([]string{"validate", "--profile", writeProfile(t)})
	if err := rulesCmd.Execute(); err != nil {
		t.Fatalf("rules validate returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
	if !strings.Contains(buf.String(), "OK: 1 rules, 1 boundary rules") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestRulesValidate_Problems(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	withExitCode(t)

	profile := filepath.Join(t.TempDir(), "bad")
	mustWrite(t, filepath.Join(profile, "docs", "rules", "rules.json"), `{"rules":[`+todoRule+`,`+todoRule+`]}`)

	var buf bytes.Buffer
	rulesCmd.SetOut(&buf)
	t.Cleanup(func() { rulesCmd.SetOut(nil) })

	rulesCmd.SetArgs([]string{"validate", "--profile", profile})
	if err := rulesCmd.Execute(); err != nil {
		t.Fatalf("rules validate returned error: %v", err)
	}
	if exitCode != ExitFindings {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitFindings)
	}
	if !strings.Contains(buf.String(), "/rules/1/id duplicates /rules/0") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

// --- exit code constants tests ---

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitFindings", ExitFindings, 1},
		{"ExitUsageError", ExitUsageError, 2},
		{"ExitAuthError", ExitAuthError, 3},
		{"ExitRuntimeError", ExitRuntimeError, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}
