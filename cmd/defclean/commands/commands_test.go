package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/defclean/internal/logger"
)

// useMemFs swaps the command filesystem for an in-memory one.
func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	orig := fsys
	mem := afero.NewMemMapFs()
	fsys = mem
	t.Cleanup(func() { fsys = orig })
	return mem
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeCapture(t, args...)
	return out, err
}

// executeCapture runs the root command and returns stdout and stderr.
func executeCapture(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
		logger.Init(logger.Options{})
	})
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCleanCommand(t *testing.T) {
	mem := useMemFs(t)
	input := `{"b":{"definition":"<p class=\"x\" style=\"mso-a:1\">B</p>"},"a":{"title":"A"}}`
	if err := afero.WriteFile(mem, "in.json", []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "clean", "-q",
		"-i", "in.json", "-o", "out.json",
		"--report", "run.yaml", "--report-format=", "--dry-run=false")
	if err != nil {
		t.Fatalf("clean error = %v", err)
	}

	out, err := afero.ReadFile(mem, "out.json")
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if got := gjson.GetBytes(out, "b.definition").String(); got != "<p>B</p>" {
		t.Errorf("b.definition = %q", got)
	}

	data, err := afero.ReadFile(mem, "run.yaml")
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var rep map[string]any
	if err := yaml.Unmarshal(data, &rep); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	summary := rep["summary"].(map[string]any)
	if summary["entries"] != 2 || summary["cleaned"] != 1 {
		t.Errorf("summary = %v", summary)
	}
}

func TestCleanCommand_BadReportFormat(t *testing.T) {
	mem := useMemFs(t)
	_ = afero.WriteFile(mem, "in.json", []byte(`{}`), 0o644)

	_, err := execute(t, "clean", "-q",
		"-i", "in.json", "-o", "out.json",
		"--report", "run.txt", "--report-format", "xml", "--dry-run=false")
	if err == nil || !strings.Contains(err.Error(), "unsupported report format") {
		t.Fatalf("expected report format error, got %v", err)
	}
	if exists, _ := afero.Exists(mem, "out.json"); exists {
		t.Error("nothing should be written when the report format is invalid")
	}
}

func TestCleanCommand_MissingInput(t *testing.T) {
	useMemFs(t)

	_, err := execute(t, "clean", "-q",
		"-i", "missing.json", "-o", "out.json",
		"--report=", "--report-format=", "--dry-run=false")
	if err == nil || !strings.Contains(err.Error(), "missing.json") {
		t.Fatalf("expected missing input error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if _, ok := info["go_version"]; !ok {
		t.Errorf("missing go_version in %v", info)
	}
}

func TestFragmentCommand(t *testing.T) {
	mem := useMemFs(t)
	_ = afero.WriteFile(mem, "def.html", []byte(`<p id="x" style="mso-a:1;color:red">Hi</p>`), 0o644)

	out, err := execute(t, "fragment", "def.html")
	if err != nil {
		t.Fatalf("fragment error = %v", err)
	}
	if out != "<p style=\"color:red\">Hi</p>\n" {
		t.Errorf("fragment output = %q", out)
	}
}

func TestFragmentCommand_Stdin(t *testing.T) {
	useMemFs(t)
	rootCmd.SetIn(strings.NewReader(`<!--[if gte mso 9]><xml><o:OfficeDocumentSettings/></xml><![endif]--><p><i>a</i></p>`))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out, err := execute(t, "fragment")
	if err != nil {
		t.Fatalf("fragment error = %v", err)
	}
	if out != "<p>a</p>\n" {
		t.Errorf("fragment output = %q", out)
	}
}

func TestFragmentCommand_Logging(t *testing.T) {
	mem := useMemFs(t)
	_ = afero.WriteFile(mem, "def.html", []byte(`<p>Hi</p>`), 0o644)
	t.Cleanup(func() {
		_ = rootCmd.PersistentFlags().Set("debug", "false")
		_ = rootCmd.PersistentFlags().Set("log-json", "false")
	})

	_, stderr, err := executeCapture(t, "fragment", "--debug", "--quiet=false", "--log-json", "def.html")
	if err != nil {
		t.Fatalf("fragment error = %v", err)
	}
	for _, want := range []string{`"msg":"cleaned fragment"`, `"flavor":"standard"`} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %s:\n%s", want, stderr)
		}
	}
}
