package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tscan/internal/diag"
	"tscan/internal/source"
)

func sample() []diag.Diagnostic {
	return []diag.Diagnostic{
		{
			Severity:  diag.SevError,
			ID:        "zerodiv",
			Message:   "Division by zero.",
			Locations: []diag.Location{{File: "src/a.c", Line: 3}, {File: "src/a.h", Line: 7}},
			Unit:      "src/a.c",
			Configs:   []string{"", "A"},
		},
		{
			Severity: diag.SevInfo,
			ID:       "tooManyConfigs",
			Message:  "Too many configurations.",
			Unit:     "src/b.c",
			Notes:    []diag.Note{{Loc: diag.Location{File: "src/b.c", Line: 1}, Msg: "first skipped here"}},
		},
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sample(), PrettyOpts{ShowConfigs: true, ShowNotes: true, PathMode: PathModeBasename})
	want := "a.c:3: error: Division by zero. [zerodiv]\n" +
		"  via a.h:7\n" +
		"  configurations: |A\n" +
		"b.c: information: Too many configurations. [tooManyConfigs]\n" +
		"  note b.c:1: first skipped here\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyFingerprints(t *testing.T) {
	var buf bytes.Buffer
	diags := sample()[:1]
	Pretty(&buf, diags, PrettyOpts{Fingerprints: true})
	if !strings.Contains(buf.String(), "fingerprint: "+diags[0].Fingerprint().Short()) {
		t.Fatalf("fingerprint missing:\n%s", buf.String())
	}
}

func TestPrettyCodeLine(t *testing.T) {
	files := source.NewFileSet()
	files.AddVirtual("src/a.c", []byte("int a;\nint b;\n\tx = 1 / 0;\n"))

	var buf bytes.Buffer
	Pretty(&buf, sample()[:1], PrettyOpts{Files: files})
	want := "src/a.c:3: error: Division by zero. [zerodiv]\n" +
		"      3 |     x = 1 / 0;\n" +
		"  via src/a.h:7\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildDiagnosticsOutput(t *testing.T) {
	out := BuildDiagnosticsOutput(sample(), JSONOpts{Max: 1})
	if out.Count != 2 || len(out.Diagnostics) != 1 {
		t.Fatalf("count %d, items %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Location != (LocationJSON{File: "src/a.c", Line: 3}) || len(d.Via) != 1 || d.Fingerprint == "" {
		t.Fatalf("unexpected %+v", d)
	}

	var buf bytes.Buffer
	if err := JSON(&buf, out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"id": "zerodiv"`) {
		t.Fatalf("json:\n%s", buf.String())
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	meta := SarifRunMeta{
		ToolName:    "tscan",
		ToolVersion: "0.1.0",
		Rules:       []SarifRule{{ID: "zerodiv", Summary: "Division by zero", Severity: "error"}},
	}
	if err := Sarif(&buf, sample(), meta); err != nil {
		t.Fatal(err)
	}

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region *struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
				PartialFingerprints map[string]string `json:"partialFingerprints"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "tscan" || len(run.Tool.Driver.Rules) != 1 || len(run.Results) != 2 {
		t.Fatalf("unexpected run %+v", run)
	}
	first, second := run.Results[0], run.Results[1]
	if first.Level != "error" || first.Locations[0].PhysicalLocation.ArtifactLocation.URI != "src/a.c" ||
		first.Locations[0].PhysicalLocation.Region == nil || first.Locations[0].PhysicalLocation.Region.StartLine != 3 {
		t.Fatalf("first result %+v", first)
	}
	if first.PartialFingerprints["tscan/v1"] == "" {
		t.Fatal("fingerprint missing")
	}
	if second.Level != "none" || second.Locations[0].PhysicalLocation.Region != nil {
		t.Fatalf("unit-level result must have no region: %+v", second)
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{"": PathModeAuto, "ABS": PathModeAbsolute, "relative": PathModeRelative, "base": PathModeBasename} {
		if got, ok := ParsePathMode(in); !ok || got != want {
			t.Fatalf("ParsePathMode(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParsePathMode("short"); ok {
		t.Fatal("unknown mode accepted")
	}
}
