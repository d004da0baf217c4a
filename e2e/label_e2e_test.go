package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type labelOutput struct {
	Results []struct {
		Solution           string `json:"solution"`
		Label              string `json:"label"`
		Prefix             string `json:"prefix"`
		RecommendationRank *int   `json:"recommendationRank"`
	} `json:"results"`
	Stats struct {
		Total          int `json:"total"`
		Labeled        int `json:"labeled"`
		Representative int `json:"representative"`
		Alternative    int `json:"alternative"`
		Schools        int `json:"schools"`
	} `json:"stats"`
}

func runSolfilter(t *testing.T, binaryPath, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "SOLFILTER_NO_PROGRESS=1")
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestLabelE2ETextOutput tests the default text report
func TestLabelE2ETextOutput(t *testing.T) {
	binaryPath := buildSolfilterBinary(t)
	testDir := t.TempDir()
	input := createSolutionFile(t, testDir, "oll.txt", canonicalSolutions)

	stdout, stderr, err := runSolfilter(t, binaryPath, testDir, "", "label", input)
	if err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", err, stderr)
	}

	for _, want := range []string{"Solution Filter Report", "RECOMMENDATIONS", "Representative", "Shortest Alt"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Output should contain %q", want)
		}
	}
}

// TestLabelE2EJSONOutput tests JSON output on stdout
func TestLabelE2EJSONOutput(t *testing.T) {
	binaryPath := buildSolfilterBinary(t)
	testDir := t.TempDir()
	input := createSolutionFile(t, testDir, "oll.txt", canonicalSolutions)

	stdout, stderr, err := runSolfilter(t, binaryPath, testDir, "", "label", "--json", input)
	if err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", err, stderr)
	}

	var out labelOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, stdout)
	}
	if out.Stats.Total != 10 || out.Stats.Labeled != 3 || out.Stats.Schools != 1 {
		t.Errorf("Unexpected stats: %+v", out.Stats)
	}
	if out.Results[0].Label != "Representative" || *out.Results[0].RecommendationRank != 1 {
		t.Errorf("Expected the first solution to be the top Representative, got %+v", out.Results[0])
	}
}

// TestLabelE2EStdin tests reading solutions from standard input
func TestLabelE2EStdin(t *testing.T) {
	binaryPath := buildSolfilterBinary(t)
	testDir := t.TempDir()

	stdout, stderr, err := runSolfilter(t, binaryPath, testDir, canonicalSolutions, "label", "--json", "--labeled-only", "-")
	if err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", err, stderr)
	}

	var out labelOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("Expected 3 labeled results, got %d", len(out.Results))
	}
	for _, res := range out.Results {
		if res.RecommendationRank == nil {
			t.Errorf("Unlabeled result in --labeled-only output: %+v", res)
		}
	}
}

// TestLabelE2EConfigDiscovery tests that .solfilter.toml in the working
// directory is picked up
func TestLabelE2EConfigDiscovery(t *testing.T) {
	binaryPath := buildSolfilterBinary(t)
	testDir := t.TempDir()
	input := createSolutionFile(t, testDir, "oll.txt", canonicalSolutions)
	createTestConfigFile(t, testDir, 2, "127.0.0.1:0")

	stdout, stderr, err := runSolfilter(t, binaryPath, testDir, "", "label", "--json", input)
	if err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", err, stderr)
	}

	var out labelOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if out.Results[0].Prefix != "R U" {
		t.Errorf("Expected prefix length from config, got %q", out.Results[0].Prefix)
	}
}

// TestLabelE2EOutputFile tests writing a YAML report to a file
func TestLabelE2EOutputFile(t *testing.T) {
	binaryPath := buildSolfilterBinary(t)
	testDir := t.TempDir()
	input := createSolutionFile(t, testDir, "oll.txt", canonicalSolutions)
	output := filepath.Join(t.TempDir(), "report.yaml")

	_, stderr, err := runSolfilter(t, binaryPath, testDir, "", "label", "--yaml", "-o", output, input)
	if err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", err, stderr)
	}
	if !strings.Contains(stderr, "YAML report generated") {
		t.Errorf("Expected report notice, got %q", stderr)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Report file not created: %v", err)
	}
	if !strings.Contains(string(data), "label: Representative") {
		t.Errorf("Unexpected YAML report:\n%s", data)
	}
}

// TestLabelE2EErrors tests exit codes and error messages
func TestLabelE2EErrors(t *testing.T) {
	binaryPath := buildSolfilterBinary(t)
	testDir := t.TempDir()

	_, stderr, err := runSolfilter(t, binaryPath, testDir, "", "label", filepath.Join(testDir, "missing.txt"))
	if err == nil {
		t.Fatal("Expected a non-zero exit for a missing file")
	}
	if !strings.Contains(stderr, "Failed to read solutions") {
		t.Errorf("Expected categorized error, got %q", stderr)
	}

	_, _, err = runSolfilter(t, binaryPath, testDir, "", "label", "--json", "--csv", "-")
	if err == nil {
		t.Error("Expected a non-zero exit for conflicting format flags")
	}
}

// TestInitE2E tests configuration file generation
func TestInitE2E(t *testing.T) {
	binaryPath := buildSolfilterBinary(t)
	testDir := t.TempDir()

	stdout, stderr, err := runSolfilter(t, binaryPath, testDir, "", "init")
	if err != nil {
		t.Fatalf("Command failed: %v\nStderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, ".solfilter.toml") {
		t.Errorf("Unexpected output: %s", stdout)
	}
	if _, err := os.Stat(filepath.Join(testDir, ".solfilter.toml")); err != nil {
		t.Fatalf("Config file not created: %v", err)
	}

	// The generated file must be usable as-is
	input := createSolutionFile(t, testDir, "oll.txt", canonicalSolutions)
	if _, stderr, err := runSolfilter(t, binaryPath, testDir, "", "label", input); err != nil {
		t.Fatalf("label with generated config failed: %v\nStderr: %s", err, stderr)
	}
}
