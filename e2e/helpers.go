package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

const canonicalSolutions = `R U R' U'
F R U' R' F'
R U2 R' U'
F' U' F U
R U R' U R U2 R'
F R U R' U' F'
R U R' U' R' F R F'
F' U' F U R U R'
R U R' F' U' F
F U R U' R' F'
`

// buildSolfilterBinary builds cmd/solfilter into a temporary directory
func buildSolfilterBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "solfilter")

	// Build from the project root (one level up from e2e directory)
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/solfilter")
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build solfilter binary: %v\n%s", err, out)
	}
	return binaryPath
}

// createSolutionFile writes a solution file and returns its path
func createSolutionFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", dir, err)
	}
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}
	return filePath
}

// createTestConfigFile creates a .solfilter.toml in testDir with the given
// [filter] prefix length and [server] address
func createTestConfigFile(t *testing.T, testDir string, prefixLen int, addr string) {
	t.Helper()
	configFile := filepath.Join(testDir, ".solfilter.toml")
	configContent := fmt.Sprintf("[filter]\nprefix_len = %d\n\n[server]\naddr = %q\n", prefixLen, addr)
	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
}
