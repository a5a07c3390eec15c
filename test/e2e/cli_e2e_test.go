package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles cmd/fibfill into a temporary directory. go test runs
// with the package directory as working directory, so the module root is two
// levels up.
func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	binName := "fibfill"
	if runtime.GOOS == "windows" {
		binName = "fibfill.exe"
	}
	binPath := filepath.Join(t.TempDir(), binName)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/fibfill")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build fibfill: %v", err)
	}
	return binPath
}

// TestCLI_E2E verifies the built binary functions correctly
func TestCLI_E2E(t *testing.T) {
	binPath := buildBinary(t)

	tests := []struct {
		name      string
		args      []string
		wantOut   string // substring match (case-insensitive)
		wantCode  int
		wantFiles map[string]string
	}{
		{
			name:      "Single file",
			args:      []string{"--file", "fib.txt", "--size", "6", "--unit", "b"},
			wantOut:   "summary",
			wantFiles: map[string]string{"fib.txt": "0\n1\n1"},
		},
		{
			name:    "Help",
			args:    []string{"--help"},
			wantOut: "usage",
		},
		{
			name:    "Version Flag",
			args:    []string{"--version"},
			wantOut: "fibfill",
		},
		{
			name: "Split",
			args: []string{"--file", "out", "--size", "1", "--unit", "k",
				"--split", "3", "--splitsize", "4", "--splitunit", "b"},
			wantFiles: map[string]string{
				"out-0.txt": "0\n1",
				"out-1.txt": "0\n1",
				"out-2.txt": "0\n1",
			},
		},
		{
			// --stop caps each file at 10/3 = 3 bytes.
			name: "Stop caps split size",
			args: []string{"--file", "out", "--size", "10", "--unit", "b",
				"--split", "3", "--splitsize", "6", "--splitunit", "b", "--stop", "-q"},
			wantOut: "9 3/3",
			wantFiles: map[string]string{
				"out-0.txt": "0\n1",
				"out-1.txt": "0\n1",
				"out-2.txt": "0\n1",
			},
		},
		{
			name: "Stop at total",
			args: []string{"--file", "out", "--size", "9", "--unit", "b",
				"--split", "3", "--splitsize", "6", "--splitunit", "b", "--stop"},
			wantOut: "total size reached",
			wantFiles: map[string]string{
				"out-0.txt": "0\n1",
				"out-1.txt": "0\n1",
				"out-2.txt": "0\n1",
			},
		},
		{
			// 2/3 rounds down to a zero budget, so the first file is skipped.
			name: "Stop skips empty budget",
			args: []string{"--file", "out", "--size", "2", "--unit", "b",
				"--split", "3", "--splitsize", "10", "--splitunit", "b", "--stop", "-q"},
			wantOut: "0 0/3",
		},
		{
			name:      "Quiet Mode",
			args:      []string{"--file", "q.txt", "--size", "6", "--unit", "b", "--quiet"},
			wantOut:   "5 1/1",
			wantFiles: map[string]string{"q.txt": "0\n1\n1"},
		},
		{
			name:    "Verify",
			args:    []string{"--file", "v.txt", "--size", "64", "--unit", "k", "--verify"},
			wantOut: "verification",
		},
		{
			name:     "Invalid unit",
			args:     []string{"--size", "1", "--unit", "x"},
			wantOut:  "invalid unit",
			wantCode: 4,
		},
		{
			name:     "Split without size",
			args:     []string{"--split", "2"},
			wantOut:  "--splitsize",
			wantCode: 4,
		},
		{
			name:     "Very Short Timeout",
			args:     []string{"--file", "big.txt", "--size", "1", "--unit", "g", "--timeout", "1ms", "--drop-cache=false"},
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cmd := exec.Command(binPath, tt.args...)
			cmd.Dir = dir
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("Command did not run: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", code, tt.wantCode, outStr)
			}

			if tt.wantOut != "" && !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}

			for name, want := range tt.wantFiles {
				got, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					t.Errorf("read %s: %v", name, err)
					continue
				}
				if string(got) != want {
					t.Errorf("%s = %q, want %q", name, got, want)
				}
			}
		})
	}
}

// TestCLI_E2E_SkippedFileNotCreated checks that destinations skipped under
// --stop never appear on disk. With a 2-byte total over 3 files every file
// gets a zero budget, so the first one is skipped and the run stops there.
func TestCLI_E2E_SkippedFileNotCreated(t *testing.T) {
	binPath := buildBinary(t)
	dir := t.TempDir()

	cmd := exec.Command(binPath, "--file", "s", "--size", "2", "--unit", "b",
		"--split", "3", "--splitsize", "10", "--splitunit", "b", "--stop")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "size limit reached") {
		t.Errorf("output should report the skip:\n%s", out)
	}
	for _, name := range []string{"s-0.txt", "s-1.txt", "s-2.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not exist, stat err = %v", name, err)
		}
	}
}
