package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	algos := []string{"big", "decimal"}

	tests := []struct {
		shell    string
		contains []string
	}{
		{"bash", []string{"complete -F _fibfill fibfill", "--splitsize", `algorithms="big decimal"`, "--file|--config)", "--algo) COMPREPLY"}},
		{"zsh", []string{"#compdef fibfill", "'(-q --quiet)'{-q,--quiet}", "--unit[Unit for --size]:unit:(b k m g t p)"}},
		{"fish", []string{"complete -c fibfill -l stop", "# Sizing", "-l algo -d 'Generator to use' -xa 'big decimal'"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell, algos); err != nil {
				t.Fatalf("GenerateCompletion(%q) error: %v", tt.shell, err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("%s script should contain %q", tt.shell, s)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()
	for _, shell := range []string{"tcsh", "powershell", ""} {
		if err := GenerateCompletion(&bytes.Buffer{}, shell, nil); err == nil {
			t.Errorf("expected an error for shell %q", shell)
		}
	}
}

func TestFlagRegistryCoversEveryFlag(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	for _, f := range flagRegistry {
		if seen[f.Long] {
			t.Errorf("duplicate flag %q", f.Long)
		}
		seen[f.Long] = true
	}
	for _, name := range []string{"file", "size", "unit", "split", "splitsize", "splitunit", "stop", "verify", "tui", "config"} {
		if !seen[name] {
			t.Errorf("flag %q missing from the completion registry", name)
		}
	}
}
