package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/fibfill/internal/plan"
)

// FlagCompletion is one entry of the completion registry. Every shell
// script is generated from flagRegistry.
type FlagCompletion struct {
	Long      string
	Short     string
	Help      string
	Values    []string // suggestions; nil for booleans and free-form values
	ValueName string   // nonempty when the flag takes an argument
	IsFile    bool
	IsAlgo    bool // values are the registered generator names
	Section   string
}

var sizeValues = []string{"1k", "1m", "10m", "100m", "1g"}

var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message", Section: "Help and version"},
	{Long: "version", Short: "V", Help: "Show version information", Section: "Help and version"},

	{Long: "file", Help: "Output file or s3:// / minio:// URL", IsFile: true, ValueName: "file", Section: "Sizing"},
	{Long: "size", Help: "Total size to generate", Values: sizeValues, ValueName: "size", Section: "Sizing"},
	{Long: "unit", Help: "Unit for --size", Values: plan.UnitNames, ValueName: "unit", Section: "Sizing"},
	{Long: "split", Help: "Number of split files", Values: []string{"2", "4", "8", "16"}, ValueName: "count", Section: "Sizing"},
	{Long: "splitsize", Help: "Size of each split file", Values: sizeValues, ValueName: "size", Section: "Sizing"},
	{Long: "splitunit", Help: "Unit for --splitsize", Values: plan.UnitNames, ValueName: "unit", Section: "Sizing"},
	{Long: "stop", Help: "Stop once the total size is reached", Section: "Sizing"},

	{Long: "parallel", Help: "Destinations generated at once", Values: []string{"0", "1", "2", "4"}, ValueName: "count", Section: "Execution"},
	{Long: "rate", Help: "Write rate limit per destination", Values: []string{"1m", "10m", "100m"}, ValueName: "rate", Section: "Execution"},
	{Long: "buffer", Help: "Write chunk size", Values: []string{"0", "4k", "64k", "1m"}, ValueName: "size", Section: "Execution"},
	{Long: "algo", Help: "Generator to use", IsAlgo: true, ValueName: "generator", Section: "Execution"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"1m", "5m", "10m", "30m", "1h"}, ValueName: "duration", Section: "Execution"},
	{Long: "fsync", Help: "Fsync local files before closing", Section: "Execution"},
	{Long: "drop-cache", Help: "Drop written pages from the page cache", Section: "Execution"},
	{Long: "verify", Help: "Verify destinations after writing", Section: "Execution"},

	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts", Section: "Output"},
	{Long: "verbose", Short: "v", Help: "Log every destination event", Section: "Output"},
	{Long: "no-color", Help: "Disable colored output", Section: "Output"},
	{Long: "log-format", Help: "Log format", Values: []string{"console", "json"}, ValueName: "format", Section: "Output"},
	{Long: "log-level", Help: "Log level", Values: []string{"trace", "debug", "info", "warn", "error", "disabled"}, ValueName: "level", Section: "Output"},
	{Long: "metrics-addr", Help: "Prometheus metrics address", Values: []string{":9090"}, ValueName: "address", Section: "Output"},
	{Long: "tui", Help: "Show the interactive dashboard", Section: "Output"},

	{Long: "config", Help: "YAML configuration file", IsFile: true, ValueName: "file", Section: "Configuration"},
	{Long: "s3-region", Help: "AWS region for s3:// destinations", ValueName: "region", Section: "Configuration"},
	{Long: "s3-endpoint", Help: "Custom endpoint for s3:// destinations", ValueName: "url", Section: "Configuration"},
	{Long: "completion", Help: "Generate completion script", Values: CompletionShells, ValueName: "shell", Section: "Configuration"},
}

// CompletionShells lists the shells GenerateCompletion supports.
var CompletionShells = []string{"bash", "zsh", "fish"}

// GenerateCompletion writes the completion script for shell to out.
// algorithms are offered as values of --algo.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(algorithms)
	case "zsh":
		script = zshCompletion(algorithms)
	case "fish":
		script = fishCompletion(algorithms)
	default:
		return fmt.Errorf("unsupported shell %q (accepted values: %s)", shell, strings.Join(CompletionShells, ", "))
	}
	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("writing %s completion: %w", shell, err)
	}
	return nil
}

// flagNames returns the dashed spellings of f, long form first.
func flagNames(f FlagCompletion) []string {
	names := []string{"--" + f.Long}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func bashCompletion(algorithms []string) string {
	var words []string
	for _, f := range flagRegistry {
		words = append(words, flagNames(f)...)
	}

	var b strings.Builder
	b.WriteString("# bash completion for fibfill\n")
	b.WriteString("# source it from ~/.bashrc or drop it in bash_completion.d\n\n")
	b.WriteString("_fibfill() {\n")
	b.WriteString("    local cur=\"${COMP_WORDS[COMP_CWORD]}\" prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	fmt.Fprintf(&b, "    local algorithms=%q\n", strings.Join(algorithms, " "))
	b.WriteString("    COMPREPLY=()\n\n")
	b.WriteString("    case \"${prev}\" in\n")

	var files []string
	for _, f := range flagRegistry {
		var values string
		switch {
		case f.IsFile:
			files = append(files, flagNames(f)...)
			continue
		case f.IsAlgo:
			values = "${algorithms}"
		case len(f.Values) > 0:
			values = strings.Join(f.Values, " ")
		default:
			continue
		}
		fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") ); return 0 ;;\n",
			strings.Join(flagNames(f), "|"), values)
	}
	if len(files) > 0 {
		fmt.Fprintf(&b, "        %s) COMPREPLY=( $(compgen -f -- \"${cur}\") ); return 0 ;;\n", strings.Join(files, "|"))
	}
	b.WriteString("    esac\n\n")
	fmt.Fprintf(&b, "    COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(words, " "))
	b.WriteString("}\n\ncomplete -F _fibfill fibfill\n")
	return b.String()
}

func zshCompletion(algorithms []string) string {
	specs := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		specs = append(specs, zshSpec(f))
	}

	var b strings.Builder
	b.WriteString("#compdef fibfill\n\n")
	b.WriteString("# zsh completion for fibfill; place it in a directory of $fpath\n\n")
	b.WriteString("_fibfill() {\n")
	fmt.Fprintf(&b, "    local -a algorithms=(%s)\n", strings.Join(algorithms, " "))
	b.WriteString("    _arguments -s \\\n")
	b.WriteString(strings.Join(specs, " \\\n"))
	b.WriteString("\n}\n\n_fibfill \"$@\"\n")
	return b.String()
}

// zshSpec renders f as an _arguments spec.
func zshSpec(f FlagCompletion) string {
	var action string
	switch {
	case f.IsFile:
		action = ":" + f.ValueName + ":_files"
	case f.IsAlgo:
		action = ":" + f.ValueName + ":($algorithms)"
	case len(f.Values) > 0:
		action = ":" + f.ValueName + ":(" + strings.Join(f.Values, " ") + ")"
	case f.ValueName != "":
		action = ":" + f.ValueName + ":"
	}
	if f.Short == "" {
		return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, action)
	}
	return fmt.Sprintf("        '(-%[1]s --%[2]s)'{-%[1]s,--%[2]s}'[%[3]s]%[4]s'", f.Short, f.Long, f.Help, action)
}

func fishCompletion(algorithms []string) string {
	var b strings.Builder
	b.WriteString("# fish completion for fibfill\n")
	b.WriteString("# save as ~/.config/fish/completions/fibfill.fish\n\n")
	b.WriteString("complete -c fibfill -f\n")

	section := ""
	for _, f := range flagRegistry {
		if f.Section != section {
			section = f.Section
			fmt.Fprintf(&b, "\n# %s\n", section)
		}
		b.WriteString(fishLine(f, algorithms))
		b.WriteByte('\n')
	}
	return b.String()
}

func fishLine(f FlagCompletion, algorithms []string) string {
	parts := []string{"complete -c fibfill"}
	if f.Short != "" {
		parts = append(parts, "-s", f.Short)
	}
	parts = append(parts, "-l", f.Long, "-d", "'"+f.Help+"'")

	values := f.Values
	if f.IsAlgo {
		values = algorithms
	}
	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case len(values) > 0:
		parts = append(parts, "-xa", "'"+strings.Join(values, " ")+"'")
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
