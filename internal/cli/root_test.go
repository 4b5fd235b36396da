package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// prepare points rootCmd at args, an empty working directory and a fresh
// stdout buffer. Flags are reset when the test ends.
func prepare(t *testing.T, args ...string) *bytes.Buffer {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(resetFlags)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	return out
}

// execute runs rootCmd with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := prepare(t, args...)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func TestRootCommandExists(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}
	if rootCmd.Use != "scandash" {
		t.Errorf("expected Use to be 'scandash', got %q", rootCmd.Use)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("Execute() returned error: %v", err)
	}
	want := "scandash dev (commit: none, built: unknown)\n"
	if out != want {
		t.Errorf("version output = %q, want %q", out, want)
	}
}

func TestExecuteReturnsNoError(t *testing.T) {
	t.Cleanup(resetFlags)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetArgs([]string{"version"})
	if err := Execute(); err != nil {
		t.Errorf("Execute() returned error: %v", err)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"version", "serve", "scan", "list", "stats", "show"}
	registered := make(map[string]*cobra.Command)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = c
	}
	for _, name := range want {
		if registered[name] == nil {
			t.Errorf("%s subcommand not registered on rootCmd", name)
		}
	}
}

func TestGlobalFlags_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		flagName string
		getVal   func() (interface{}, error)
		expected interface{}
	}{
		{
			name:     "config default is empty",
			flagName: "config",
			getVal: func() (interface{}, error) {
				return rootCmd.PersistentFlags().GetString("config")
			},
			expected: "",
		},
		{
			name:     "log-level default is info",
			flagName: "log-level",
			getVal: func() (interface{}, error) {
				return rootCmd.PersistentFlags().GetString("log-level")
			},
			expected: "info",
		},
		{
			name:     "log-format default is text",
			flagName: "log-format",
			getVal: func() (interface{}, error) {
				return rootCmd.PersistentFlags().GetString("log-format")
			},
			expected: "text",
		},
		{
			name:     "log-file default is empty",
			flagName: "log-file",
			getVal: func() (interface{}, error) {
				return rootCmd.PersistentFlags().GetString("log-file")
			},
			expected: "",
		},
		{
			name:     "backend default is memory",
			flagName: "backend",
			getVal: func() (interface{}, error) {
				return rootCmd.PersistentFlags().GetString("backend")
			},
			expected: "memory",
		},
		{
			name:     "no-seed default is false",
			flagName: "no-seed",
			getVal: func() (interface{}, error) {
				return rootCmd.PersistentFlags().GetBool("no-seed")
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := tt.getVal()
			if err != nil {
				t.Fatalf("error getting flag %q: %v", tt.flagName, err)
			}
			if val != tt.expected {
				t.Errorf("flag %q: expected %v (%T), got %v (%T)",
					tt.flagName, tt.expected, tt.expected, val, val)
			}
		})
	}
}

func TestInvalidBackendIsRejected(t *testing.T) {
	_, err := execute(t, "list", "--backend", "oracle")
	if err == nil {
		t.Fatal("expected error for unknown backend, got nil")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("registry.backend")) {
		t.Errorf("error = %q, want it to name registry.backend", err)
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := execute(t, "stats", "--config", "nope.yaml"); err == nil {
		t.Error("expected error for missing config file, got nil")
	}
}
