package cli

import (
	"slices"
	"testing"

	"github.com/spf13/cobra"
)

func TestRegisterBooleanFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		defaultValue bool
		arguments    []string
		expected     bool
		expectError  bool
	}{
		{
			name:         "keeps_default",
			defaultValue: true,
			arguments:    []string{},
			expected:     true,
		},
		{
			name:      "sets_true_without_value",
			arguments: []string{"--summary"},
			expected:  true,
		},
		{
			name:         "sets_false_with_equals",
			defaultValue: true,
			arguments:    []string{"--summary=false"},
			expected:     false,
		},
		{
			name:         "sets_false_with_separate_literal",
			defaultValue: true,
			arguments:    []string{"--summary", "off"},
			expected:     false,
		},
		{
			name:      "leaves_path_argument_alone",
			arguments: []string{"--summary", "./src"},
			expected:  true,
		},
		{
			name:        "rejects_unknown_literal",
			arguments:   []string{"--summary=maybe"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "boolean-test"}
			flagValue := !testCase.defaultValue
			registerBooleanFlag(command.Flags(), &flagValue, "summary", testCase.defaultValue, "include totals")
			parseErr := command.ParseFlags(normalizeBooleanFlagArguments(command, testCase.arguments))
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected parse error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, flagValue)
			}
		})
	}
}

func TestNormalizeBooleanFlagArgumentsReachesSubcommands(t *testing.T) {
	rootCommand := createRootCommand(dependencies{})
	arguments := []string{"tree", "--summary", "no", "--tokens", "yes", "--format", "json", "--", "--git", "true"}
	expected := []string{"tree", "--summary=no", "--tokens=yes", "--format", "json", "--", "--git", "true"}
	normalized := normalizeBooleanFlagArguments(rootCommand, arguments)
	if !slices.Equal(normalized, expected) {
		t.Fatalf("expected %v, got %v", expected, normalized)
	}
}
