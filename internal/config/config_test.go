package config

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/temirov/uptree/internal/utils"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if makeDirectoryError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirectoryError != nil {
		testingHandle.Fatalf("failed to create %s: %v", filepath.Dir(filePath), makeDirectoryError)
	}
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

func sortedCopy(values []string) []string {
	copied := append([]string{}, values...)
	sort.Strings(copied)
	return copied
}

func TestLoadIgnoreRulesPrefixesNestedFiles(testingHandle *testing.T) {
	testCases := []struct {
		name             string
		fileName         string
		options          IgnoreOptions
		expectedPatterns []string
	}{
		{
			name:             "ignore_file",
			fileName:         utils.IgnoreFileName,
			options:          IgnoreOptions{UseIgnoreFile: true},
			expectedPatterns: []string{"root.txt", "nested/inner.txt", gitDirectoryPattern},
		},
		{
			name:             "gitignore_file",
			fileName:         utils.GitIgnoreFileName,
			options:          IgnoreOptions{UseGitignore: true},
			expectedPatterns: []string{"root.txt", "nested/inner.txt", gitDirectoryPattern},
		},
		{
			name:             "disabled_source",
			fileName:         utils.GitIgnoreFileName,
			options:          IgnoreOptions{UseIgnoreFile: true, IncludeGit: true},
			expectedPatterns: nil,
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			rootDirectory := testingHandle.TempDir()
			writeTestFile(testingHandle, filepath.Join(rootDirectory, testCase.fileName), "# comment\nroot.txt\n")
			writeTestFile(testingHandle, filepath.Join(rootDirectory, "nested", testCase.fileName), "inner.txt\n")

			rules, loadError := LoadIgnoreRules(rootDirectory, testCase.options)
			if loadError != nil {
				testingHandle.Fatalf("LoadIgnoreRules failed: %v", loadError)
			}
			if !reflect.DeepEqual(sortedCopy(rules.Ignore), sortedCopy(testCase.expectedPatterns)) {
				testingHandle.Fatalf("unexpected patterns: got %v want %v", rules.Ignore, testCase.expectedPatterns)
			}
		})
	}
}

func TestLoadIgnoreRulesBinarySectionAndExclusions(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, utils.IgnoreFileName), "dist/\n[binary]\nassets/\n[ignore]\n*.log\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "nested", utils.IgnoreFileName), "[BINARY]\nlogo.png\n")

	rules, loadError := LoadIgnoreRules(rootDirectory, IgnoreOptions{
		UseIgnoreFile:     true,
		ExclusionPatterns: []string{" vendor ", "", "dist/"},
	})
	if loadError != nil {
		testingHandle.Fatalf("LoadIgnoreRules failed: %v", loadError)
	}
	expectedIgnore := []string{"dist/", "*.log", gitDirectoryPattern, "vendor"}
	if !reflect.DeepEqual(rules.Ignore, expectedIgnore) {
		testingHandle.Fatalf("unexpected ignore patterns: got %v want %v", rules.Ignore, expectedIgnore)
	}
	expectedBinary := []string{"assets/", "nested/logo.png"}
	if !reflect.DeepEqual(sortedCopy(rules.BinaryContent), expectedBinary) {
		testingHandle.Fatalf("unexpected binary content patterns: got %v want %v", rules.BinaryContent, expectedBinary)
	}
}

func TestLoadIgnoreFilePatternsMissingFile(testingHandle *testing.T) {
	ignorePatterns, binaryPatterns, loadError := LoadIgnoreFilePatterns(filepath.Join(testingHandle.TempDir(), "absent"))
	if loadError != nil || ignorePatterns != nil || binaryPatterns != nil {
		testingHandle.Fatalf("expected empty result for a missing file, got %v %v %v", ignorePatterns, binaryPatterns, loadError)
	}
}
