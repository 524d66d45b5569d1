package utils_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/uptree/internal/utils"
)

// textFileName defines the name of the text file used in tests.
const textFileName = "sample.txt"

// binaryFileName defines the name of the binary file used in tests.
const binaryFileName = "sample.bin"

// nestedDirectoryName defines the directory used for nested path tests.
const nestedDirectoryName = "subdir"

// nodeModulesDirectoryPattern defines the ignore pattern for the node_modules directory inside nestedDirectoryName.
const nodeModulesDirectoryPattern = nestedDirectoryName + "/node_modules/"

// backslashNodeModulesDirectoryPattern defines the same pattern with backslashes to verify normalization.
const backslashNodeModulesDirectoryPattern = nestedDirectoryName + `\node_modules\`

// nodeModulesDirectoryPath defines the path to the node_modules directory.
const nodeModulesDirectoryPath = nestedDirectoryName + "/node_modules"

// nodeModulesFilePath defines a file inside the node_modules directory.
const nodeModulesFilePath = nestedDirectoryName + "/node_modules/index.js"

// claspFilePattern defines the ignore pattern for a clasp configuration file inside nestedDirectoryName.
const claspFilePattern = nestedDirectoryName + "/.clasp.json"

// nestedFilePath defines the path to the clasp configuration file inside nestedDirectoryName.
const nestedFilePath = nestedDirectoryName + "/.clasp.json"

// unrelatedNodeModulesFilePath defines a node_modules path in an unrelated directory.
const unrelatedNodeModulesFilePath = "other/" + nodeModulesFilePath

// unrelatedNestedFilePath defines the clasp configuration file path in an unrelated directory.
const unrelatedNestedFilePath = "other/" + nestedFilePath

// TestDeduplicatePatterns verifies that DeduplicatePatterns removes duplicate patterns.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			patterns: []string{"a", "b", "a"},
			expected: []string{"a", "b"},
		},
		{
			testName: "keeps unique",
			patterns: []string{"a", "b"},
			expected: []string{"a", "b"},
		},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicatePatterns(testCase.patterns)
		if len(actual) != len(testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected length %d, got %d", index, testCase.testName, len(testCase.expected), len(actual))
			continue
		}
		for position, value := range actual {
			if value != testCase.expected[position] {
				testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testCase.testName, testCase.expected[position], position, value)
			}
		}
	}
}

// TestContainsString verifies that ContainsString locates strings in a slice.
func TestContainsString(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		slice    []string
		target   string
		expected bool
	}{
		{
			testName: "contains target",
			slice:    []string{"alpha", "beta"},
			target:   "beta",
			expected: true,
		},
		{
			testName: "missing target",
			slice:    []string{"alpha", "beta"},
			target:   "gamma",
			expected: false,
		},
	}
	for index, testCase := range testCases {
		actual := utils.ContainsString(testCase.slice, testCase.target)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestRelativePathOrSelf verifies relative path calculations.
func TestRelativePathOrSelf(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	subPath := filepath.Join(temporaryRoot, textFileName)
	creationError := os.WriteFile(subPath, []byte("content"), 0600)
	if creationError != nil {
		testingInstance.Fatalf("failed to create file: %v", creationError)
	}
	testCases := []struct {
		testName string
		fullPath string
		root     string
		expected string
	}{
		{
			testName: "root path returns dot",
			fullPath: temporaryRoot,
			root:     temporaryRoot,
			expected: ".",
		},
		{
			testName: "sub path returns relative",
			fullPath: subPath,
			root:     temporaryRoot,
			expected: textFileName,
		},
	}
	for index, testCase := range testCases {
		actual := utils.RelativePathOrSelf(testCase.fullPath, testCase.root)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %s, got %s", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestShouldIgnoreByPath verifies path ignoring logic.
func TestShouldIgnoreByPath(testingInstance *testing.T) {
	testCases := []struct {
		testName       string
		relativePath   string
		patterns       []string
		expectedIgnore bool
	}{
		{
			testName:       "service file",
			relativePath:   ".gitignore",
			patterns:       nil,
			expectedIgnore: true,
		},
		{
			testName:       "exclude pattern",
			relativePath:   "dir/file.txt",
			patterns:       []string{"EXCL:dir"},
			expectedIgnore: true,
		},
		{
			testName:       "directory pattern for directory",
			relativePath:   "dir",
			patterns:       []string{"dir/"},
			expectedIgnore: true,
		},
		{
			testName:       "nested directory pattern",
			relativePath:   "dir/file.txt",
			patterns:       []string{"dir/*"},
			expectedIgnore: true,
		},
		{
			testName:       "wildcard file pattern",
			relativePath:   "dir/file.txt",
			patterns:       []string{"*.txt"},
			expectedIgnore: true,
		},
		{
			testName:       "path pattern",
			relativePath:   "dir/file.txt",
			patterns:       []string{"dir/*.txt"},
			expectedIgnore: true,
		},
		{
			testName:       "not ignored",
			relativePath:   "dir/file.txt",
			patterns:       []string{"*.md"},
			expectedIgnore: false,
		},
		{
			testName:       "nested directory with slash",
			relativePath:   nodeModulesFilePath,
			patterns:       []string{nodeModulesDirectoryPattern},
			expectedIgnore: true,
		},
		{
			testName:       "nested directory with backslashes",
			relativePath:   nodeModulesFilePath,
			patterns:       []string{backslashNodeModulesDirectoryPattern},
			expectedIgnore: true,
		},
		{
			testName:       "directory match short circuits",
			relativePath:   nodeModulesDirectoryPath,
			patterns:       []string{nodeModulesDirectoryPattern},
			expectedIgnore: true,
		},
		{
			testName:       "nested file pattern",
			relativePath:   nestedFilePath,
			patterns:       []string{claspFilePattern},
			expectedIgnore: true,
		},
		{
			testName:       "nested file pattern no match",
			relativePath:   unrelatedNestedFilePath,
			patterns:       []string{claspFilePattern},
			expectedIgnore: false,
		},
		{
			testName:       "nested directory pattern no match",
			relativePath:   unrelatedNodeModulesFilePath,
			patterns:       []string{nodeModulesDirectoryPattern},
			expectedIgnore: false,
		},
	}
	for index, testCase := range testCases {
		actual := utils.ShouldIgnoreByPath(testCase.relativePath, testCase.patterns)
		if actual != testCase.expectedIgnore {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expectedIgnore, actual)
		}
	}
}

// TestShouldDisplayBinaryContentByPath verifies binary content display rules.
func TestShouldDisplayBinaryContentByPath(testingInstance *testing.T) {
	testCases := []struct {
		testName     string
		relativePath string
		patterns     []string
		expected     bool
	}{
		{
			testName:     "exact match",
			relativePath: "dir/" + binaryFileName,
			patterns:     []string{"dir/" + binaryFileName},
			expected:     true,
		},
		{
			testName:     "directory pattern",
			relativePath: "dir/sub/" + binaryFileName,
			patterns:     []string{"dir/"},
			expected:     true,
		},
		{
			testName:     "wildcard pattern",
			relativePath: binaryFileName,
			patterns:     []string{"*.bin"},
			expected:     true,
		},
		{
			testName:     "no match",
			relativePath: "dir/" + binaryFileName,
			patterns:     []string{"other/"},
			expected:     false,
		},
	}
	for index, testCase := range testCases {
		actual := utils.ShouldDisplayBinaryContentByPath(testCase.relativePath, testCase.patterns)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestIsBinary verifies detection of binary data in byte slices.
func TestIsBinary(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		data     []byte
		expected bool
	}{
		{
			testName: "utf8 text",
			data:     []byte("hello"),
			expected: false,
		},
		{
			testName: "null byte",
			data:     []byte{0x00, 0x01},
			expected: true,
		},
		{
			testName: "invalid utf8",
			data:     []byte{0xff},
			expected: true,
		},
		{
			testName: "empty slice",
			data:     []byte{},
			expected: false,
		},
	}
	for index, testCase := range testCases {
		actual := utils.IsBinary(testCase.data)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestIsBinaryIgnoresRuneCutBySniffWindow verifies that a multi-byte rune split
// at the sniff boundary does not flag large text as binary.
func TestIsBinaryIgnoresRuneCutBySniffWindow(testingInstance *testing.T) {
	var buffer bytes.Buffer
	buffer.WriteString(strings.Repeat("a", 7999))
	buffer.WriteString(strings.Repeat("é", 10))
	if utils.IsBinary(buffer.Bytes()) {
		testingInstance.Fatalf("expected text with a rune across the sniff window to be text")
	}
	withNull := append(bytes.Repeat([]byte("a"), 100), 0x00)
	if !utils.IsBinary(withNull) {
		testingInstance.Fatalf("expected null byte to mark binary")
	}
}

// TestFormatFileSize verifies human-readable size formatting.
func TestFormatFileSize(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		bytes    int64
		expected string
	}{
		{testName: "bytes", bytes: 123, expected: "123b"},
		{testName: "small kilobytes", bytes: 1536, expected: "1.5kb"},
		{testName: "whole kilobytes", bytes: 2048, expected: "2kb"},
		{testName: "large kilobytes", bytes: 20480, expected: "20kb"},
		{testName: "negative", bytes: -1, expected: "0b"},
	}
	for index, testCase := range testCases {
		actual := utils.FormatFileSize(testCase.bytes)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %s, got %s", index, testCase.testName, testCase.expected, actual)
		}
	}
}
