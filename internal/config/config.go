// Package config loads ignore rules and the application configuration.
package config

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/uptree/internal/utils"
)

const (
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	binarySectionHeader = "[binary]"
	ignoreSectionHeader = "[ignore]"
	commentPrefix       = "#"

	errorLoadingIgnoreFileFormat = "loading %s from %s: %w"
	warningCloseFailedFormat     = "Warning: failed to close %s: %v\n"
)

// IgnoreOptions selects which ignore sources a directory walk honors.
type IgnoreOptions struct {
	ExclusionPatterns []string
	UseGitignore      bool
	UseIgnoreFile     bool
	IncludeGit        bool
}

// IgnoreRules holds the patterns collected beneath one root directory.
// BinaryContent lists paths whose binary bytes are kept, base64-encoded.
type IgnoreRules struct {
	Ignore        []string
	BinaryContent []string
}

// LoadIgnoreFilePatterns reads one ignore file and returns its ignore patterns
// and the patterns listed under its [binary] section. A missing file yields no
// patterns.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, []string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil, nil
		}
		return nil, nil, openFileError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			fmt.Fprintf(os.Stderr, warningCloseFailedFormat, ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	var binaryContentPatterns []string
	currentSection := ignoreSectionHeader
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		switch {
		case trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix):
		case strings.EqualFold(trimmedLine, binarySectionHeader):
			currentSection = binarySectionHeader
		case strings.EqualFold(trimmedLine, ignoreSectionHeader):
			currentSection = ignoreSectionHeader
		case currentSection == binarySectionHeader:
			binaryContentPatterns = append(binaryContentPatterns, trimmedLine)
		default:
			ignorePatterns = append(ignorePatterns, trimmedLine)
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, nil, scanError
	}
	return ignorePatterns, binaryContentPatterns, nil
}

// LoadIgnoreRules walks rootDirectoryPath and gathers the patterns of every
// nested .ignore and .gitignore file, each prefixed with the relative path of
// the directory holding it. The .git directory is ignored unless IncludeGit is
// set. Exclusion patterns are appended last.
func LoadIgnoreRules(rootDirectoryPath string, options IgnoreOptions) (IgnoreRules, error) {
	var rules IgnoreRules

	walkFunction := func(currentDirectoryPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !directoryEntry.IsDir() {
			return nil
		}
		if !options.IncludeGit && directoryEntry.Name() == utils.GitDirectoryName {
			return filepath.SkipDir
		}

		prefix := ""
		if relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath); relativeDirectory != "." {
			prefix = relativeDirectory + "/"
		}

		if options.UseIgnoreFile {
			ignorePatterns, binaryPatterns, loadError := LoadIgnoreFilePatterns(filepath.Join(currentDirectoryPath, utils.IgnoreFileName))
			if loadError != nil {
				return fmt.Errorf(errorLoadingIgnoreFileFormat, utils.IgnoreFileName, currentDirectoryPath, loadError)
			}
			rules.Ignore = appendPrefixed(rules.Ignore, prefix, ignorePatterns)
			rules.BinaryContent = appendPrefixed(rules.BinaryContent, prefix, binaryPatterns)
		}
		if options.UseGitignore {
			gitIgnorePatterns, _, loadError := LoadIgnoreFilePatterns(filepath.Join(currentDirectoryPath, utils.GitIgnoreFileName))
			if loadError != nil {
				return fmt.Errorf(errorLoadingIgnoreFileFormat, utils.GitIgnoreFileName, currentDirectoryPath, loadError)
			}
			rules.Ignore = appendPrefixed(rules.Ignore, prefix, gitIgnorePatterns)
		}
		return nil
	}

	if walkError := filepath.WalkDir(rootDirectoryPath, walkFunction); walkError != nil {
		return IgnoreRules{}, walkError
	}

	if !options.IncludeGit {
		rules.Ignore = append(rules.Ignore, gitDirectoryPattern)
	}
	rules.Ignore = utils.DeduplicatePatterns(rules.Ignore)
	rules.BinaryContent = utils.DeduplicatePatterns(rules.BinaryContent)

	for _, pattern := range options.ExclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" || utils.ContainsString(rules.Ignore, trimmedPattern) {
			continue
		}
		rules.Ignore = append(rules.Ignore, trimmedPattern)
	}
	return rules, nil
}

func appendPrefixed(destination []string, prefix string, patterns []string) []string {
	for _, pattern := range patterns {
		destination = append(destination, prefix+pattern)
	}
	return destination
}
