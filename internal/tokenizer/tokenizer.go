// Package tokenizer estimates token counts for loaded file content.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
	// CacheSize bounds the number of memoized counts; zero uses the default, negative disables caching.
	CacheSize int
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
	defaultCacheSize    = 4096
)

// NewCounter returns a Counter for the requested model together with the
// model name reported alongside counts. Models without a known tiktoken
// encoding fall back to cl100k_base.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	lowerModel := strings.ToLower(model)

	var counter Counter
	reportedModel := model
	if isOpenAIModel(lowerModel) {
		if encoding, err := tiktoken.EncodingForModel(lowerModel); err == nil && encoding != nil {
			counter = openAICounter{encoding: encoding, name: lowerModel}
		}
	}
	if counter == nil {
		encoding, err := tiktoken.GetEncoding(defaultEncodingName)
		if err != nil {
			return nil, "", fmt.Errorf("initialize default tokenizer: %w", err)
		}
		counter = openAICounter{encoding: encoding, name: defaultEncodingName}
		reportedModel = defaultEncodingName
	}

	cacheSize := cfg.CacheSize
	if cacheSize == 0 {
		cacheSize = defaultCacheSize
	}
	if cacheSize < 0 {
		return counter, reportedModel, nil
	}
	cached, cacheErr := NewCachedCounter(counter, cacheSize)
	if cacheErr != nil {
		return nil, "", cacheErr
	}
	return cached, reportedModel, nil
}

func isOpenAIModel(model string) bool {
	prefixes := []string{
		"gpt-",
		"text-embedding",
		"davinci",
		"curie",
		"babbage",
		"ada",
		"code-",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
