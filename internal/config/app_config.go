package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/temirov/uptree/internal/utils"
)

const (
	// ReviewEndpointEnvironmentVariable overrides review.endpoint.
	ReviewEndpointEnvironmentVariable = "UPTREE_REVIEW_ENDPOINT"
	// S3EndpointEnvironmentVariable overrides s3.endpoint.
	S3EndpointEnvironmentVariable = "UPTREE_S3_ENDPOINT"

	errorWorkingDirectoryFormat     = "determine working directory: %w"
	errorResolveConfigurationFormat = "resolve configuration path %s: %w"
	errorStatConfigurationFormat    = "stat configuration %s: %w"
	errorConfigurationIsDirFormat   = "configuration path %s is a directory"
	errorReadConfigurationFormat    = "read configuration from %s: %w"
	errorDecodeConfigurationFormat  = "decode configuration from %s: %w"
	errorLoadEnvironmentFormat      = "load environment file %s: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// SkipGlobal ignores the configuration under the user's home directory.
	SkipGlobal bool
}

// ApplicationConfiguration holds the defaults every command starts from.
type ApplicationConfiguration struct {
	Load   LoadConfiguration   `mapstructure:"load"`
	Tree   TreeConfiguration   `mapstructure:"tree"`
	Files  FilesConfiguration  `mapstructure:"files"`
	Review ReviewConfiguration `mapstructure:"review"`
	S3     S3Configuration     `mapstructure:"s3"`
}

// LoadConfiguration controls how a batch is collected and its content read.
type LoadConfiguration struct {
	MaxPreviewBytes *int64             `mapstructure:"max_preview_bytes"`
	Concurrency     *int               `mapstructure:"concurrency"`
	BinaryPreview   *bool              `mapstructure:"binary_preview"`
	Tokens          TokenConfiguration `mapstructure:"tokens"`
	Paths           PathConfiguration  `mapstructure:"paths"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// PathConfiguration configures inclusion and exclusion rules for directory sources.
type PathConfiguration struct {
	Exclude       []string `mapstructure:"exclude"`
	UseGitignore  *bool    `mapstructure:"use_gitignore"`
	UseIgnoreFile *bool    `mapstructure:"use_ignore"`
	IncludeGit    *bool    `mapstructure:"include_git"`
}

// TreeConfiguration defines defaults for the tree command.
type TreeConfiguration struct {
	Format  string `mapstructure:"format"`
	Summary *bool  `mapstructure:"summary"`
}

// FilesConfiguration defines defaults for the files command.
type FilesConfiguration struct {
	Format string `mapstructure:"format"`
}

// ReviewConfiguration points the review command at an inference endpoint.
type ReviewConfiguration struct {
	Endpoint  string         `mapstructure:"endpoint"`
	MaxTokens *int           `mapstructure:"max_tokens"`
	Timeout   *time.Duration `mapstructure:"timeout"`
	Clipboard *bool          `mapstructure:"clipboard"`
}

// S3Configuration configures the S3 entry source.
// Empty keys fall back to the default AWS credential chain.
type S3Configuration struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	UsePathStyle    *bool  `mapstructure:"use_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// LoadApplicationConfiguration loads the working directory's .env file, then
// the global and local configuration files, local values overriding global
// ones, and finally applies environment overrides.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	if err := loadEnvironmentFile(filepath.Join(workingDirectory, utils.EnvironmentFileName)); err != nil {
		return ApplicationConfiguration{}, err
	}

	var merged ApplicationConfiguration

	if !options.SkipGlobal {
		if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
			globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
			globalConfig, loadErr := loadConfigurationFromPath(globalPath)
			if loadErr != nil {
				return ApplicationConfiguration{}, loadErr
			}
			merged = merged.Merge(globalConfig)
		}
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Load.Paths.Exclude = utils.DeduplicatePatterns(merged.Load.Paths.Exclude)
	if endpoint := os.Getenv(ReviewEndpointEnvironmentVariable); endpoint != "" {
		merged.Review.Endpoint = endpoint
	}
	if endpoint := os.Getenv(S3EndpointEnvironmentVariable); endpoint != "" {
		merged.S3.Endpoint = endpoint
	}
	return merged, nil
}

// loadEnvironmentFile exports the variables of a dotenv file without
// overriding variables already set. A missing file is not an error.
func loadEnvironmentFile(environmentFilePath string) error {
	if err := godotenv.Load(environmentFilePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(errorLoadEnvironmentFormat, environmentFilePath, err)
	}
	return nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(errorResolveConfigurationFormat, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatConfigurationFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorConfigurationIsDirFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadConfigurationFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeConfigurationFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Load = result.Load.merge(override.Load)
	result.Tree = result.Tree.merge(override.Tree)
	result.Files = result.Files.merge(override.Files)
	result.Review = result.Review.merge(override.Review)
	result.S3 = result.S3.merge(override.S3)
	return result
}

func (config LoadConfiguration) merge(override LoadConfiguration) LoadConfiguration {
	result := config
	if override.MaxPreviewBytes != nil {
		result.MaxPreviewBytes = clonePointer(override.MaxPreviewBytes)
	}
	if override.Concurrency != nil {
		result.Concurrency = clonePointer(override.Concurrency)
	}
	if override.BinaryPreview != nil {
		result.BinaryPreview = clonePointer(override.BinaryPreview)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = clonePointer(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = clonePointer(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = clonePointer(override.UseIgnoreFile)
	}
	if override.IncludeGit != nil {
		result.IncludeGit = clonePointer(override.IncludeGit)
	}
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Summary != nil {
		result.Summary = clonePointer(override.Summary)
	}
	return result
}

func (config FilesConfiguration) merge(override FilesConfiguration) FilesConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	return result
}

func (config ReviewConfiguration) merge(override ReviewConfiguration) ReviewConfiguration {
	result := config
	if override.Endpoint != "" {
		result.Endpoint = override.Endpoint
	}
	if override.MaxTokens != nil {
		result.MaxTokens = clonePointer(override.MaxTokens)
	}
	if override.Timeout != nil {
		result.Timeout = clonePointer(override.Timeout)
	}
	if override.Clipboard != nil {
		result.Clipboard = clonePointer(override.Clipboard)
	}
	return result
}

func (config S3Configuration) merge(override S3Configuration) S3Configuration {
	result := config
	if override.Region != "" {
		result.Region = override.Region
	}
	if override.Endpoint != "" {
		result.Endpoint = override.Endpoint
	}
	if override.UsePathStyle != nil {
		result.UsePathStyle = clonePointer(override.UsePathStyle)
	}
	if override.AccessKeyID != "" {
		result.AccessKeyID = override.AccessKeyID
		result.SecretAccessKey = override.SecretAccessKey
	}
	return result
}

func clonePointer[T any](value *T) *T {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

// BoolValue dereferences an optional boolean, falling back when unset.
func BoolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

// IntValue dereferences an optional integer, falling back when unset.
func IntValue(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}
