package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// GeminiEmbedderConfig holds configuration for the Gemini embedder.
type GeminiEmbedderConfig struct {
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Gemini    *GeminiEmbedderConfig `yaml:"gemini,omitempty"`
}

// ChunkerConfig configures how chapter runs are split into chunks.
type ChunkerConfig struct {
	Unit          string `yaml:"unit"`
	Segmenter     string `yaml:"segmenter"`
	MaxSize       int    `yaml:"max_size"`
	Overlap       int    `yaml:"overlap"`
	StripHeadings bool   `yaml:"strip_headings"`
}

// IndexConfig locates the per-volume index directories.
type IndexConfig struct {
	Dir string `yaml:"dir"`
}

// RetrievalConfig configures the query-time pipeline.
type RetrievalConfig struct {
	KPerVolume int      `yaml:"k_per_volume"`
	Mode       string   `yaml:"mode"`
	TopN       int      `yaml:"top_n"`
	Keywords   []string `yaml:"keywords"`
}

// RerankerConfig selects and configures the cross-encoder scorer.
type RerankerConfig struct {
	Type        string `yaml:"type"`
	URL         string `yaml:"url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig configures the answer generator.
type LLMConfig struct {
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// VolumeRange maps a closed page interval to a volume name.
type VolumeRange struct {
	Name      string `yaml:"name"`
	FirstPage int    `yaml:"first_page"`
	LastPage  int    `yaml:"last_page"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Reranker  RerankerConfig  `yaml:"reranker"`
	LLM       LLMConfig       `yaml:"llm"`
	Logging   LoggingConfig   `yaml:"logging"`
	Volumes   []VolumeRange   `yaml:"volumes"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := ValidateVolumes(cfg.Volumes); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/bookrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/bookrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ValidateVolumes rejects inverted, unnamed or overlapping page ranges.
func ValidateVolumes(volumes []VolumeRange) error {
	sorted := make([]VolumeRange, len(volumes))
	copy(sorted, volumes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FirstPage < sorted[j].FirstPage })
	for i, v := range sorted {
		if v.Name == "" {
			return fmt.Errorf("volume range %d-%d has no name", v.FirstPage, v.LastPage)
		}
		if v.FirstPage <= 0 || v.LastPage < v.FirstPage {
			return fmt.Errorf("volume %q has invalid page range %d-%d", v.Name, v.FirstPage, v.LastPage)
		}
		if i > 0 && v.FirstPage <= sorted[i-1].LastPage {
			return fmt.Errorf("volume %q overlaps %q", v.Name, sorted[i-1].Name)
		}
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bookrag", "config.yaml"), nil
}

// DefaultVolumes is the page table of the seven-volume source PDF.
func DefaultVolumes() []VolumeRange {
	return []VolumeRange{
		{Name: "Harry Potter and the Sorcerer’s Stone", FirstPage: 8, LastPage: 276},
		{Name: "Harry Potter and the Chamber of Secrets", FirstPage: 277, LastPage: 567},
		{Name: "Harry Potter and the Prisoner of Azkaban", FirstPage: 568, LastPage: 941},
		{Name: "Harry Potter and the Goblet of Fire", FirstPage: 942, LastPage: 1562},
		{Name: "Harry Potter and the Order of the Phoenix", FirstPage: 1563, LastPage: 2408},
		{Name: "Harry Potter and the Half-Blood Prince", FirstPage: 2409, LastPage: 2966},
		{Name: "Harry Potter and the Deathly Hallows", FirstPage: 2967, LastPage: 3623},
	}
}

// DefaultKeywords is the lexical filter vocabulary.
func DefaultKeywords() []string {
	return []string{
		"horcrux",
		"soul",
		"slughorn",
		"voldemort",
		"deathly",
		"hallow",
		"elder wand",
		"resurrection stone",
		"invisibility cloak",
	}
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:  EmbedderConfig{Type: "gemini"},
		Chunker:   ChunkerConfig{Unit: "sentence", Segmenter: "punkt", MaxSize: 550, Overlap: 3},
		Index:     IndexConfig{Dir: "vector_store"},
		Retrieval: RetrievalConfig{KPerVolume: 3, Mode: "filter", TopN: 5},
		Reranker:  RerankerConfig{Type: "overlap"},
		Logging:   LoggingConfig{Level: "info"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "gemini"
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
		}
		g := cfg.Embedder.Gemini
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GEMINI_API_KEY"
		}
		if g.Model == "" {
			g.Model = "gemini-embedding-001"
		}
		if g.Dimension == 0 {
			g.Dimension = 768
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 60
		}
		if g.BatchSize == 0 {
			g.BatchSize = 100
		}
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.Embedder.Type == "hashing" && cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 512
	}
	if cfg.Chunker.Unit == "" {
		cfg.Chunker.Unit = "sentence"
	}
	if cfg.Chunker.Segmenter == "" {
		cfg.Chunker.Segmenter = "punkt"
	}
	if cfg.Chunker.MaxSize == 0 {
		cfg.Chunker.MaxSize = 550
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = "vector_store"
	}
	if cfg.Retrieval.KPerVolume == 0 {
		cfg.Retrieval.KPerVolume = 3
	}
	if cfg.Retrieval.Mode == "" {
		cfg.Retrieval.Mode = "filter"
	}
	if cfg.Retrieval.TopN == 0 {
		cfg.Retrieval.TopN = 5
	}
	if cfg.Retrieval.Keywords == nil {
		cfg.Retrieval.Keywords = DefaultKeywords()
	}
	if cfg.Reranker.Type == "" {
		cfg.Reranker.Type = "overlap"
	}
	if cfg.Reranker.Type == "http" {
		if cfg.Reranker.Model == "" {
			cfg.Reranker.Model = "cross-encoder/ms-marco-MiniLM-L-6-v2"
		}
		if cfg.Reranker.TimeoutSecs == 0 {
			cfg.Reranker.TimeoutSecs = 30
		}
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.5-flash"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if len(cfg.Volumes) == 0 {
		cfg.Volumes = DefaultVolumes()
	}
}
