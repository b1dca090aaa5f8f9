package domain

const unknownDescription = "Unknown"

// IndexMode selects how a batch of documents is indexed.
type IndexMode string

// Available index modes.
const (
	// IndexModeRich extracts text, tables and images per page and
	// builds one index per document.
	IndexModeRich IndexMode = "rich"

	// IndexModePlain extracts whole-document text only and builds
	// one index across the batch.
	IndexModePlain IndexMode = "plain"
)

// IsValid returns true if the index mode is recognised.
func (m IndexMode) IsValid() bool {
	switch m {
	case IndexModeRich, IndexModePlain:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m IndexMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m IndexMode) Description() string {
	switch m {
	case IndexModeRich:
		return "Rich (text + tables + image descriptions, per document)"
	case IndexModePlain:
		return "Plain (whole-document text, one index)"
	default:
		return unknownDescription
	}
}

// PDFSource selects where input documents are staged from.
type PDFSource string

// Available PDF sources.
const (
	// PDFSourceLocal copies documents from a local directory.
	PDFSourceLocal PDFSource = "local"

	// PDFSourceDownload downloads documents from object storage.
	PDFSourceDownload PDFSource = "download"
)

// IsValid returns true if the source is recognised.
func (s PDFSource) IsValid() bool {
	return s == PDFSourceLocal || s == PDFSourceDownload
}

// String returns the string representation.
func (s PDFSource) String() string {
	return string(s)
}

// AIProvider identifies an AI service provider for embeddings or vision.
type AIProvider string

// Available AI providers.
const (
	// AIProviderBedrock is AWS Bedrock runtime.
	AIProviderBedrock AIProvider = "bedrock"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderBedrock, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
// Bedrock authenticates through the AWS credential chain instead.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// RequiresRegion returns true if this provider is addressed by region.
func (p AIProvider) RequiresRegion() bool {
	return p == AIProviderBedrock
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderBedrock:
		return "AWS Bedrock (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds object storage configuration.
type StorageSettings struct {
	// Bucket is the object storage bucket.
	Bucket string

	// Region is the bucket's region.
	Region string

	// SourcePrefix is the key prefix input PDFs are listed under.
	SourcePrefix string

	// IndexPrefix is the key prefix index files are published under.
	IndexPrefix string

	// Profile is the AWS shared config profile.
	Profile string
}

// StagingSettings holds input staging configuration.
type StagingSettings struct {
	// Source selects local copy or download.
	Source PDFSource

	// LocalDir is the directory local documents are copied from.
	LocalDir string

	// LocalPrefix filters local files by name prefix.
	LocalPrefix string

	// Dir is the staging directory documents are placed in.
	Dir string
}

// IndexSettings holds index persistence configuration.
type IndexSettings struct {
	// Mode selects rich or plain indexing.
	Mode IndexMode

	// LocalDir is the directory the index is written to before upload.
	LocalDir string
}

// ChunkSpec is a chunk size and overlap pair, counted in characters.
type ChunkSpec struct {
	Size    int
	Overlap int
}

// ChunkingSettings holds text splitting configuration.
type ChunkingSettings struct {
	// Rich is used for per-page text and surrogates.
	Rich ChunkSpec

	// Plain is used for whole-document text.
	Plain ChunkSpec

	// Separators is the separator priority list. "" splits into characters.
	Separators []string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// Region is the service region (for Bedrock).
	Region string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	if e.Provider.RequiresRegion() && e.Region == "" {
		return false
	}
	return true
}

// VisionSettings holds multimodal description provider configuration.
type VisionSettings struct {
	// Provider is the vision service provider.
	Provider AIProvider

	// Model is the multimodal model name.
	Model string

	// Region is the service region (for Bedrock).
	Region string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens caps the description length.
	MaxTokens int

	// Concurrency is the number of images described in parallel per page.
	// 1 keeps the sequential baseline.
	Concurrency int
}

// IsConfigured returns true if the vision provider is set up.
func (v VisionSettings) IsConfigured() bool {
	if !v.Provider.IsValid() {
		return false
	}
	if v.Provider.RequiresAPIKey() && v.APIKey == "" {
		return false
	}
	if v.Provider.RequiresRegion() && v.Region == "" {
		return false
	}
	return true
}

// PromptSettings holds prompt template configuration.
type PromptSettings struct {
	// Path is the YAML file prompt templates are loaded from.
	Path string
}

// RateLimitSettings throttles remote model calls.
type RateLimitSettings struct {
	// RequestsPerSecond is the sustained rate. 0 disables limiting.
	RequestsPerSecond float64

	// Burst is the maximum burst size.
	Burst int
}

// Enabled returns true if rate limiting is active.
func (r RateLimitSettings) Enabled() bool {
	return r.RequestsPerSecond > 0
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage   StorageSettings
	Staging   StagingSettings
	Index     IndexSettings
	Chunking  ChunkingSettings
	Embedding EmbeddingSettings
	Vision    VisionSettings
	Prompts   PromptSettings
	RateLimit RateLimitSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Bucket:       "snuh-data-team2",
			Region:       "us-east-1",
			SourcePrefix: "data/",
			IndexPrefix:  "vectorDB/",
			Profile:      "default",
		},
		Staging: StagingSettings{
			Source:      PDFSourceLocal,
			LocalDir:    "./data",
			LocalPrefix: "",
			Dir:         "/tmp/pdfs",
		},
		Index: IndexSettings{
			Mode:     IndexModePlain,
			LocalDir: "/tmp/vectordb_index",
		},
		Chunking: ChunkingSettings{
			Rich:       ChunkSpec{Size: 100, Overlap: 10},
			Plain:      ChunkSpec{Size: 1000, Overlap: 100},
			Separators: DefaultSeparators(),
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderBedrock,
			Model:    "amazon.titan-embed-text-v1",
			Region:   "us-east-1",
		},
		Vision: VisionSettings{
			Provider:    AIProviderBedrock,
			Model:       "anthropic.claude-3-5-sonnet-20240620-v1:0",
			Region:      "us-west-2",
			MaxTokens:   1000,
			Concurrency: 1,
		},
		Prompts: PromptSettings{
			Path: "./prompts.yaml",
		},
		RateLimit: RateLimitSettings{
			RequestsPerSecond: 0,
			Burst:             1,
		},
	}
}

// DefaultSeparators returns the separator priority list used for splitting.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", " ", ""}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderBedrock,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllVisionProviders returns providers that can describe images.
func AllVisionProviders() []AIProvider {
	return []AIProvider{
		AIProviderBedrock,
		AIProviderAnthropic,
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderBedrock: "amazon.titan-embed-text-v1",
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// DefaultVisionModels returns default models for each vision provider.
func DefaultVisionModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderBedrock:   "anthropic.claude-3-5-sonnet-20240620-v1:0",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderOllama:    "llava",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Bedrock models
		"amazon.titan-embed-text-v1":   1536,
		"amazon.titan-embed-text-v2:0": 1024,
		"cohere.embed-english-v3":      1024,
		"cohere.embed-multilingual-v3": 1024,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
