package cli

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgenius/docindex/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow(t *testing.T) {
	f := setupRunTest(t)
	f.settings.settings.Vision.Provider = domain.AIProviderOpenAI
	f.settings.settings.Vision.APIKey = "sk-1234567890abcdef"

	require.NoError(t, execute("settings", "show"))

	out := f.out.String()
	assert.Contains(t, out, "Bucket: snuh-data-team2")
	assert.Contains(t, out, "Index prefix: vectorDB/")
	assert.Contains(t, out, "Chunking: rich 100/10, plain 1000/100")
	assert.Contains(t, out, "Provider: AWS Bedrock (cloud)")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "Configuration is valid.")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestSettingsShow_ValidationWarning(t *testing.T) {
	f := setupRunTest(t)
	f.settings.validateErr = errFake

	require.NoError(t, execute("settings"))
	assert.Contains(t, f.out.String(), "Warning: fake failure")
}

func TestSettingsShow_GetError(t *testing.T) {
	f := setupRunTest(t)
	f.settings.getErr = errFake

	assert.ErrorIs(t, execute("settings", "show"), errFake)
}

func TestSettingsEmbedding_Interactive(t *testing.T) {
	f := setupRunTest(t)
	// Ollama is the second embedding provider; accept the default model.
	rootCmd.SetIn(strings.NewReader("2\n\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	require.NoError(t, execute("settings", "embedding"))

	assert.Equal(t, domain.AIProviderOllama, f.settings.provider)
	assert.Equal(t, domain.DefaultEmbeddingModels()[domain.AIProviderOllama], f.settings.model)
	assert.Contains(t, f.out.String(), "Validating configuration... OK")
}

func TestSettingsVision_RequiresAPIKey(t *testing.T) {
	f := setupRunTest(t)
	providers := domain.AllVisionProviders()
	choice := 0
	for i, p := range providers {
		if p == domain.AIProviderAnthropic {
			choice = i + 1
		}
	}
	require.NotZero(t, choice)

	rootCmd.SetIn(strings.NewReader(strconv.Itoa(choice) + "\nclaude-test\n\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	err := execute("settings", "vision")
	assert.EqualError(t, err, "API key is required for this provider")
	assert.Empty(t, f.settings.provider)
}

func TestSettingsVision_WithKey(t *testing.T) {
	f := setupRunTest(t)
	providers := domain.AllVisionProviders()
	choice := 0
	for i, p := range providers {
		if p == domain.AIProviderOpenAI {
			choice = i + 1
		}
	}
	require.NotZero(t, choice)

	rootCmd.SetIn(strings.NewReader(strconv.Itoa(choice) + "\ngpt-4o\nsk-test-key\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	require.NoError(t, execute("settings", "vision"))
	assert.Equal(t, domain.AIProviderOpenAI, f.settings.provider)
	assert.Equal(t, "gpt-4o", f.settings.model)
	assert.Equal(t, "sk-test-key", f.settings.apiKey)
}

func TestSettingsEmbedding_ValidationFails(t *testing.T) {
	f := setupRunTest(t)
	f.settings.pingErr = errFake
	rootCmd.SetIn(strings.NewReader("\n\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	err := execute("settings", "embedding")
	assert.ErrorIs(t, err, errFake)
	assert.Contains(t, f.out.String(), "FAILED: fake failure")
}
