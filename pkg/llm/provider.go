package llm

import "strings"

// Supported providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

const modelSeparator = "/"

type providerSpec struct {
	apiKeyEnv      string
	baseURLEnv     string
	defaultBaseURL string
}

var providers = map[string]providerSpec{
	ProviderAnthropic: {
		apiKeyEnv:      "ANTHROPIC_API_KEY",
		baseURLEnv:     "ANTHROPIC_BASE_URL",
		defaultBaseURL: "https://api.anthropic.com/",
	},
	ProviderOpenAI: {
		apiKeyEnv:      "OPENAI_API_KEY",
		baseURLEnv:     "OPENAI_BASE_URL",
		defaultBaseURL: "https://api.openai.com/v1/",
	},
}

func lookupProvider(name string) (providerSpec, bool) {
	spec, ok := providers[strings.ToLower(strings.TrimSpace(name))]
	return spec, ok
}

// CredentialEnv returns the environment variable holding the API key for the
// provider, or "" for an unknown provider.
func CredentialEnv(provider string) string {
	spec, ok := lookupProvider(provider)
	if !ok {
		return ""
	}
	return spec.apiKeyEnv
}

// ParseModelID splits "provider/model" into its parts. A model without a
// prefix yields an empty provider.
func ParseModelID(model string) (provider, name string) {
	model = strings.TrimSpace(model)
	parts := strings.SplitN(model, modelSeparator, 2)
	if len(parts) != 2 {
		return "", model
	}
	return parts[0], parts[1]
}
