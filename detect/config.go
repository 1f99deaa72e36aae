package detect

import (
	"net/http"
	"os"
	"strings"

	"github.com/gy212/cheekai-core/appidentity"
	"github.com/gy212/cheekai-core/provider"
)

// providerEnvKeys maps a provider name (as used in the request's
// "name:model" spec) to the bare environment variable that holds its API
// key. Each also has a CHEEKAI_-prefixed alias that takes precedence, per
// spec.md §6.
var providerEnvKeys = map[string]string{
	"glm":       "GLM_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// providerBaseURLs is the default OpenAI-compatible chat-completions
// endpoint for each known provider name.
var providerBaseURLs = map[string]string{
	"glm":       "https://open.bigmodel.cn/api/paas/v4/chat/completions",
	"deepseek":  "https://api.deepseek.com/chat/completions",
	"openai":    "https://api.openai.com/v1/chat/completions",
	"gemini":    "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions",
	"anthropic": "https://api.anthropic.com/v1/chat/completions",
}

// ResolveAPIKey looks up a provider's API key, preferring the
// CHEEKAI_-prefixed alias (identity.EnvVar) over the provider's bare
// upstream name, per spec.md §6's precedence rule.
func ResolveAPIKey(identity *appidentity.Identity, providerName string) string {
	bareKey, ok := providerEnvKeys[strings.ToLower(providerName)]
	if !ok {
		return ""
	}
	if identity != nil {
		if v := os.Getenv(identity.EnvVar(bareKey)); v != "" {
			return v
		}
	}
	return os.Getenv(bareKey)
}

// SentenceLLMRefineDisabled reports whether DISABLE_SENTENCE_LLM_REFINE=1
// (or its CHEEKAI_-prefixed alias) is set.
func SentenceLLMRefineDisabled(identity *appidentity.Identity) bool {
	const bareKey = "DISABLE_SENTENCE_LLM_REFINE"
	if identity != nil {
		if v := os.Getenv(identity.EnvVar(bareKey)); v == "1" {
			return true
		}
	}
	return os.Getenv(bareKey) == "1"
}

// ParseProviderSpec splits a "name:model" request field into its parts. An
// empty spec or one missing the model defaults to the empty model, which
// callers resolve against their own default model table.
func ParseProviderSpec(spec string) (name, model string) {
	parts := strings.SplitN(spec, ":", 2)
	name = strings.ToLower(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		model = strings.TrimSpace(parts[1])
	}
	return name, model
}

// BuildCapability constructs an HTTP-backed LLM capability for the given
// provider name using its resolved API key and default base URL. Returns
// the zero Capability (nil Call) if the provider name is unrecognized or
// no API key is configured, so callers fall back to local-only scoring.
func BuildCapability(identity *appidentity.Identity, providerName string, client *http.Client) provider.Capability {
	baseURL, ok := providerBaseURLs[strings.ToLower(providerName)]
	if !ok {
		return provider.Capability{}
	}
	apiKey := ResolveAPIKey(identity, providerName)
	if apiKey == "" {
		return provider.Capability{}
	}
	return provider.NewHTTPCapability(providerName, baseURL, apiKey, client)
}
