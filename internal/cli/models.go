package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/tala/internal/translate"
)

var supportedModels = map[translate.Provider][]string{
	translate.ProviderGemini: {
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
	},
	translate.ProviderOpenAI: {
		"o1", "o3-mini", "o1-pro", "o3",
		"gpt-5", "gpt-5-nano", "gpt-5-mini", "gpt-5-pro",
		"gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
	},
	translate.ProviderAnthropic: {
		"claude-haiku-4-5",
		"claude-sonnet-4-5",
		"claude-opus-4-1",
	},
}

func isValidModel(provider translate.Provider, model string) bool {
	model = strings.ToLower(strings.TrimSpace(model))
	for _, m := range supportedModels[provider] {
		if m == model {
			return true
		}
	}
	return false
}

// checkModel allows an empty model (provider default) or a known one.
func checkModel(provider translate.Provider, model string, override bool) error {
	if model == "" || override || isValidModel(provider, model) {
		return nil
	}
	return fmt.Errorf(
		"unsupported %s model %q: valid models are %s (use --model-override to bypass)",
		provider,
		model,
		strings.Join(supportedModels[provider], ", "),
	)
}

// resolveAPIKey prefers the flag, then the environment variable env.
func resolveAPIKey(env, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if key := os.Getenv(env); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"API key is required: use --api-key flag or set %s environment variable",
		env,
	)
}
