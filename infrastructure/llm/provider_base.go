package llm

// RequestOptions holds per-request parameters extracted from the
// options map passed to DoRequest.
type RequestOptions struct {
	// Temperature controls sampling randomness, clamped to [0, 2].
	Temperature float64

	// MaxTokens bounds the response length.
	MaxTokens int

	// SystemPrompt is prepended as a system message where the provider
	// supports one.
	SystemPrompt string
}

// DefaultRequestOptions returns the request defaults shared by all
// providers: deterministic sampling and a response budget generous
// enough for judge rubric output.
func DefaultRequestOptions() RequestOptions {
	return RequestOptions{Temperature: 0, MaxTokens: 1024}
}

// ParseRequestOptions merges the options map over the defaults.
// Unknown keys are ignored; type mismatches keep the default value.
func ParseRequestOptions(opts map[string]any) RequestOptions {
	parsed := DefaultRequestOptions()
	if opts == nil {
		return parsed
	}

	if v, ok := opts["temperature"]; ok {
		switch t := v.(type) {
		case float64:
			parsed.Temperature = clampFloat(t, 0, 2)
		case int:
			parsed.Temperature = clampFloat(float64(t), 0, 2)
		}
	}
	if v, ok := opts["max_tokens"]; ok {
		switch t := v.(type) {
		case int:
			parsed.MaxTokens = clampInt(t, 1, 32768)
		case float64:
			parsed.MaxTokens = clampInt(int(t), 1, 32768)
		}
	}
	if v, ok := opts["system_prompt"].(string); ok {
		parsed.SystemPrompt = v
	}
	return parsed
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
