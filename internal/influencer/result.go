package influencer

type GeneratedImage struct {
	URL   string `json:"url"`
	Seed  int    `json:"seed"`
	Model string `json:"model"`
}

// GenerationResult is produced whole by one generation run and replaces
// the previous one; it is never merged or patched.
type GenerationResult struct {
	Images  [2]GeneratedImage `json:"images"`
	Prompts PromptTriple      `json:"prompts"`
}
