package domain

// GenerationRequest carries a single code-generation call. Async requests
// are copied into a job payload at enqueue time; sync requests live only
// for the duration of the call.
type GenerationRequest struct {
	Prompt string     `json:"prompt"`
	Images []ImageRef `json:"images,omitempty"`
	Async  bool       `json:"async"`
}

// ImageRef points at an editor-selected image. URL must resolve to either
// a remote resource or a file under the configured upload root; anything
// else is skipped when the provider request is built.
type ImageRef struct {
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
	Title    string `json:"title,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Usage mirrors the provider's token accounting block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult is the terminal outcome of one generation, whether it
// ran inline or inside a job.
type GenerationResult struct {
	Success      bool   `json:"success"`
	Code         string `json:"code,omitempty"`
	ModelUsed    string `json:"model_used,omitempty"`
	APIFamily    string `json:"api,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}
