package model

// Classification is the backend's judgment of whether a task is large
type Classification struct {
	IsLarge bool   `json:"isLarge"`
	Reason  string `json:"reason"`
}

// ShouldMeme reports whether a meme is worth generating for the classified
// task. It is evaluated strictly before the meme request is issued.
func (c Classification) ShouldMeme() bool {
	return c.IsLarge
}

// Meme is a generated image for a large task
type Meme struct {
	ImageURL string `json:"imageUrl"`
	// Prompt is the image generation prompt produced by the text model
	Prompt string `json:"-"`
}

// CheerResult is the outcome of the classify-then-meme pipeline
type CheerResult struct {
	Classification Classification
	Meme           *Meme // nil unless the task is large and generation succeeded
	MemeErr        error
}
