package usecase_test

import (
	"context"
	"sync"

	"github.com/m-mizutani/gollem"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
	generateStreamFn  func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{"Start by writing down the first small step."},
	}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	if s.generateStreamFn != nil {
		return s.generateStreamFn(ctx, input...)
	}
	return nil, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)

	mu       sync.Mutex
	sessions int
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	c.mu.Lock()
	c.sessions++
	c.mu.Unlock()

	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func (c *mockLLMClient) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions
}

// textClient returns a client whose sessions answer with text and record the
// prompt they received
func textClient(text string, prompts *[]string) *mockLLMClient {
	var mu sync.Mutex
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					if prompts != nil {
						mu.Lock()
						for _, in := range input {
							if txt, ok := in.(gollem.Text); ok {
								*prompts = append(*prompts, string(txt))
							}
						}
						mu.Unlock()
					}
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}

// errorClient returns a client whose sessions always fail
func errorClient(err error) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return nil, err
				},
				generateStreamFn: func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
					return nil, err
				},
			}, nil
		},
	}
}

// streamClient returns a client whose sessions stream chunks
func streamClient(chunks ...string) *mockLLMClient {
	resps := make([]*gollem.Response, 0, len(chunks))
	for _, c := range chunks {
		resps = append(resps, &gollem.Response{Texts: []string{c}})
	}
	return responseStreamClient(resps...)
}

// responseStreamClient streams the given responses as they are, including
// ones that carry an Error
func responseStreamClient(resps ...*gollem.Response) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateStreamFn: func(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
					ch := make(chan *gollem.Response, len(resps))
					for _, r := range resps {
						ch <- r
					}
					close(ch)
					return ch, nil
				},
			}, nil
		},
	}
}

// fakeImageGenerator is an ImageGenerator for testing
type fakeImageGenerator struct {
	url     string
	err     error
	prompts []string
}

func (g *fakeImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}
