package config

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, openaiAPIKey, geminiProject, claudeAPIKey string) *LLM {
	return &LLM{
		provider:       provider,
		openaiAPIKey:   openaiAPIKey,
		geminiProject:  geminiProject,
		geminiLocation: "us-central1",
		claudeAPIKey:   claudeAPIKey,
	}
}

// NewStoreForTest creates a Store config for testing purposes
func NewStoreForTest(backend, dir, sqlitePath string) *Store {
	return &Store{
		backend:    backend,
		dir:        dir,
		sqlitePath: sqlitePath,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(path string) *App {
	return &App{path: path}
}
