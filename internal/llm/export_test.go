package llm

// ResetDefault clears the process-wide client between tests.
func ResetDefault() {
	defaultMu.Lock()
	defaultClient = nil
	defaultMu.Unlock()
}

var ToGenaiSchema = toGenaiSchema
