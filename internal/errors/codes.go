package errors

// Error codes. Stable identifiers: logged, matched in tests, and shown in
// CLI output.
const (
	// Index artifacts
	CodeIndexNotFound = "INDEX_NOT_FOUND"
	CodeCorruptIndex  = "CORRUPT_INDEX"
	CodeIndexWrite    = "INDEX_WRITE_FAILED"

	// Embedding provider
	CodeEmbeddingAuth      = "EMBEDDING_AUTH"
	CodeEmbeddingRateLimit = "EMBEDDING_RATE_LIMIT"
	CodeEmbeddingServer    = "EMBEDDING_SERVER"
	CodeEmbeddingParse     = "EMBEDDING_PARSE"
	CodeEmbeddingRequest   = "EMBEDDING_REQUEST"

	// Configuration
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeConfigExists  = "CONFIG_EXISTS"

	// Build orchestration
	CodeBuildLocked = "BUILD_LOCKED"
	CodeLoaderParse = "LOADER_PARSE"
)
