package analysis

// Chunk is a contiguous window of document text plus its start offset in the
// original extracted text. Chunks are derived and never persisted.
type Chunk struct {
	Text  string
	Start int
}

// ChunkConfig controls windowing of extracted text before analysis.
type ChunkConfig struct {
	// WindowSize is the character budget per chunk.
	WindowSize int
	// Overlap is how many characters consecutive windows share, preserving
	// clause continuity across boundaries.
	Overlap int
}

// DefaultChunkConfig provides sane defaults for contract analysis.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		WindowSize: 12000,
		Overlap:    400,
	}
}

// Split windows text into overlapping chunks covering [0, len(text)) with no
// gaps. Each window after the first starts at the previous end minus Overlap.
// Only the last chunk may be shorter than WindowSize. Empty text yields no
// chunks.
func Split(text string, cfg ChunkConfig) []Chunk {
	if text == "" {
		return nil
	}
	if cfg.WindowSize <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap >= cfg.WindowSize {
		cfg.Overlap = cfg.WindowSize - 1
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}

	if len(text) <= cfg.WindowSize {
		return []Chunk{{Text: text, Start: 0}}
	}

	chunks := make([]Chunk, 0, len(text)/(cfg.WindowSize-cfg.Overlap)+1)
	start := 0
	for start < len(text) {
		end := start + cfg.WindowSize
		if end > len(text) {
			end = len(text)
		}

		chunks = append(chunks, Chunk{Text: text[start:end], Start: start})
		if end == len(text) {
			break
		}

		start = end - cfg.Overlap
		if start < 0 {
			start = 0
		}
	}

	return chunks
}
