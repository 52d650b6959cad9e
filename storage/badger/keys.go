package badger

import (
	"encoding/binary"

	"github.com/poiesic/nlqengine/core"
)

// Key prefixes for different data types
const (
	embeddingPrefix = "emb:"
)

// makeEmbeddingKey generates a key for a cached vector.
// Format: prefix:modelID:textID, both IDs BigEndian so one model's
// entries share a fixed-length prefix.
func makeEmbeddingKey(model, text string) []byte {
	buf := make([]byte, len(embeddingPrefix)+16)
	offset := copy(buf, embeddingPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(model)))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(text)))
	return buf
}

// makeModelPrefix generates the key prefix shared by one model's vectors.
func makeModelPrefix(model string) []byte {
	buf := make([]byte, len(embeddingPrefix)+8)
	offset := copy(buf, embeddingPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(model)))
	return buf
}
