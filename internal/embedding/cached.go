package embedding

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/jonathan/applyease/internal/similarity"
)

// Store persists embeddings by cache key.
type Store interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Put(ctx context.Context, key string, vec []float32) error
}

// DefaultCacheSize is the number of embeddings kept in memory when none is configured.
// At 384 dimensions that is about 3 MB.
const DefaultCacheSize = 2048

// CacheOptions configure Cached.
type CacheOptions struct {
	// Size caps the in-memory entries; least recently used ones are evicted first.
	Size   int
	Logger *zap.Logger
}

// Cached memoizes an embedder in a bounded in-memory LRU and, when a Store is set,
// across restarts. Store failures are logged and never fail an embedding call.
type Cached struct {
	next   similarity.Embedder
	model  string
	store  Store
	mem    *lru.Cache[string, []float32]
	logger *zap.Logger
}

// NewCached wraps next. model is part of every cache key.
func NewCached(next similarity.Embedder, model string, store Store, opts CacheOptions) *Cached {
	size := opts.Size
	if size <= 0 {
		size = DefaultCacheSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	// lru.New only fails for a non-positive size
	mem, _ := lru.New[string, []float32](size)
	return &Cached{
		next:   next,
		model:  model,
		store:  store,
		mem:    mem,
		logger: logger.With(zap.String("component", "embedding_cache"), zap.String("model", model)),
	}
}

// Embed returns a cached embedding of text, computing it on a miss.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.model, text)
	if vec, ok := c.mem.Get(key); ok {
		return cloneVector(vec), nil
	}
	if c.store != nil {
		vec, ok, err := c.store.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn("embedding cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			c.mem.Add(key, cloneVector(vec))
			return cloneVector(vec), nil
		}
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.mem.Add(key, cloneVector(vec))
	if c.store != nil {
		if err := c.store.Put(ctx, key, vec); err != nil {
			c.logger.Warn("embedding cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return cloneVector(vec), nil
}

// Len returns the number of in-memory entries.
func (c *Cached) Len() int {
	return c.mem.Len()
}

// CacheKey derives the cache key for text embedded by model.
func CacheKey(model, text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, model)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

// EncodeVector serializes vec as a little-endian length prefix followed by float32 bits.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	return buf
}

// DecodeVector parses the output of EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("encoded vector too small: %d bytes", len(data))
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, fmt.Errorf("encoded vector length mismatch: header %d, payload %d bytes", length, len(data))
	}
	vec := make([]float32, length)
	for i := 0; i < length; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
