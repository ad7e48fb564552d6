package opengl

import (
	"fmt"

	"StoneEngine/internal/image"
	"StoneEngine/internal/logger"
	"StoneEngine/internal/scene"

	"go.uber.org/zap"
)

// TextureStats provides debugging and profiling information.
type TextureStats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	TotalMemoryMB  float64
	ActiveTextures int
}

// textureKey dedups file images by path. In-memory images only share a
// texture when they are the same source, since names need not be unique.
type textureKey struct {
	path     string
	memory   *image.Source
	channels image.Channel
	params   TextureParams
}

// TextureCache shares GL textures between texture entities sampling the same
// image the same way. Every Acquire must be paired with a Release.
type TextureCache struct {
	driver          Driver
	textureCache    map[textureKey]uint32
	textureRefCount map[uint32]int
	textureKeys     map[uint32]textureKey
	textureBytes    map[uint32]int
	stats           TextureStats
}

func NewTextureCache(driver Driver) *TextureCache {
	return &TextureCache{
		driver:          driver,
		textureCache:    make(map[textureKey]uint32),
		textureRefCount: make(map[uint32]int),
		textureKeys:     make(map[uint32]textureKey),
		textureBytes:    make(map[uint32]int),
	}
}

// Acquire returns the GL texture for source sampled with params, uploading it
// on a cache miss. The reference count of the texture is incremented.
func (tc *TextureCache) Acquire(source *image.Source, params TextureParams) (uint32, error) {
	key := textureKey{path: source.Path(), channels: source.Channels(), params: params}
	if source.InMemory() {
		key.memory = source
	}
	if textureID, exists := tc.textureCache[key]; exists {
		tc.textureRefCount[textureID]++
		tc.stats.CacheHits++

		logger.Log.Debug("Texture cache hit",
			zap.String("path", key.path),
			zap.Uint32("textureID", textureID),
			zap.Int("refCount", tc.textureRefCount[textureID]))
		return textureID, nil
	}

	tc.stats.CacheMisses++
	data, err := source.LoadedImage(true)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", scene.ErrResourceCreation, err)
	}
	if data == nil || data.Size().Empty() {
		return 0, fmt.Errorf("%w: image %s has no pixels", scene.ErrResourceCreation, key.path)
	}

	textureID, err := tc.driver.CreateTexture(data, params)
	if err != nil {
		return 0, fmt.Errorf("%w: upload %s: %v", scene.ErrResourceCreation, key.path, err)
	}

	tc.textureCache[key] = textureID
	tc.textureRefCount[textureID] = 1
	tc.textureKeys[textureID] = key
	tc.textureBytes[textureID] = data.ByteLen()
	tc.stats.TotalTextures++
	tc.stats.ActiveTextures++

	logger.Log.Info("Texture loaded and cached",
		zap.String("path", key.path),
		zap.Uint32("textureID", textureID),
		zap.Int("width", data.Size().Width),
		zap.Int("height", data.Size().Height))
	return textureID, nil
}

// Release decrements the reference count and deletes the texture when it
// reaches zero.
func (tc *TextureCache) Release(textureID uint32) {
	if textureID == 0 {
		return
	}
	refCount, exists := tc.textureRefCount[textureID]
	if !exists {
		logger.Log.Warn("Attempted to release unknown texture",
			zap.Uint32("textureID", textureID))
		return
	}

	refCount--
	tc.textureRefCount[textureID] = refCount
	if refCount > 0 {
		return
	}
	tc.forget(textureID)
	logger.Log.Debug("Texture freed", zap.Uint32("textureID", textureID))
}

func (tc *TextureCache) forget(textureID uint32) {
	tc.driver.DeleteTexture(textureID)
	delete(tc.textureCache, tc.textureKeys[textureID])
	delete(tc.textureRefCount, textureID)
	delete(tc.textureKeys, textureID)
	delete(tc.textureBytes, textureID)
	tc.stats.ActiveTextures--
}

// RefCount returns the current reference count of a texture.
func (tc *TextureCache) RefCount(textureID uint32) int {
	return tc.textureRefCount[textureID]
}

// Clear deletes every cached texture regardless of reference counts.
func (tc *TextureCache) Clear() {
	for textureID := range tc.textureRefCount {
		tc.forget(textureID)
	}
}

func (tc *TextureCache) GetStats() TextureStats {
	stats := tc.stats
	total := 0
	for _, n := range tc.textureBytes {
		total += n
	}
	stats.TotalMemoryMB = float64(total) / (1024 * 1024)
	return stats
}

func (tc *TextureCache) LogStats() {
	stats := tc.GetStats()
	logger.Log.Info("Texture cache stats",
		zap.Int("totalTextures", stats.TotalTextures),
		zap.Int("activeTextures", stats.ActiveTextures),
		zap.Int("cacheHits", stats.CacheHits),
		zap.Int("cacheMisses", stats.CacheMisses),
		zap.Float64("memoryMB", stats.TotalMemoryMB))
}
