package compiler

import (
	"sync"

	"github.com/achilleasa/ashtrace/asset/compiler/input"
	"github.com/achilleasa/ashtrace/asset/scene"
	"github.com/achilleasa/ashtrace/log"
)

// A Cache stores compiled scenes keyed by the digest of their sources so
// that a scene is only compiled once for the lifetime of its geometry.
// Cached scenes are shared and must be treated as read-only.
type Cache struct {
	mu      sync.Mutex
	scenes  map[uint64]*scene.Scene
	compile func(*input.Scene) (*scene.Scene, error)
	logger  log.Logger
}

// Create a cache backed by Compile.
func NewCache() *Cache {
	return &Cache{
		scenes:  make(map[uint64]*scene.Scene),
		compile: Compile,
		logger:  log.New("compile cache"),
	}
}

// Get the compiled version of a scene, compiling it on a cache miss. Scenes
// without a digest are always compiled. Errors are never cached.
func (c *Cache) Get(parsedScene *input.Scene) (*scene.Scene, error) {
	if parsedScene == nil || parsedScene.Digest == 0 {
		return c.compile(parsedScene)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sc, found := c.scenes[parsedScene.Digest]; found {
		instrumentCacheLookup(true)
		c.logger.Infof("re-using compiled scene %s (digest %016x)", sc.ID, parsedScene.Digest)
		return sc, nil
	}
	instrumentCacheLookup(false)

	sc, err := c.compile(parsedScene)
	if err != nil {
		return nil, err
	}
	c.scenes[parsedScene.Digest] = sc
	return sc, nil
}

// Get the number of cached scenes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scenes)
}

// Drop all cached scenes.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scenes = make(map[uint64]*scene.Scene)
}
