package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBuildAborted is returned when the build function panicked.
var ErrBuildAborted = errors.New("index build aborted")

type BuildFunc func(ctx context.Context) (*Index, error)

// Cache runs its build function at most once per process. Concurrent first
// callers wait for that build and every caller sees the same result.
type Cache struct {
	build BuildFunc
	once  sync.Once
	idx   *Index
	err   error
}

func NewCache(build BuildFunc) *Cache {
	return &Cache{build: build}
}

func (c *Cache) Get(ctx context.Context) (*Index, error) {
	c.once.Do(func() {
		c.err = ErrBuildAborted
		defer func() {
			if r := recover(); r != nil {
				c.idx, c.err = nil, fmt.Errorf("%w: %v", ErrBuildAborted, r)
			}
		}()
		c.idx, c.err = c.build(ctx)
	})
	return c.idx, c.err
}
