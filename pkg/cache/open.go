package cache

import (
	"context"
	"fmt"
	"strings"
)

// Open returns the cache for a location:
//
//	""  or "none"                 NullCache
//	redis://host:6379/0           RedisCache
//	mongodb://host:27017/db       MongoCache
//	any other string              FileCache rooted at that directory
func Open(ctx context.Context, location string) (Cache, error) {
	switch {
	case location == "" || location == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		c, err := NewRedisCache(ctx, location)
		if err != nil {
			return nil, err
		}
		return c, nil
	case strings.HasPrefix(location, "mongodb://"), strings.HasPrefix(location, "mongodb+srv://"):
		c, err := NewMongoCache(ctx, MongoConfig{URI: location})
		if err != nil {
			return nil, err
		}
		return c, nil
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, location)
	}
	c, err := NewFileCache(location)
	if err != nil {
		return nil, err
	}
	return c, nil
}
