package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RefreshTokenKey returns the cache key holding a user's active refresh token ID.
func (r *CacheKeyStruct) RefreshTokenKey(userID int) string {
	return fmt.Sprintf("user:%d:refresh", userID)
}

var CacheKey = NewCacheKeyStruct()
