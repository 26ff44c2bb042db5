package cache

import "github.com/gin-gonic/gin"

const memoPrefix = "__memo:"

// Memo 在单个请求内缓存 load 的结果，同一请求中重复调用只执行一次。
func Memo[T any](c *gin.Context, key string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	if cached, exists := c.Get(memoPrefix + key); exists {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	c.Set(memoPrefix+key, value)
	return value, nil
}
