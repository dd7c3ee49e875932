package nextcloud

import (
	"fmt"
	"strings"
)

// ConfigurationError 缺少连接 Nextcloud 所需的配置
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "nextcloud: missing configuration: " + strings.Join(e.Missing, ", ")
}

// NetworkError 传输失败或非 2xx 响应
type NetworkError struct {
	StatusCode int // 传输失败时为 0
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("nextcloud: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("nextcloud: request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError 响应体无法解析
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nextcloud: malformed %s payload: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
