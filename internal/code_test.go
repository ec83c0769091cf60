package internal_test

import (
	"testing"

	"github.com/koopa0/system-design/14-realtime-presence/internal"
	"github.com/stretchr/testify/assert"
)

// TestGenerateCode 測試房間代碼格式
func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code := internal.GenerateCode()

		assert.Len(t, code, 6)
		for _, ch := range code {
			assert.Contains(t, "0123456789ABCDEF", string(ch),
				"代碼字元必須是大寫十六進位: %s", code)
		}
		seen[code] = true
	}

	// 100 次生成不應該全部相同（碰撞機率極低）
	assert.Greater(t, len(seen), 1)
}
