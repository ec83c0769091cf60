package internal

import (
	"strings"

	"github.com/google/uuid"
)

// codeLength 房間代碼長度（6 個字元，方便人工抄寫與口述）
const codeLength = 6

// GenerateCode 生成簡短的房間代碼
//
// 從隨機 128-bit 來源（UUID v4）截取前 6 個十六進位字元並轉為大寫。
// 生成本身不做唯一性檢查，Store.Create 會在註冊前重新生成直到不碰撞。
func GenerateCode() string {
	return strings.ToUpper(uuid.NewString()[:codeLength])
}
