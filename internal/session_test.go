package internal_test

import (
	"testing"

	"github.com/koopa0/system-design/14-realtime-presence/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionRegistry_Lifecycle 測試會話生命週期
func TestSessionRegistry_Lifecycle(t *testing.T) {
	registry := internal.NewSessionRegistry(testLogger())

	registry.OnConnect("conn_1")
	assert.Equal(t, 1, registry.Count())

	// 連線建立後身分欄位為空
	session, exists := registry.Lookup("conn_1")
	require.True(t, exists)
	assert.Empty(t, session.DisplayName)
	assert.Empty(t, session.RoomID)

	registry.SetIdentity("conn_1", "小明", "AB12CD")
	session, exists = registry.Lookup("conn_1")
	require.True(t, exists)
	assert.Equal(t, "小明", session.DisplayName)
	assert.Equal(t, "AB12CD", session.RoomID)

	// 斷線返回最後狀態並直接銷毀會話
	last, ok := registry.OnDisconnect("conn_1")
	require.True(t, ok)
	assert.Equal(t, "小明", last.DisplayName)
	assert.Equal(t, "AB12CD", last.RoomID)
	assert.Equal(t, 0, registry.Count())

	_, exists = registry.Lookup("conn_1")
	assert.False(t, exists)
}

// TestSessionRegistry_OnDisconnectUnknown 未知連線的斷線
func TestSessionRegistry_OnDisconnectUnknown(t *testing.T) {
	registry := internal.NewSessionRegistry(testLogger())

	_, ok := registry.OnDisconnect("conn_ghost")
	assert.False(t, ok)
}

// TestSessionRegistry_SetIdentityUnknown 對不存在的會話綁定身分無效
func TestSessionRegistry_SetIdentityUnknown(t *testing.T) {
	registry := internal.NewSessionRegistry(testLogger())

	registry.SetIdentity("conn_ghost", "小明", "AB12CD")
	_, exists := registry.Lookup("conn_ghost")
	assert.False(t, exists)
}

// TestSessionRegistry_ClearRoom 房間銷毀時清除綁定
func TestSessionRegistry_ClearRoom(t *testing.T) {
	registry := internal.NewSessionRegistry(testLogger())

	registry.OnConnect("conn_1")
	registry.OnConnect("conn_2")
	registry.OnConnect("conn_3")
	registry.SetIdentity("conn_1", "小明", "AB12CD")
	registry.SetIdentity("conn_2", "小華", "AB12CD")
	registry.SetIdentity("conn_3", "小美", "FFEE00")

	registry.ClearRoom("AB12CD")

	// 綁定該房間的會話被清除 RoomID，顯示名稱保留
	for _, connID := range []string{"conn_1", "conn_2"} {
		session, exists := registry.Lookup(connID)
		require.True(t, exists)
		assert.Empty(t, session.RoomID)
		assert.NotEmpty(t, session.DisplayName)
	}

	// 其他房間的會話不受影響
	session, exists := registry.Lookup("conn_3")
	require.True(t, exists)
	assert.Equal(t, "FFEE00", session.RoomID)
}
