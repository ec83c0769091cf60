package internal_test

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/koopa0/system-design/14-realtime-presence/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStore_Create 測試創建房間
func TestStore_Create(t *testing.T) {
	store := internal.NewStore(testLogger())

	state := store.Create("塗鴉之夜", "conn_host", "小明")

	assert.Len(t, state.RoomID, 6)
	assert.Equal(t, []string{"小明"}, state.Members)
	assert.Equal(t, "小明", state.HostUsername)
	assert.Equal(t, 1, store.Len())

	room, exists := store.Get(state.RoomID)
	require.True(t, exists)
	assert.Equal(t, "conn_host", room.HostConnID)
	assert.Equal(t, "塗鴉之夜", room.Title)
}

// TestStore_CreateRegeneratesOnCollision 代碼碰撞時重新生成
func TestStore_CreateRegeneratesOnCollision(t *testing.T) {
	// 注入一個會重複產出 "AAAAAA" 的生成序列
	codes := []string{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}
	i := 0
	store := internal.NewStoreWithGenerator(testLogger(), func() string {
		code := codes[i]
		i++
		return code
	})

	first := store.Create("房間一", "conn_1", "小明")
	second := store.Create("房間二", "conn_2", "小華")

	assert.Equal(t, "AAAAAA", first.RoomID)
	assert.Equal(t, "BBBBBB", second.RoomID)
	assert.Equal(t, 2, store.Len())

	// 第一個房間沒有被覆蓋（無靜默合併）
	room, exists := store.Get("AAAAAA")
	require.True(t, exists)
	assert.Equal(t, "conn_1", room.HostConnID)
}

// TestStore_Get 測試查詢（代碼不分大小寫）
func TestStore_Get(t *testing.T) {
	store := internal.NewStore(testLogger())
	state := store.Create("測試房間", "conn_1", "小明")

	tests := []struct {
		name   string
		code   string
		exists bool
	}{
		{name: "exact code", code: state.RoomID, exists: true},
		{name: "lowercase code", code: "zzzzzz", exists: false},
		{name: "unknown code", code: "ZZZZZZ", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, exists := store.Get(tt.code)
			assert.Equal(t, tt.exists, exists)
		})
	}

	// 小寫輸入命中大寫儲存的代碼
	_, exists := store.Get(strings.ToLower(state.RoomID))
	assert.True(t, exists)
}

// TestStore_AddMember 測試加入成員
func TestStore_AddMember(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(store *internal.Store) string // 返回要加入的代碼
		member   string
		wantErr  error
		validate func(t *testing.T, store *internal.Store, state internal.RoomState)
	}{
		{
			name: "join existing room",
			setup: func(store *internal.Store) string {
				return store.Create("測試房間", "conn_1", "小明").RoomID
			},
			member: "小華",
			validate: func(t *testing.T, store *internal.Store, state internal.RoomState) {
				assert.Equal(t, []string{"小明", "小華"}, state.Members)
			},
		},
		{
			name: "unknown code never creates a room",
			setup: func(store *internal.Store) string {
				return "ZZZZZZ"
			},
			member:  "小剛",
			wantErr: internal.ErrRoomNotFound,
			validate: func(t *testing.T, store *internal.Store, state internal.RoomState) {
				assert.Equal(t, 0, store.Len())
			},
		},
		{
			name: "full room rejects without mutation",
			setup: func(store *internal.Store) string {
				roomID := store.Create("測試房間", "conn_1", "小明").RoomID
				for i := 1; i < internal.MaxRoomSize; i++ {
					_, err := store.AddMember(roomID, fmt.Sprintf("玩家%d", i))
					require.NoError(t, err)
				}
				return roomID
			},
			member:  "遲到者",
			wantErr: internal.ErrRoomFull,
			validate: func(t *testing.T, store *internal.Store, state internal.RoomState) {
				assert.Equal(t, 1, store.Len())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := internal.NewStore(testLogger())
			code := tt.setup(store)

			state, err := store.AddMember(code, tt.member)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			tt.validate(t, store, state)
		})
	}
}

// TestStore_RemoveMember 測試移除成員與原子刪除
func TestStore_RemoveMember(t *testing.T) {
	store := internal.NewStore(testLogger())
	roomID := store.Create("測試房間", "conn_1", "小明").RoomID
	_, err := store.AddMember(roomID, "小華")
	require.NoError(t, err)

	// 仍有成員：返回更新後的快照
	state, deleted, err := store.RemoveMember(roomID, "小華")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []string{"小明"}, state.Members)

	// 清空即刪除，同一操作內完成
	_, deleted, err = store.RemoveMember(roomID, "小明")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, store.Len())

	// 已刪除的房間不可再操作
	_, _, err = store.RemoveMember(roomID, "小明")
	assert.ErrorIs(t, err, internal.ErrRoomNotFound)
}

// TestStore_Delete 測試整房刪除（房主斷線路徑）
func TestStore_Delete(t *testing.T) {
	store := internal.NewStore(testLogger())
	roomID := store.Create("測試房間", "conn_1", "小明").RoomID
	_, err := store.AddMember(roomID, "小華")
	require.NoError(t, err)

	// 不論剩餘成員數，一律刪除
	assert.True(t, store.Delete(roomID))
	assert.Equal(t, 0, store.Len())

	_, exists := store.Get(roomID)
	assert.False(t, exists)

	// 重複刪除無效
	assert.False(t, store.Delete(roomID))
}

// TestStore_Stats 測試統計
func TestStore_Stats(t *testing.T) {
	store := internal.NewStore(testLogger())
	roomID := store.Create("測試房間", "conn_1", "小明").RoomID
	_, err := store.AddMember(roomID, "小華")
	require.NoError(t, err)
	store.Create("第二房間", "conn_2", "小美")

	stats := store.Stats()
	assert.Equal(t, 2, stats["total_rooms"])
	assert.Equal(t, 3, stats["total_members"])
}
