package internal

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// 錯誤分類：所有失敗只回報給發起請求的連線，永遠不廣播
var (
	ErrRoomNotFound = errors.New("房間不存在")
	ErrRoomFull     = errors.New("房間已滿")
)

// Store 活躍房間的唯一權威表
//
// 以單一讀寫鎖保護整張表，所有變更操作在持鎖期間完成
// 「變更 + 取快照」，外部觀察不到中間狀態（例如空房間）。
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*Room // 大寫代碼 -> Room
	generate func() string    // 代碼生成（測試可注入）
	logger   *slog.Logger
}

// NewStore 創建房間表
func NewStore(logger *slog.Logger) *Store {
	return NewStoreWithGenerator(logger, GenerateCode)
}

// NewStoreWithGenerator 以自訂代碼生成函數創建房間表（測試注入碰撞序列用）
func NewStoreWithGenerator(logger *slog.Logger, generate func() string) *Store {
	return &Store{
		rooms:    make(map[string]*Room),
		generate: generate,
		logger:   logger,
	}
}

// Create 創建房間並註冊
//
// 代碼重新生成直到與現存房間不碰撞，成員集合以房主顯示名稱為初始內容。
func (s *Store) Create(title, hostConnID, hostName string) RoomState {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.generate()
	for _, exists := s.rooms[code]; exists; _, exists = s.rooms[code] {
		code = s.generate()
	}

	room := NewRoom(code, title, hostConnID, hostName)
	s.rooms[code] = room
	metricRoomsActive.Inc()

	s.logger.Info("房間已創建",
		"room_id", code,
		"title", title,
		"host", hostName)

	return room.Snapshot()
}

// Get 查詢房間（代碼不分大小寫，儲存時一律大寫）
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[strings.ToUpper(code)]
	return room, exists
}

// AddMember 加入成員
//
// 代碼未知返回 ErrRoomNotFound，滿員返回 ErrRoomFull，
// 同名成員重複加入冪等成功；成功時返回更新後的快照。
func (s *Store) AddMember(code, name string) (RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[strings.ToUpper(code)]
	if !exists {
		return RoomState{}, ErrRoomNotFound
	}
	if err := room.AddMember(name); err != nil {
		return RoomState{}, err
	}

	s.logger.Info("成員加入房間",
		"room_id", room.ID,
		"member", name,
		"members", room.MemberCount())

	return room.Snapshot(), nil
}

// RemoveMember 移除成員
//
// 移除後集合為空時，房間在同一操作內刪除（deleted 為 true，
// 快照無意義）；房間代碼未知返回 ErrRoomNotFound。
func (s *Store) RemoveMember(code, name string) (RoomState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	upper := strings.ToUpper(code)
	room, exists := s.rooms[upper]
	if !exists {
		return RoomState{}, false, ErrRoomNotFound
	}

	if empty := room.RemoveMember(name); empty {
		delete(s.rooms, upper)
		metricRoomsActive.Dec()
		s.logger.Info("房間已清空並刪除", "room_id", room.ID)
		return RoomState{}, true, nil
	}

	s.logger.Info("成員離開房間",
		"room_id", room.ID,
		"member", name,
		"members", room.MemberCount())

	return room.Snapshot(), false, nil
}

// Delete 刪除房間（房主斷線路徑：不論剩餘成員數，整個房間解散）
func (s *Store) Delete(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	upper := strings.ToUpper(code)
	if _, exists := s.rooms[upper]; !exists {
		return false
	}
	delete(s.rooms, upper)
	metricRoomsActive.Dec()

	s.logger.Info("房間已刪除", "room_id", upper)
	return true
}

// Len 活躍房間數
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Stats 統計資訊
func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalMembers := 0
	for _, room := range s.rooms {
		totalMembers += room.MemberCount()
	}

	return map[string]any{
		"total_rooms":   len(s.rooms),
		"total_members": totalMembers,
	}
}
