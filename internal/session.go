package internal

import (
	"log/slog"
	"sync"
)

// Session 連線會話
//
// 每條活躍連線一筆記錄：連線建立時創建，連線關閉時直接銷毀，
// 沒有寬限期。DisplayName 與 RoomID 在成功的 create/join 後設定，
// 房間銷毀時 RoomID 清除。
type Session struct {
	ConnID      string
	DisplayName string
	RoomID      string
}

// SessionRegistry 連線會話註冊表（純簿記，無跨會話不變量）
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session // connID -> Session
	logger   *slog.Logger
}

// NewSessionRegistry 創建會話註冊表
func NewSessionRegistry(logger *slog.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// OnConnect 連線建立
func (sr *SessionRegistry) OnConnect(connID string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.sessions[connID] = &Session{ConnID: connID}
}

// OnDisconnect 連線關閉，返回會話的最後狀態
func (sr *SessionRegistry) OnDisconnect(connID string) (Session, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	session, exists := sr.sessions[connID]
	if !exists {
		return Session{}, false
	}
	delete(sr.sessions, connID)
	return *session, true
}

// SetIdentity 綁定顯示名稱與房間
func (sr *SessionRegistry) SetIdentity(connID, displayName, roomID string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	session, exists := sr.sessions[connID]
	if !exists {
		sr.logger.Warn("對不存在的會話綁定身分", "conn_id", connID)
		return
	}
	session.DisplayName = displayName
	session.RoomID = roomID
}

// Lookup 查詢會話（返回複本）
func (sr *SessionRegistry) Lookup(connID string) (Session, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	session, exists := sr.sessions[connID]
	if !exists {
		return Session{}, false
	}
	return *session, true
}

// ClearRoom 房間銷毀時清除所有綁定到該房間的會話
func (sr *SessionRegistry) ClearRoom(roomID string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	for _, session := range sr.sessions {
		if session.RoomID == roomID {
			session.RoomID = ""
		}
	}
}

// Count 活躍會話數
func (sr *SessionRegistry) Count() int {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return len(sr.sessions)
}
