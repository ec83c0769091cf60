package internal

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// 讀取超時：writePump 每 54 秒發 Ping，60 秒收不到任何消息（含 Pong）即斷線
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second

	sendBufferSize = 256
)

// EventHandler 入站事件的處理端（由 Router 實現）
type EventHandler interface {
	HandleConnect(connID string)
	HandleMessage(connID string, raw []byte)
	HandleDisconnect(connID string)
}

// Hub WebSocket 連接中心
//
// 集中管理所有活躍連線與房間頻道的訂閱關係：
//
//	conns: connID -> Connection
//	rooms: roomID -> connID -> Connection
//
// 廣播只投遞給訂閱該房間頻道的連線；投遞寫入帶緩衝的 send channel，
// 永不阻塞呼叫端（緩衝滿時丟棄並記錄，慢客戶端不拖累整個房間）。
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	handler  EventHandler

	conns map[string]*Connection
	rooms map[string]map[string]*Connection
	mu    sync.RWMutex
}

// Connection 一條活躍的 WebSocket 連線
//
// ConnID 由服務端在升級時指派（UUID），在連線存續期間唯一且不重用，
// 是玩家選擇顯示名稱之前的身分單位。
type Connection struct {
	ID        string
	sock      *websocket.Conn
	send      chan []byte
	hub       *Hub
	closeOnce sync.Once // 確保 send channel 只關閉一次
}

// NewHub 創建 Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 在生產環境應該檢查來源
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[string]*Connection),
		rooms: make(map[string]map[string]*Connection),
	}
}

// Handle 綁定事件處理端（必須在 ServeWS 之前呼叫）
func (hub *Hub) Handle(handler EventHandler) {
	hub.handler = handler
}

// ServeWS 處理 WebSocket 升級請求
func (hub *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	sock, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("升級 WebSocket 失敗", "error", err)
		return
	}

	conn := &Connection{
		ID:   uuid.NewString(),
		sock: sock,
		send: make(chan []byte, sendBufferSize),
		hub:  hub,
	}

	hub.mu.Lock()
	hub.conns[conn.ID] = conn
	hub.mu.Unlock()
	metricConnectionsActive.Inc()

	hub.logger.Info("WebSocket 連接建立", "conn_id", conn.ID, "remote", r.RemoteAddr)

	go conn.writePump()
	hub.handler.HandleConnect(conn.ID)
	go conn.readPump()
}

// SendTo 發送消息給單一連線
func (hub *Hub) SendTo(connID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		hub.logger.Error("序列化消息失敗", "event", msg.Event, "error", err)
		return
	}

	// enqueue 必須在讀鎖內完成：關閉 send channel 的一方持有寫鎖，
	// 兩者互斥後不可能對已關閉的 channel 投遞
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if conn, exists := hub.conns[connID]; exists {
		conn.enqueue(data, hub.logger)
	}
}

// Broadcast 廣播消息給房間頻道的所有訂閱者
func (hub *Hub) Broadcast(roomID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		hub.logger.Error("序列化消息失敗", "event", msg.Event, "error", err)
		return
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for _, conn := range hub.rooms[roomID] {
		conn.enqueue(data, hub.logger)
	}
	metricBroadcastsTotal.Inc()
}

// Subscribe 將連線訂閱到房間頻道
func (hub *Hub) Subscribe(roomID, connID string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	conn, exists := hub.conns[connID]
	if !exists {
		return
	}
	if hub.rooms[roomID] == nil {
		hub.rooms[roomID] = make(map[string]*Connection)
	}
	hub.rooms[roomID][connID] = conn
}

// CloseRoom 拆除房間頻道
//
// 只移除訂閱關係，連線本身保持存活（對應房間解散後
// 客戶端回到未綁定狀態）。
func (hub *Hub) CloseRoom(roomID string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.rooms, roomID)
}

// unregister 移除連線與其所有訂閱
func (hub *Hub) unregister(conn *Connection) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if actual, exists := hub.conns[conn.ID]; !exists || actual != conn {
		return
	}
	delete(hub.conns, conn.ID)
	metricConnectionsActive.Dec()

	for roomID, subs := range hub.rooms {
		if _, subscribed := subs[conn.ID]; subscribed {
			delete(subs, conn.ID)
			if len(subs) == 0 {
				delete(hub.rooms, roomID)
			}
		}
	}

	conn.closeOnce.Do(func() {
		close(conn.send)
	})
}

// ConnectionCount 活躍連線數
func (hub *Hub) ConnectionCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.conns)
}

// RoomSubscriberCounts 各房間頻道的訂閱數
func (hub *Hub) RoomSubscriberCounts() map[string]int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	result := make(map[string]int, len(hub.rooms))
	for roomID, subs := range hub.rooms {
		result[roomID] = len(subs)
	}
	return result
}

// Stop 關閉所有連線
func (hub *Hub) Stop() {
	hub.mu.Lock()
	for _, conn := range hub.conns {
		conn.closeOnce.Do(func() {
			close(conn.send)
		})
		conn.sock.Close()
	}
	hub.conns = make(map[string]*Connection)
	hub.rooms = make(map[string]map[string]*Connection)
	hub.mu.Unlock()

	hub.logger.Info("WebSocket Hub 已停止")
}

// enqueue 非阻塞投遞到連線的發送緩衝
func (c *Connection) enqueue(data []byte, logger *slog.Logger) {
	select {
	case c.send <- data:
	default:
		logger.Warn("連接發送緩衝已滿，丟棄消息", "conn_id", c.ID)
	}
}

// readPump 讀取客戶端消息
//
// 連線的事件就在這條 goroutine 上處理到完成（驗證 → 變更 → 廣播），
// 沒有中途掛起點；讀取錯誤或超時即視為斷線，
// 先從 Hub 註銷再交給 Router 處理斷線語義。
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.hub.handler.HandleDisconnect(c.ID)
		c.sock.Close()
	}()

	if err := c.sock.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.hub.logger.Error("設置讀取期限失敗", "error", err)
	}
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Error("WebSocket 讀取錯誤", "conn_id", c.ID, "error", err)
			}
			break
		}
		if messageType == websocket.TextMessage {
			c.hub.handler.HandleMessage(c.ID, message)
		}
	}
}

// writePump 寫入消息到客戶端，並定期發送 Ping（54 秒，避開常見的 60 秒代理超時）
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sock.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.hub.logger.Error("設置寫入期限失敗", "error", err)
			}
			if !ok {
				// Hub 關閉了通道，優雅關閉連接
				_ = c.sock.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.sock.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// 批量發送隊列中的消息
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.sock.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.hub.logger.Error("設置寫入期限失敗", "error", err)
			}
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
