package internal

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// Sender 向客戶端投遞消息的能力（由 WebSocket Hub 實現）
type Sender interface {
	// SendTo 發送給單一連線
	SendTo(connID string, msg Message)
	// Broadcast 發送給訂閱該房間頻道的所有連線
	Broadcast(roomID string, msg Message)
	// Subscribe 將連線訂閱到房間頻道
	Subscribe(roomID, connID string)
	// CloseRoom 拆除房間頻道（連線本身保持存活）
	CloseRoom(roomID string)
}

// Router 事件路由器
//
// 所有入站事件的唯一入口：驗證輸入 → 變更 Store → 更新會話 → 廣播。
// 單一互斥鎖把「驗證 → 變更 → 廣播」整段序列化，同一房間上競爭的
// 事件因此觀察到一致的順序——不會丟失更新，也不會在較晚的變更提交後
// 再廣播過期的快照。臨界區內沒有任何阻塞 I/O（投遞只是寫入帶緩衝的
// channel），事件一經受理必定執行到完成。
type Router struct {
	store    *Store
	sessions *SessionRegistry
	sender   Sender
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewRouter 創建事件路由器
func NewRouter(store *Store, sessions *SessionRegistry, sender Sender, logger *slog.Logger) *Router {
	return &Router{
		store:    store,
		sessions: sessions,
		sender:   sender,
		logger:   logger,
	}
}

// HandleConnect 連線建立：創建會話並發送歡迎消息
func (rt *Router) HandleConnect(connID string) {
	rt.sessions.OnConnect(connID)
	rt.sender.SendTo(connID, Message{
		Event: EventWelcome,
		Data:  WelcomePayload{Message: "Connected to the realtime room service."},
	})
}

// HandleMessage 解析入站信封並分派
func (rt *Router) HandleMessage(connID string, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		rt.logger.Warn("解析入站消息失敗", "conn_id", connID, "error", err)
		return
	}

	metricEventsTotal.WithLabelValues(env.Event).Inc()

	switch env.Event {
	case EventCreateRoom:
		var p CreateRoomPayload
		if !rt.decode(connID, env.Data, &p) {
			return
		}
		rt.createRoom(connID, p)
	case EventJoinRoom:
		var p JoinRoomPayload
		if !rt.decode(connID, env.Data, &p) {
			return
		}
		rt.joinRoom(connID, p)
	case EventStartGame:
		var p StartGamePayload
		if !rt.decode(connID, env.Data, &p) {
			return
		}
		rt.startGame(connID, p)
	default:
		rt.logger.Debug("收到未知事件", "event", env.Event, "conn_id", connID)
	}
}

// HandleDisconnect 連線關閉
//
// 會話直接銷毀。若會話綁定了房間：房主斷線則整個房間解散（頻道拆除，
// 不再廣播），否則移除成員——集合為空時房間刪除，仍有成員時廣播新快照。
func (rt *Router) HandleDisconnect(connID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	session, ok := rt.sessions.OnDisconnect(connID)
	if !ok || session.RoomID == "" {
		return
	}

	room, exists := rt.store.Get(session.RoomID)
	if !exists {
		return
	}

	if room.HostConnID == connID {
		rt.store.Delete(room.ID)
		rt.sessions.ClearRoom(room.ID)
		rt.sender.CloseRoom(room.ID)
		rt.logger.Info("房主斷線，房間解散", "room_id", room.ID, "host", session.DisplayName)
		return
	}

	state, deleted, err := rt.store.RemoveMember(room.ID, session.DisplayName)
	if err != nil {
		return
	}
	if deleted {
		rt.sessions.ClearRoom(room.ID)
		rt.sender.CloseRoom(room.ID)
		return
	}
	rt.sender.Broadcast(room.ID, Message{Event: EventRoomUpdated, Data: state})
}

// createRoom 處理 createRoom 事件
func (rt *Router) createRoom(connID string, p CreateRoomPayload) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	username := strings.TrimSpace(p.Username)
	if username == "" {
		rt.reject(connID, "username", "顯示名稱不能為空")
		return
	}

	state := rt.store.Create(strings.TrimSpace(p.RoomTitle), connID, username)
	rt.sessions.SetIdentity(connID, username, state.RoomID)
	rt.sender.Subscribe(state.RoomID, connID)

	rt.sender.SendTo(connID, Message{Event: EventRoomCreated, Data: RoomCreatedPayload{RoomID: state.RoomID}})
	rt.sender.SendTo(connID, Message{Event: EventJoinedRoom, Data: JoinedRoomPayload{RoomID: state.RoomID, Username: username}})
	rt.sender.Broadcast(state.RoomID, Message{Event: EventRoomUpdated, Data: state})
}

// joinRoom 處理 joinRoom 事件
func (rt *Router) joinRoom(connID string, p JoinRoomPayload) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	roomID := strings.ToUpper(strings.TrimSpace(p.RoomID))
	username := strings.TrimSpace(p.Username)
	if roomID == "" {
		rt.reject(connID, "roomId", "房間代碼不能為空")
		return
	}
	if username == "" {
		rt.reject(connID, "username", "顯示名稱不能為空")
		return
	}

	state, err := rt.store.AddMember(roomID, username)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		metricRejectionsTotal.WithLabelValues("room_not_found").Inc()
		rt.sender.SendTo(connID, Message{Event: EventRoomNotFound, Data: RoomErrorPayload{RoomID: roomID}})
		return
	case errors.Is(err, ErrRoomFull):
		metricRejectionsTotal.WithLabelValues("room_full").Inc()
		rt.sender.SendTo(connID, Message{Event: EventRoomFull, Data: RoomErrorPayload{RoomID: roomID}})
		return
	case err != nil:
		rt.logger.Error("加入房間失敗", "room_id", roomID, "error", err)
		return
	}

	rt.sessions.SetIdentity(connID, username, roomID)
	rt.sender.Subscribe(roomID, connID)

	rt.sender.SendTo(connID, Message{Event: EventJoinedRoom, Data: JoinedRoomPayload{RoomID: roomID, Username: username}})
	rt.sender.Broadcast(roomID, Message{Event: EventRoomUpdated, Data: state})
}

// startGame 處理 startGame 事件
//
// 只有房主的連線可以開始遊戲；協調器本身不做任何狀態變更，
// 只向房間的所有訂閱者重新發出 gameStarted。
func (rt *Router) startGame(connID string, p StartGamePayload) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	roomID := strings.ToUpper(strings.TrimSpace(p.RoomID))
	if roomID == "" {
		rt.reject(connID, "roomId", "房間代碼不能為空")
		return
	}

	room, exists := rt.store.Get(roomID)
	if !exists {
		metricRejectionsTotal.WithLabelValues("room_not_found").Inc()
		rt.sender.SendTo(connID, Message{Event: EventRoomNotFound, Data: RoomErrorPayload{RoomID: roomID}})
		return
	}

	if room.HostConnID != connID {
		metricRejectionsTotal.WithLabelValues("host_authority_required").Inc()
		rt.sender.SendTo(connID, Message{Event: EventHostAuthorityRequired, Data: RoomErrorPayload{RoomID: roomID}})
		return
	}

	rt.sender.Broadcast(roomID, Message{Event: EventGameStarted, Data: GameStartedPayload{RoomID: roomID}})
	rt.logger.Info("遊戲開始", "room_id", roomID)
}

// decode 解碼事件 payload，失敗時回報 validationFailed
func (rt *Router) decode(connID string, raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		rt.logger.Warn("解碼事件內容失敗", "conn_id", connID, "error", err)
		rt.reject(connID, "data", "無法解析的事件內容")
		return false
	}
	return true
}

// reject 驗證失敗：明確回報給發送端（取代參考行為的靜默丟棄）
func (rt *Router) reject(connID, field, reason string) {
	metricRejectionsTotal.WithLabelValues("validation").Inc()
	rt.sender.SendTo(connID, Message{
		Event: EventValidationFailed,
		Data:  ValidationFailedPayload{Field: field, Reason: reason},
	})
}
