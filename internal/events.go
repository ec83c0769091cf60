package internal

import "encoding/json"

// 事件協議定義
//
// 連線建立後，客戶端與協調器之間的所有通訊都透過 JSON 信封進行：
//
//	{"event": "...", "data": {...}}
//
// 客戶端 → 協調器：createRoom / joinRoom / startGame
// 協調器 → 客戶端：welcome / roomCreated / joinedRoom / roomUpdated /
// gameStarted / roomFull / roomNotFound / validationFailed / hostAuthorityRequired
//
// 除了標註「廣播」的事件外，所有回應只發給發起請求的連線。

// MaxRoomSize 單一房間的成員上限
const MaxRoomSize = 8

// 客戶端事件
const (
	EventCreateRoom = "createRoom"
	EventJoinRoom   = "joinRoom"
	EventStartGame  = "startGame"
)

// 服務器事件
const (
	EventWelcome               = "welcome"
	EventRoomCreated           = "roomCreated"
	EventJoinedRoom            = "joinedRoom"
	EventRoomUpdated           = "roomUpdated" // 廣播
	EventGameStarted           = "gameStarted" // 廣播
	EventRoomFull              = "roomFull"
	EventRoomNotFound          = "roomNotFound"
	EventValidationFailed      = "validationFailed"
	EventHostAuthorityRequired = "hostAuthorityRequired"
)

// Envelope 入站消息信封（data 延遲解碼，依 event 決定 payload 型別）
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Message 出站消息信封
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// CreateRoomPayload createRoom 請求
type CreateRoomPayload struct {
	Username  string `json:"username"`
	RoomTitle string `json:"roomTitle"`
}

// JoinRoomPayload joinRoom 請求
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// StartGamePayload startGame 請求
type StartGamePayload struct {
	RoomID string `json:"roomId"`
}

// WelcomePayload 連線建立時發送一次
type WelcomePayload struct {
	Message string `json:"message"`
}

// RoomCreatedPayload roomCreated 回應
type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

// JoinedRoomPayload joinedRoom 回應
type JoinedRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// RoomState 房間狀態快照（roomUpdated 廣播的唯一內容）
//
// 客戶端只能根據最新收到的快照渲染成員列表，
// 成員順序為加入順序，對同一成員集合必定穩定。
type RoomState struct {
	RoomID       string   `json:"roomId"`
	Members      []string `json:"members"`
	HostUsername string   `json:"hostUsername"`
}

// GameStartedPayload gameStarted 廣播
type GameStartedPayload struct {
	RoomID string `json:"roomId"`
}

// RoomErrorPayload roomFull / roomNotFound / hostAuthorityRequired 回應
type RoomErrorPayload struct {
	RoomID string `json:"roomId"`
}

// ValidationFailedPayload validationFailed 回應
type ValidationFailedPayload struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
