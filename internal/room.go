package internal

import "time"

// Room 房間
//
// 不變量：
//   - 成員數不超過 MaxRoomSize（8）
//   - 成員集合為空的房間不存在（清空與刪除在同一操作內完成）
//   - 房主權限綁定創建連線，不可轉移；房主斷線即解散整個房間
//   - 同一代碼同時只有一個房間
//
// ID、Title、HostConnID、HostName 在房間存續期間不變，可在任意 goroutine
// 讀取；members 只能透過 Store 的方法變更（由 Store 的鎖保護）。
type Room struct {
	ID         string // 大寫房間代碼
	Title      string
	HostConnID string // 創建房間的連線
	HostName   string
	CreatedAt  time.Time

	members []string // 顯示名稱集合，保留加入順序
}

// NewRoom 創建房間，成員集合以房主的顯示名稱為初始內容
func NewRoom(id, title, hostConnID, hostName string) *Room {
	return &Room{
		ID:         id,
		Title:      title,
		HostConnID: hostConnID,
		HostName:   hostName,
		CreatedAt:  time.Now(),
		members:    []string{hostName},
	}
}

// AddMember 加入成員
//
// 滿員一律拒絕，先於任何其他判斷；未滿時同名成員重複加入
// 視為冪等操作（集合以名稱去重，不以連線去重）。
func (r *Room) AddMember(name string) error {
	if len(r.members) >= MaxRoomSize {
		return ErrRoomFull
	}
	for _, m := range r.members {
		if m == name {
			return nil
		}
	}
	r.members = append(r.members, name)
	return nil
}

// RemoveMember 移除成員，返回移除後集合是否為空
func (r *Room) RemoveMember(name string) (empty bool) {
	for i, m := range r.members {
		if m == name {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	return len(r.members) == 0
}

// HasMember 成員是否在房間內
func (r *Room) HasMember(name string) bool {
	for _, m := range r.members {
		if m == name {
			return true
		}
	}
	return false
}

// MemberCount 成員數量
func (r *Room) MemberCount() int {
	return len(r.members)
}

// Snapshot 取得房間狀態快照（成員列表為複本，依加入順序排列）
func (r *Room) Snapshot() RoomState {
	members := make([]string, len(r.members))
	copy(members, r.members)
	return RoomState{
		RoomID:       r.ID,
		Members:      members,
		HostUsername: r.HostName,
	}
}
