// Package internal 實現了一個多人房間的在場協調服務。
//
// 系統設計問題：
//   如何在持久的雙向連線上協調多方臨時「房間」的生命週期與在場廣播？
//
// 核心挑戰：
//   1. 生命週期：房間在成員清空或房主斷線時立即解散，不可觀察到中間狀態
//   2. 並發控制：同一房間上競爭的事件（加入 vs 房主斷線）必須序列化
//   3. 實時同步：每次成員變動推送一份權威快照給該房間的所有訂閱者
//   4. 身分管理：連線在選擇顯示名稱之前以連線 ID 為身分單位
//
// 架構分層：
//   - Hub 層：WebSocket 連線與房間頻道訂閱（心跳、緩衝發送、廣播投遞）
//   - Router 層：入站事件的唯一入口（驗證 → 變更 → 廣播，整段序列化）
//   - Store 層：活躍房間的權威表（代碼生成、容量、原子刪除）
//   - SessionRegistry 層：連線會話簿記（顯示名稱、所在房間）
//
// 所有狀態都在進程內存中，進程重啟即丟失；沒有房間閒置過期，
// 房間的壽命嚴格等於「房主連線存活且成員集合非空」的期間。
package internal
