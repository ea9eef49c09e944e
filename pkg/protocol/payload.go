package protocol

// Ack 请求应答
type Ack struct {
	Result int32  `json:"result"`
	Reason string `json:"reason,omitempty"`
}

// UserInfo 房间玩家信息
type UserInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Table     int32  `json:"table"`
	Seat      int32  `json:"seat"`
	Status    int32  `json:"status"`
	WinCount  int32  `json:"winCount"`
	TieCount  int32  `json:"tieCount"`
	LoseCount int32  `json:"loseCount"`
	Scores    int64  `json:"scores"`
}

// EnterRsp 进入房间应答，进场广播复用同一份包体，
// YourID 为本次进场玩家的 ID（应答里即请求者自己）
type EnterRsp struct {
	Users  []UserInfo `json:"users"`
	YourID int64      `json:"yourId,omitempty"`
}

// SitDownReq 坐下请求，Seat 为 -1 时旁观
type SitDownReq struct {
	Table int32 `json:"table"`
	Seat  int32 `json:"seat"`
}

// SeatPush 座位变更广播
type SeatPush struct {
	ID     int64 `json:"id"`
	Table  int32 `json:"table"`
	Seat   int32 `json:"seat"`
	Status int32 `json:"status"`
}

// ChatReq 房间聊天
type ChatReq struct {
	Content string `json:"content"`
}

// ChatPush 聊天广播
type ChatPush struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// ForcedStandUpPush 玩家被强制站起（断线）
type ForcedStandUpPush struct {
	ID    int64 `json:"id"`
	Table int32 `json:"table"`
	Seat  int32 `json:"seat"`
}

// CardsReq 带牌请求（出牌/叫主/埋底），牌为 suit|rank 的低16位形式
type CardsReq struct {
	Cards []uint32 `json:"cards"`
}

// RefreshPush 牌桌快照，按接收者定制：
// HandCards 仅自己的座位可见明牌，UnderCards 仅埋底阶段的庄家可见
type RefreshPush struct {
	Table         int32      `json:"table"`
	State         int32      `json:"state"`
	IsGrabbing    bool       `json:"isGrabbing"`
	Trump         uint32     `json:"trump"`
	Grade         uint32     `json:"grade"`
	Grade2        uint32     `json:"grade2"`
	Banker        int32      `json:"banker"`
	Shown         int32      `json:"shown"`
	Turn          int32      `json:"turn"`
	Scores        uint32     `json:"scores"`
	Participants  []int64    `json:"participants"`
	ShowCards     []uint32   `json:"showCards"`
	BringingCards [][]uint32 `json:"bringingCards"`
	BroughtCounts []int32    `json:"broughtCounts"`
	ScoreCards    []uint32   `json:"scoreCards"`
	HandCards     [][]uint32 `json:"handCards"`
	UnderCards    []uint32   `json:"underCards"`
}
