package player

import (
	"fmt"
	"sync"
)

// Session 玩家的网络会话，由接入层实现
type Session interface {
	ID() string
	RemoteIP() string
	RemotePort() int
	Deliver(data []byte) bool // 非阻塞投递，队列满返回 false
	Close()
}

// Status 玩家状态
type Status int32

const (
	StFree    Status = iota // 空闲
	StHandsUp               // 已准备
	StPlaying               // 游戏中
)

var statusNames = map[Status]string{
	StFree:    "Free",
	StHandsUp: "HandsUp",
	StPlaying: "Playing",
}

func (s Status) String() string { return statusNames[s] }

// Player 房间内的一个玩家。
// 座位与战绩会被牌桌的定时器协程和房间的收发协程同时读写，由 mu 保护
type Player struct {
	id      int64
	name    string
	session Session

	mu     sync.Mutex
	table  int32 // 所在桌号，-1 表示未入桌
	seat   int32 // 座位号，-1 表示未坐下（旁观或游走）
	status Status

	winCount  int32
	tieCount  int32
	loseCount int32
	scores    int64 // 累计捡分
}

func New(id int64, session Session) *Player {
	return &Player{
		id:      id,
		name:    fmt.Sprintf("%s:%d", session.RemoteIP(), session.RemotePort()),
		session: session,
		table:   -1,
		seat:    -1,
		status:  StFree,
	}
}

func (p *Player) ID() int64        { return p.id }
func (p *Player) Name() string     { return p.name }
func (p *Player) Session() Session { return p.session }

func (p *Player) Table() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table
}

func (p *Player) Seat() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seat
}

func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Player) SetSeat(table, seat int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table = table
	p.seat = seat
}

func (p *Player) ClearSeat() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table = -1
	p.seat = -1
	p.status = StFree
}

func (p *Player) SetStatus(s Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = s
}

// OnTable 是否坐在某张桌子上
func (p *Player) OnTable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table >= 0 && p.seat >= 0
}

// Watching 是否在旁观（入桌但没有座位）
func (p *Player) Watching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table >= 0 && p.seat < 0
}

func (p *Player) WinCount() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.winCount
}

func (p *Player) TieCount() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tieCount
}

func (p *Player) LoseCount() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loseCount
}

func (p *Player) Scores() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scores
}

func (p *Player) AddWin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.winCount++
}

func (p *Player) AddTie() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tieCount++
}

func (p *Player) AddLose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loseCount++
}

func (p *Player) AddScores(v int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scores += v
}

// Push 向玩家推送一个已编码的包
func (p *Player) Push(frame []byte) bool {
	if p.session == nil {
		return false
	}
	return p.session.Deliver(frame)
}

func (p *Player) Desc() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("id:%d seat:%d/%d status:%s", p.id, p.table, p.seat, p.status)
}
