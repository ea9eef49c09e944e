package room

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yola1107/kratos/v2/log"

	"github.com/longguai/game-server/internal/biz/logic"
	"github.com/longguai/game-server/internal/biz/player"
	"github.com/longguai/game-server/internal/biz/table"
	"github.com/longguai/game-server/internal/conf"
	"github.com/longguai/game-server/pkg/protocol"
	"github.com/longguai/game-server/pkg/timer"
)

// Room 整个游戏房间：玩家登记、桌子管理与命令分发
type Room struct {
	c *conf.Room

	mu        sync.Mutex
	users     map[int64]*player.Player
	bySession map[string]*player.Player
	tables    map[int32]*table.Table

	timer *timer.Engine

	baseID int64
	seq    int64
}

func New(c *conf.Room) *Room {
	r := &Room{
		c:         c,
		users:     make(map[int64]*player.Player),
		bySession: make(map[string]*player.Player),
		tables:    make(map[int32]*table.Table),
		timer:     timer.New(),
		baseID:    time.Now().Unix() * 1000,
	}
	for i := int32(1); i <= c.TableNum; i++ {
		r.tables[i] = table.NewTable(i, r.timer, c.LogDir)
	}
	return r
}

func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tables {
		t.Close()
	}
	r.timer.Stop()
}

func (r *Room) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// OnSessionOpen 新连接接入，分配玩家ID并登记
func (r *Room) OnSessionOpen(s player.Session) *player.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	p := player.New(r.baseID+r.seq, s)
	r.users[p.ID()] = p
	r.bySession[s.ID()] = p
	log.Infof("session open %s -> player %s", s.ID(), p.Desc())
	return p
}

// OnSessionClose 连接断开，离桌并注销
func (r *Room) OnSessionClose(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.bySession[sessionID]
	if !ok {
		return
	}
	delete(r.bySession, sessionID)
	delete(r.users, p.ID())
	r.removeFromTable(p)
	log.Infof("session close %s, player %s left", sessionID, p.Desc())
}

// Dispatch 处理一个完整包。返回错误表示包不合法，调用方应断开该会话
func (r *Room) Dispatch(sessionID string, frame []byte) error {
	cmd, tag, body, err := protocol.Frame(frame)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.bySession[sessionID]
	if !ok {
		return fmt.Errorf("unknown session %s", sessionID)
	}

	switch cmd {
	case protocol.CmdEnter:
		r.handleEnter(p, tag)
	case protocol.CmdSitDown:
		return r.handleSitDown(p, tag, body)
	case protocol.CmdStandUp:
		r.handleStandUp(p, tag)
	case protocol.CmdHandsUp:
		r.handleHandsUp(p, tag)
	case protocol.CmdChatInRoom:
		return r.handleChat(p, tag, body)
	default:
		if cmd >= protocol.CmdBring && cmd <= protocol.CmdDisagreeDefeat {
			t := r.tables[p.Table()]
			if t == nil {
				r.ack(p, cmd, tag, logic.IllegalPos)
				return nil
			}
			return t.Deliver(p, cmd, tag, body)
		}
		log.Warnf("unknown cmd %d from %s", cmd, p.Desc())
		r.ack(p, cmd, tag, logic.UnknownError)
	}
	return nil
}

func (r *Room) handleEnter(p *player.Player, tag uint32) {
	users := make([]protocol.UserInfo, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, userInfo(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	frame, err := protocol.Marshal(protocol.CmdEnter, tag, &protocol.EnterRsp{Users: users, YourID: p.ID()})
	if err != nil {
		log.Errorf("room encode enter: %v", err)
		return
	}
	if !p.Push(frame) {
		log.Warnf("room push enter to %s failed", p.Desc())
	}

	// 同一份包改写 tag 广播给其余人，yourId 即本次进场的玩家
	push := append([]byte(nil), frame...)
	protocol.ModifyTag(push, protocol.PushTag)
	for _, u := range r.users {
		if u != p && !u.Push(push) {
			log.Warnf("room push enter to %s failed", u.Desc())
		}
	}
}

func (r *Room) handleSitDown(p *player.Player, tag uint32, body []byte) error {
	var req protocol.SitDownReq
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("sitdown from %s: %w", p.Desc(), err)
	}

	t := r.tables[req.Table]
	if t == nil {
		r.ack(p, protocol.CmdSitDown, tag, logic.IllegalPos)
		return nil
	}

	// 先退老位置，游戏中退不掉就拒绝换座
	if old := r.tables[p.Table()]; old != nil {
		if ret := old.StandUp(p, p.Seat()); !ret.OK() {
			r.ack(p, protocol.CmdSitDown, tag, ret)
			return nil
		}
	}

	ret := t.SitDown(p, req.Seat)
	r.ack(p, protocol.CmdSitDown, tag, ret)
	if ret.OK() {
		r.broadcastSeat(p)
	}
	return nil
}

func (r *Room) handleStandUp(p *player.Player, tag uint32) {
	t := r.tables[p.Table()]
	if t == nil {
		r.ack(p, protocol.CmdStandUp, tag, logic.IllegalPos)
		return
	}
	ret := t.StandUp(p, p.Seat())
	r.ack(p, protocol.CmdStandUp, tag, ret)
	if ret.OK() {
		r.broadcastSeat(p)
	}
}

func (r *Room) handleHandsUp(p *player.Player, tag uint32) {
	t := r.tables[p.Table()]
	if t == nil {
		r.ack(p, protocol.CmdHandsUp, tag, logic.IllegalPos)
		return
	}
	ret := t.HandsUp(p)
	r.ack(p, protocol.CmdHandsUp, tag, ret)
	if ret.OK() {
		r.broadcastSeat(p)
	}
}

func (r *Room) handleChat(p *player.Player, tag uint32, body []byte) error {
	var req protocol.ChatReq
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("chat from %s: %w", p.Desc(), err)
	}
	if req.Content == "" {
		r.ack(p, protocol.CmdChatInRoom, tag, logic.UnknownError)
		return nil
	}

	r.ack(p, protocol.CmdChatInRoom, tag, logic.Success)
	r.broadcast(protocol.CmdChatInRoom, &protocol.ChatPush{ID: p.ID(), Content: req.Content})
	return nil
}

// removeFromTable 断线离桌并广播
func (r *Room) removeFromTable(p *player.Player) {
	t := r.tables[p.Table()]
	if t == nil {
		return
	}
	tableID, seat := p.Table(), p.Seat()
	t.ForcedStandUp(p)
	r.broadcast(protocol.CmdForcedStandUp, &protocol.ForcedStandUpPush{
		ID:    p.ID(),
		Table: tableID,
		Seat:  seat,
	})
}

func (r *Room) broadcastSeat(p *player.Player) {
	r.broadcast(protocol.CmdSitDown, &protocol.SeatPush{
		ID:     p.ID(),
		Table:  p.Table(),
		Seat:   p.Seat(),
		Status: int32(p.Status()),
	})
}

func (r *Room) broadcast(cmd uint32, v any) {
	frame, err := protocol.Marshal(cmd, protocol.PushTag, v)
	if err != nil {
		log.Errorf("room encode cmd=%d: %v", cmd, err)
		return
	}
	for _, u := range r.users {
		if !u.Push(frame) {
			log.Warnf("room push cmd=%d to %s failed", cmd, u.Desc())
		}
	}
}

func (r *Room) sendTo(p *player.Player, cmd, tag uint32, v any) {
	frame, err := protocol.Marshal(cmd, tag, v)
	if err != nil {
		log.Errorf("room encode cmd=%d: %v", cmd, err)
		return
	}
	if !p.Push(frame) {
		log.Warnf("room push cmd=%d to %s failed", cmd, p.Desc())
	}
}

func (r *Room) ack(p *player.Player, cmd, tag uint32, ret logic.ErrorType) {
	r.sendTo(p, cmd, tag, protocol.Ack{Result: int32(ret), Reason: ret.String()})
}

func userInfo(p *player.Player) protocol.UserInfo {
	return protocol.UserInfo{
		ID:        p.ID(),
		Name:      p.Name(),
		Table:     p.Table(),
		Seat:      p.Seat(),
		Status:    int32(p.Status()),
		WinCount:  p.WinCount(),
		TieCount:  p.TieCount(),
		LoseCount: p.LoseCount(),
		Scores:    p.Scores(),
	}
}
