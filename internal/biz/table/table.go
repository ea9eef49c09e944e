package table

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/yola1107/kratos/v2/log"

	"github.com/longguai/game-server/internal/biz/logic"
	"github.com/longguai/game-server/internal/biz/player"
	"github.com/longguai/game-server/pkg/protocol"
	"github.com/longguai/game-server/pkg/timer"
)

// Table 一张牌桌：座位、旁观者、定时器与规则状态机
type Table struct {
	ID int32 // 桌子ID

	mu       sync.Mutex
	logic    *logic.Logic
	seats    [logic.ParticipantCount]*player.Player
	watchers map[int64]*player.Player

	timer *timer.Engine
	mLog  *Log
}

func NewTable(id int32, engine *timer.Engine, logDir string) *Table {
	return &Table{
		ID:       id,
		logic:    logic.New(),
		watchers: make(map[int64]*player.Player),
		timer:    engine,
		mLog:     NewTableLog(id, logDir),
	}
}

// 定时器ID按桌号派生，保证全房间唯一且非0
func (t *Table) sendTimerID() uint64  { return uint64(t.ID)<<4 | 1 }
func (t *Table) kittyTimerID() uint64 { return uint64(t.ID)<<4 | 2 }

func (t *Table) Desc() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("(TableID:%d SitCnt:%d St:%v Turn:%d Banker:%d)",
		t.ID, t.sitCnt(), t.logic.State(), t.logic.TurnPos(), t.logic.BankerPos())
}

func (t *Table) sitCnt() int {
	cnt := 0
	for _, p := range t.seats {
		if p != nil {
			cnt++
		}
	}
	return cnt
}

// SitDown 坐下，seat 为 -1 时旁观
func (t *Table) SitDown(p *player.Player, seat int32) logic.ErrorType {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seat == -1 {
		t.watchers[p.ID()] = p
		p.SetSeat(t.ID, -1)
		t.mLog.watch(p)
		return logic.Success
	}
	if seat < 0 || seat >= logic.ParticipantCount {
		return logic.IllegalPos
	}
	if t.seats[seat] != nil {
		return logic.IllegalPos
	}

	delete(t.watchers, p.ID()) // 旁观转入座
	t.seats[seat] = p
	p.SetSeat(t.ID, seat)
	p.SetStatus(player.StFree)
	t.logic.SitDown(seat)
	t.mLog.sitDown(p)
	return logic.Success
}

// StandUp 站起。游戏中的玩家不能站起
func (t *Table) StandUp(p *player.Player, seat int32) logic.ErrorType {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seat == -1 { // 旁观离桌
		delete(t.watchers, p.ID())
		p.ClearSeat()
		return logic.Success
	}
	if seat < 0 || seat >= logic.ParticipantCount || t.seats[seat] != p {
		return logic.IllegalPos
	}
	if p.Status() == player.StPlaying {
		return logic.StateError
	}

	t.seats[seat] = nil
	p.ClearSeat()
	t.logic.StandUp(seat)
	t.mLog.standUp(p)
	return logic.Success
}

// HandsUp 准备。四家齐了进入发牌并启动发牌定时器
func (t *Table) HandsUp(p *player.Player) logic.ErrorType {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat := p.Seat()
	if seat < 0 || seat >= logic.ParticipantCount || t.seats[seat] != p {
		return logic.IllegalPos
	}

	ret := t.logic.SetReady(seat)
	if !ret.OK() {
		return ret
	}
	p.SetStatus(player.StHandsUp)

	if t.logic.State() == logic.StSending {
		for _, v := range t.seats {
			if v != nil {
				v.SetStatus(player.StPlaying)
			}
		}
		t.mLog.dealStart(t.logic)
		// 1秒后推首发快照，之后每500ms检查发牌是否结束
		t.timer.Register(t.sendTimerID(), 1000, 1, t.onSendStart)
	}
	return ret
}

func (t *Table) onSendStart(int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pushRefresh()
	t.timer.Register(t.sendTimerID(), 500, timer.RepeatForever, t.onSendTick)
}

func (t *Table) onSendTick(int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.logic.State() != logic.StSending {
		t.timer.Unregister(t.sendTimerID())
		return
	}
	if !t.logic.CheckSendEnd() {
		return
	}
	t.timer.Unregister(t.sendTimerID())
	if t.logic.State() == logic.StWaiting { // 无机动主重发
		t.settleRound()
	}
	t.pushRefresh()
}

// ForcedStandUp 玩家断线离桌，游戏中则强制结束本局
func (t *Table) ForcedStandUp(p *player.Player) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.watchers[p.ID()]; ok {
		delete(t.watchers, p.ID())
		p.ClearSeat()
		return
	}

	seat := p.Seat()
	if seat < 0 || seat >= logic.ParticipantCount || t.seats[seat] != p {
		return
	}

	t.seats[seat] = nil
	t.logic.StandUp(seat)
	t.mLog.forcedStandUp(p)
	p.ClearSeat()

	if t.logic.State() != logic.StWaiting {
		t.timer.Unregister(t.sendTimerID())
		t.timer.Unregister(t.kittyTimerID())
		t.logic.ForcedEnd()
		for _, v := range t.seats {
			if v != nil {
				v.SetStatus(player.StFree)
			}
		}
		t.pushRefresh()
	}
}

// Deliver 处理游戏命令。返回错误表示包不合法，调用方应断开该玩家
func (t *Table) Deliver(p *player.Player, cmd, tag uint32, body []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat := p.Seat()
	if seat < 0 || seat >= logic.ParticipantCount || t.seats[seat] != p {
		log.Warnf("deliver from non-seated player %s cmd=%d", p.Desc(), cmd)
		t.ack(p, cmd, tag, logic.IllegalPos)
		return nil
	}

	var ret logic.ErrorType
	prev := t.logic.State()

	switch cmd {
	case protocol.CmdBring, protocol.CmdShowTrump, protocol.CmdExchange:
		var req protocol.CardsReq
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("table %d cmd %d: %w", t.ID, cmd, err)
		}
		cards := t.calculateCards(req.Cards)
		switch cmd {
		case protocol.CmdBring:
			ret = t.logic.DoBring(seat, cards)
		case protocol.CmdShowTrump:
			ret = t.logic.DoShowTrump(seat, cards)
		case protocol.CmdExchange:
			ret = t.logic.DoExchange(seat, cards)
		}
		if ret.OK() {
			t.mLog.cardsOp(p, cmd, cards)
		}
	case protocol.CmdPass:
		ret = t.logic.PassShow(seat)
	case protocol.CmdAskDefeat:
		ret = t.logic.AskDefeat(seat)
	case protocol.CmdAgreeDefeat:
		ret = t.logic.AdmitDefeat(seat, true)
	case protocol.CmdDisagreeDefeat:
		ret = t.logic.AdmitDefeat(seat, false)
	default:
		log.Warnf("table %d unknown cmd %d from %s", t.ID, cmd, p.Desc())
		t.ack(p, cmd, tag, logic.UnknownError)
		return nil
	}

	t.ack(p, cmd, tag, ret)
	if !ret.OK() {
		return nil
	}

	t.afterAction(prev)
	t.pushRefresh()
	return nil
}

// afterAction 按状态迁移安排定时器与结算
func (t *Table) afterAction(prev logic.State) {
	cur := t.logic.State()
	if cur == prev {
		return
	}
	switch cur {
	case logic.StExchanging:
		// 底牌1秒后亮给庄家
		t.timer.Register(t.kittyTimerID(), 1000, 1, t.onKittyShow)
	case logic.StWaiting:
		t.settleRound()
	}
}

func (t *Table) onKittyShow(int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.logic.State() == logic.StExchanging {
		t.pushRefresh()
	}
}

// calculateCards 把协议里的牌换算成当前局面的权值牌
func (t *Table) calculateCards(wire []uint32) []logic.Card {
	cards := make([]logic.Card, 0, len(wire))
	for _, w := range wire {
		cards = append(cards, t.logic.CalculateCard(logic.Card(w&0xFFFF)))
	}
	return cards
}

// settleRound 一局结束：更新战绩并复位玩家状态
func (t *Table) settleRound() {
	r := t.logic.LastResult()
	for seat, p := range t.seats {
		if p == nil {
			continue
		}
		switch {
		case r.Tie():
			p.AddTie()
		case int32(seat) == r.BankerPos || int32(seat) == (r.BankerPos+2)&3:
			if r.BankerWon() {
				p.AddWin()
			} else {
				p.AddLose()
			}
		default:
			if r.BankerWon() {
				p.AddLose()
			} else {
				p.AddWin()
			}
			p.AddScores(int64(r.Scores))
		}
		p.SetStatus(player.StFree)
	}
	t.mLog.settle(r)
}

// Close 停服收尾
func (t *Table) Close() {
	t.timer.Unregister(t.sendTimerID())
	t.timer.Unregister(t.kittyTimerID())
	t.mLog.Close()
}
