package table

import (
	"github.com/samber/lo"
	"github.com/yola1107/kratos/v2/log"

	"github.com/longguai/game-server/internal/biz/logic"
	"github.com/longguai/game-server/internal/biz/player"
	"github.com/longguai/game-server/pkg/protocol"
)

func wireCards(cards []logic.Card) []uint32 {
	return lo.Map(cards, func(ca logic.Card, _ int) uint32 { return ca.Wire() })
}

// maskCards 只暴露张数
func maskCards(cards []logic.Card) []uint32 {
	return lo.Times(len(cards), func(int) uint32 { return 0 })
}

func (t *Table) send(p *player.Player, cmd, tag uint32, v any) {
	frame, err := protocol.Marshal(cmd, tag, v)
	if err != nil {
		log.Errorf("table %d encode cmd=%d: %v", t.ID, cmd, err)
		return
	}
	if !p.Push(frame) {
		log.Warnf("table %d push cmd=%d to %s failed", t.ID, cmd, p.Desc())
	}
}

func (t *Table) ack(p *player.Player, cmd, tag uint32, ret logic.ErrorType) {
	t.send(p, cmd, tag, protocol.Ack{Result: int32(ret), Reason: ret.String()})
}

// pushRefresh 给所有座位与旁观者推送各自视角的快照
func (t *Table) pushRefresh() {
	for seat, p := range t.seats {
		if p != nil {
			t.send(p, protocol.CmdRefresh, protocol.PushTag, t.buildRefresh(int32(seat)))
		}
	}
	for _, w := range t.watchers {
		t.send(w, protocol.CmdRefresh, protocol.PushTag, t.buildRefresh(-1))
	}
}

// buildRefresh 组快照。viewSeat 的手牌可见；底牌只在埋底阶段亮给庄家
func (t *Table) buildRefresh(viewSeat int32) *protocol.RefreshPush {
	l := t.logic

	hands := make([][]uint32, logic.ParticipantCount)
	brings := make([][]uint32, logic.ParticipantCount)
	counts := make([]int32, logic.ParticipantCount)
	participants := make([]int64, logic.ParticipantCount)
	for pos := int32(0); pos < logic.ParticipantCount; pos++ {
		if pos == viewSeat {
			hands[pos] = wireCards(l.HandCards(pos))
		} else {
			hands[pos] = maskCards(l.HandCards(pos))
		}
		brings[pos] = wireCards(l.BringCards(pos))
		counts[pos] = int32(len(l.RecordCards(pos)))
		if p := t.seats[pos]; p != nil {
			participants[pos] = p.ID()
		}
	}

	under := maskCards(l.UnderCards())
	if l.State() == logic.StExchanging && viewSeat >= 0 && viewSeat == l.BankerPos() {
		under = wireCards(l.UnderCards())
	}

	return &protocol.RefreshPush{
		Table:         t.ID,
		State:         int32(l.State()),
		IsGrabbing:    l.IsGrabbing(),
		Trump:         l.Trump(),
		Grade:         l.Grade(),
		Grade2:        l.Grade2(),
		Banker:        l.BankerPos(),
		Shown:         l.ShownPos(),
		Turn:          l.TurnPos(),
		Scores:        l.Scores(),
		Participants:  participants,
		ShowCards:     wireCards(l.ShownCards()),
		BringingCards: brings,
		BroughtCounts: counts,
		ScoreCards:    wireCards(l.ScoreCards()),
		HandCards:     hands,
		UnderCards:    under,
	}
}
