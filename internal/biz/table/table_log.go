package table

import (
	"fmt"

	"github.com/yola1107/kratos/v2/library/log/file"

	"github.com/longguai/game-server/internal/biz/logic"
	"github.com/longguai/game-server/internal/biz/player"
	"github.com/longguai/game-server/pkg/protocol"
)

// Log 单桌的对局流水日志
type Log struct {
	tableID int32
	logger  *file.Log
}

func NewTableLog(tableID int32, dir string) *Log {
	return &Log{
		tableID: tableID,
		logger:  file.NewFileLog(fmt.Sprintf("%s/table_%d.log", dir, tableID)),
	}
}

func (l *Log) Close() error {
	return l.logger.Sync()
}

func (l *Log) write(msg string, args ...interface{}) {
	l.logger.WriteLog(msg, args...)
}

func (l *Log) sitDown(p *player.Player) {
	l.write("[坐下] 玩家:%s", p.Desc())
}

func (l *Log) standUp(p *player.Player) {
	l.write("[站起] 玩家:%s", p.Desc())
}

func (l *Log) watch(p *player.Player) {
	l.write("[旁观] 玩家:%s", p.Desc())
}

func (l *Log) forcedStandUp(p *player.Player) {
	l.write("[断线离桌] 玩家:%s", p.Desc())
}

func (l *Log) dealStart(lg *logic.Logic) {
	l.write("[发牌] 级别:%d/%d 庄家:%d 争庄:%v", lg.Grade(), lg.Grade2(), lg.BankerPos(), lg.IsGrabbing())
}

func (l *Log) cardsOp(p *player.Player, cmd uint32, cards []logic.Card) {
	op := "出牌"
	switch cmd {
	case protocol.CmdShowTrump:
		op = "叫主"
	case protocol.CmdExchange:
		op = "埋底"
	}
	l.write("[%s] 玩家:%s 牌:%v", op, p.Desc(), cards)
}

func (l *Log) settle(r logic.RoundResult) {
	l.write("[结算] 第%d局 庄家:%d 闲家得分:%d 流局:%v", r.Round, r.BankerPos, r.Scores, r.Tie())
}
