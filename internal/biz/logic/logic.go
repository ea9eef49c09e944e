// Package logic 实现五十K的纯规则状态机，不做任何IO。
// 入参的牌必须已按当前主花色与级别换算过权值。
package logic

import (
	"math/rand"
	"time"
)

// ParticipantCount 每桌人数
const ParticipantCount = 4

// State 游戏状态
type State int32

const (
	StWaiting    State = iota // 等待准备
	StSending                 // 发牌中
	StShowing                 // 叫主/反主
	StExchanging              // 埋底
	StBringing                // 出牌
)

var stateNames = map[State]string{
	StWaiting:    "Waiting",
	StSending:    "Sending",
	StShowing:    "Showing",
	StExchanging: "Exchanging",
	StBringing:   "Bringing",
}

func (s State) String() string { return stateNames[s] }

// DefeatState 投降询问状态
type DefeatState int32

const (
	DefeatNotAsk DefeatState = iota
	DefeatAsking
	DefeatAsked
)

const allReadyMask = 1<<ParticipantCount - 1

// sendDuration 发牌动画时长（秒）
const sendDuration = 21

// RoundResult 一局结束时的结算信息，BankerPos 为结算前的庄家
type RoundResult struct {
	Round     uint32
	BankerPos int32
	Scores    uint32
}

// Tie 流局：无人叫主/无机动主重发，或争庄局憋庄
func (r RoundResult) Tie() bool { return r.Scores > 200 || r.BankerPos < 0 }

// BankerWon 庄家队是否坐庄成功
func (r RoundResult) BankerWon() bool { return !r.Tie() && r.Scores < 80 }

// Logic 单桌的游戏规则状态机
type Logic struct {
	state State

	isGrabbing bool   // 争庄与否
	grade      uint32 // 级别
	trump      uint32 // 主花色 0:无，1234分别代表方板-梅花-红桃-黑桃
	grade2     uint32 // 闲家级别
	bankerPos  int32  // 庄家
	shownPos   int32  // 叫主玩家
	turnPos    int32  // 轮到出牌的玩家
	leaderPos  int32  // 一轮中最先出牌的玩家
	scores     uint32 // 闲家得分
	cycles     uint32 // 第几局
	rounds     uint32 // 第几回合

	defeatState DefeatState
	readyState  uint8 // 准备状态位
	passFlag    uint8 // 反主过的标志位

	handCards   [ParticipantCount][]Card // 手上的牌
	shownCards  []Card                   // 叫主的牌
	underCards  []Card                   // 底牌
	bringCards  [ParticipantCount][]Card // 当前一轮出的牌
	recordCards [ParticipantCount][]Card // 已出的牌
	scoreCards  []Card                   // 分牌

	bringInfo [ParticipantCount]BringInfo

	sendTime time.Time
	result   RoundResult

	rng *rand.Rand
	now func() time.Time
}

func New() *Logic {
	l := &Logic{
		rng: rand.New(rand.NewSource(rand.New(rand.NewSource(time.Now().UnixNano())).Int63())),
		now: time.Now,
	}
	l.init()
	l.setup()
	return l
}

func (l *Logic) init() {
	l.isGrabbing = true
	l.grade = 5
	l.grade2 = 5
	l.cycles = 0
	l.rounds = 0
	l.bankerPos = -1

	l.readyState = 0
}

func (l *Logic) setup() {
	l.state = StWaiting
	l.trump = 0
	l.scores = 0
	l.defeatState = DefeatNotAsk
	l.passFlag = 0

	if !l.isGrabbing {
		l.turnPos = l.bankerPos
	} else {
		l.bankerPos = -1
		l.turnPos = -1
	}
	l.shownPos = -1
	l.leaderPos = -1

	for i := range l.handCards {
		l.handCards[i] = l.handCards[i][:0]
		l.bringCards[i] = l.bringCards[i][:0]
		l.recordCards[i] = l.recordCards[i][:0]
		l.bringInfo[i] = 0
	}
	l.shownCards = l.shownCards[:0]
	l.underCards = l.underCards[:0]
	l.scoreCards = l.scoreCards[:0]
}

// SitDown 座位变更时清掉该座位的准备状态
func (l *Logic) SitDown(seat int32) { l.readyState &^= 1 << seat }

// StandUp 同 SitDown
func (l *Logic) StandUp(seat int32) { l.readyState &^= 1 << seat }

// ForcedEnd 有人中途离开，强制结束并回到初始级别
func (l *Logic) ForcedEnd() {
	l.init()
	l.setup()
}

// CalculateCard 按当前级别与主花色换算牌的权值
func (l *Logic) CalculateCard(ca Card) Card {
	suit, rank := ca.Suit(), ca.Rank()
	if suit == SuitJoker {
		if rank == 15 {
			return JokerRed
		}
		return JokerBlack
	}

	if l.trump == suit { // 主花色
		switch {
		case rank < l.grade:
			return MakeCard(5, rank-4, suit, rank)
		case rank == l.grade:
			return MakeCard(5, 0x0D, suit, rank) // 级牌（正的）
		case rank <= 14:
			return MakeCard(5, rank-5, suit, rank)
		default: // rank == 15
			return MakeCard(5, 0x0B, suit, 15) // 正2
		}
	}

	// 副花色
	switch {
	case rank < l.grade:
		return MakeCard(suit, rank-4, suit, rank)
	case rank == l.grade:
		return MakeCard(5, 0x0C, suit, rank) // 级牌（副的）
	case rank <= 14:
		return MakeCard(suit, rank-5, suit, rank)
	default: // rank == 15
		return MakeCard(5, 0x0A, suit, 15) // 副2
	}
}

// SetReady 玩家准备，四人齐了就洗牌发牌进入发牌阶段
func (l *Logic) SetReady(pos int32) ErrorType {
	if pos < 0 || pos >= ParticipantCount {
		return IllegalPos
	}
	if l.readyState == 0 {
		l.setup()
	}
	if l.state != StWaiting {
		return StateError
	}
	if l.readyState&(1<<pos) != 0 {
		return UnknownError
	}
	l.readyState |= 1 << pos
	if l.readyState == allReadyMask {
		l.setup()
		l.shuffleCards()
		l.state = StSending
	}
	return Success
}

// shuffleCards 92张牌，每家发21张，余8张做底牌
func (l *Logic) shuffleCards() {
	total := make([]Card, 0, 92)
	for i := 0; i < 88; i++ {
		suit := uint32(i/11)>>1 + 1
		rank := uint32(i%11) + 5
		total = append(total, l.CalculateCard(MakeCard(0, 0, suit, rank)))
	}
	total = append(total, JokerBlack, JokerBlack, JokerRed, JokerRed)

	l.rng.Shuffle(len(total), func(i, j int) {
		total[i], total[j] = total[j], total[i]
	})

	for i := 0; i < 84; i++ {
		l.handCards[i&3] = append(l.handCards[i&3], total[i])
	}
	l.underCards = append(l.underCards, total[84:]...)

	l.updateCards()
	l.sendTime = l.now()
}

// updateCards 主花色或级别变化后重算所有权值
func (l *Logic) updateCards() {
	for i := range l.handCards {
		for k, ca := range l.handCards[i] {
			l.handCards[i][k] = l.CalculateCard(ca)
		}
	}
	for k, ca := range l.underCards {
		l.underCards[k] = l.CalculateCard(ca)
	}
}

func (l *Logic) sortCards() {
	for i := range l.handCards {
		sortCardsDesc(l.handCards[i])
	}
	sortCardsDesc(l.underCards)
}

// CheckSendEnd 发牌动画是否已结束，结束则进入叫主阶段
func (l *Logic) CheckSendEnd() bool {
	if l.state != StSending {
		return false
	}
	if int64(l.now().Sub(l.sendTime).Seconds()) > sendDuration {
		l.afterSend()
		return true
	}
	return false
}

func (l *Logic) afterSend() bool {
	l.sortCards()
	if l.checkNoTrump() {
		l.scores = 205
		l.gameOver()
		return false
	}

	if len(l.shownCards) > 0 { // 有人叫主了，从叫主玩家下家开始
		l.turnPos = (l.shownPos + 1) & 3
	} else if l.isGrabbing { // 争庄局随机选一家开始
		l.turnPos = l.rng.Int31() & 3
	} else { // 定庄局从庄家开始
		l.turnPos = l.bankerPos
	}
	l.state = StShowing
	return true
}

// checkNoTrump 理好牌后，手上第一张牌小于副2，可以断定没有机动主
func (l *Logic) checkNoTrump() bool {
	for pos := 0; pos < ParticipantCount; pos++ {
		if l.handCards[pos][0] < 0x050A010F {
			return true
		}
	}
	return false
}

func (l *Logic) checkShowTrump(cards []Card) ErrorType {
	if len(cards) < 3 {
		return UncharteredShowCount
	}
	if cards[0] != JokerBlack && cards[0] != JokerRed {
		return ShowCardsShouldContainJoker
	}
	if cards[1].Rank() != l.grade || cards[1] != cards[len(cards)-2] {
		return ShowCardsShouldHaveGrade
	}
	if cards[len(cards)-1].Rank() != 15 {
		return ShowCardsShouldContain2
	}

	shownCnt := len(l.shownCards)
	if shownCnt == 0 { // 无人叫主
		return Success
	}

	// 有人叫主了，必须要两张级牌才能反
	if len(cards) < 4 {
		return RebelNeedTwoGrade
	}
	switch shownCnt {
	case 3:
		return Success
	case 4:
		if cards[1].Suit() > l.shownCards[1].Suit() {
			return Success
		}
		return RebelShouldGreaterThanOrigin
	}
	return UnknownError
}

// DoShowTrump 叫主或反主。发牌阶段只能用已发到手上的牌叫
func (l *Logic) DoShowTrump(pos int32, cards []Card) ErrorType {
	if pos < 0 || pos >= ParticipantCount {
		return IllegalPos
	}
	if l.state != StSending && l.state != StShowing {
		return StateError
	}

	if l.state == StSending {
		// 只能用已发到手上的牌叫，窗口取已发秒数与手牌数的较大者
		dt := int(l.now().Sub(l.sendTime).Seconds())
		offset := max(dt, len(l.handCards[pos]))
		if offset > len(l.handCards[pos]) {
			offset = len(l.handCards[pos])
		}
		if !isSubCardStringUnsorted(l.handCards[pos][:offset], cards) {
			return IllegalCards
		}
	} else {
		if pos != l.turnPos {
			return NotYourTurn
		}
		if !isSubCardString(l.handCards[pos], cards) {
			return IllegalCards
		}
	}

	ret := l.checkShowTrump(cards)
	if ret != Success {
		return ret
	}

	l.shownCards = append(l.shownCards[:0], cards...)
	l.trump = cards[1].Suit()
	l.shownPos = pos
	l.passFlag = 1 << pos // 重置不反标志，自己不能反自己
	if l.isGrabbing {
		l.bankerPos = pos
	}

	l.updateCards()
	if l.state == StShowing {
		l.sortCards()
		l.turnPos = (l.turnPos + 1) & 3
	}
	return Success
}

// PassShow 不叫/不反。四家都过后，有主则发底牌，无主则本局作废
func (l *Logic) PassShow(pos int32) ErrorType {
	if pos < 0 || pos >= ParticipantCount {
		return IllegalPos
	}
	if l.state != StShowing {
		return StateError
	}
	if pos != l.turnPos {
		return NotYourTurn
	}

	l.passFlag |= 1 << pos
	if l.passFlag == allReadyMask { // 都过了
		if l.shownPos >= 0 { // 有人叫主了
			l.sendUnderCards()
		} else { // 憋庄
			if l.isGrabbing {
				l.scores = 205
			} else {
				l.scores = 80
			}
			l.gameOver()
		}
	} else {
		l.turnPos = (l.turnPos + 1) & 3
	}
	return Success
}

// sendUnderCards 底牌给庄家，轮到庄家埋牌
func (l *Logic) sendUnderCards() {
	hand := append(l.handCards[l.bankerPos], l.underCards...)
	sortCardsDesc(hand)
	l.handCards[l.bankerPos] = hand
	l.turnPos = l.bankerPos
	l.state = StExchanging
}

// AskDefeat 庄家发起投降询问
func (l *Logic) AskDefeat(pos int32) ErrorType {
	if l.state != StExchanging {
		return StateError
	}
	if pos != l.bankerPos {
		return NotYourTurn
	}
	l.defeatState = DefeatAsking
	return Success
}

// AdmitDefeat 庄家对门应答投降询问，同意则闲家按80分结算
func (l *Logic) AdmitDefeat(pos int32, agree bool) ErrorType {
	if l.state != StExchanging {
		return StateError
	}
	if pos != (l.bankerPos+2)&3 {
		return NotYourTurn
	}

	switch l.defeatState {
	case DefeatNotAsk:
		return NoAskDefeat
	case DefeatAsking:
		l.defeatState = DefeatAsked
		if agree {
			l.scores = 80
			l.gameOver()
		}
		return Success
	case DefeatAsked:
		return DefeatHasAsked
	}
	return UnknownError
}

// DoExchange 庄家埋底，8张且不能埋分
func (l *Logic) DoExchange(pos int32, cards []Card) ErrorType {
	if l.state != StExchanging {
		return StateError
	}
	if pos != l.bankerPos {
		return NotYourTurn
	}
	if len(cards) != 8 {
		return UncharteredExchangeCount
	}
	for _, ca := range cards {
		if ca.IsScore() {
			return ExchangedShouldNotContainScores
		}
	}
	if !isSubCardString(l.handCards[pos], cards) {
		return IllegalCards
	}

	l.handCards[pos] = deleteSubCardString(l.handCards[pos], cards)
	l.state = StBringing
	l.turnPos = pos
	l.leaderPos = pos
	return Success
}

// gameOver 结算：按闲家得分升降级并轮换庄家
func (l *Logic) gameOver() {
	l.result = RoundResult{
		Round:     l.result.Round + 1,
		BankerPos: l.bankerPos,
		Scores:    l.scores,
	}

	pureEmpty := func() { // 清光，重新争庄
		l.isGrabbing = true
		l.bankerPos = -1
		l.grade = 5
		l.grade2 = 5
		l.cycles++
		l.rounds = 0
	}
	pass := func(newGrade uint32) { // 过庄，对门接庄
		l.isGrabbing = false
		l.bankerPos = (l.bankerPos + 2) & 3
		l.grade = newGrade
		l.rounds++
	}
	lose := func(newGrade uint32) { // 败庄，下家坐庄
		l.isGrabbing = false
		l.bankerPos = (l.bankerPos + 1) & 3
		l.grade2 = l.grade
		l.grade = newGrade
		l.rounds++
	}

	switch {
	case l.scores == 0: // 清光
		pureEmpty()
	case l.scores < 25: // 毛光
		if l.grade == 5 {
			pass(13)
		} else {
			pureEmpty()
		}
	case l.scores < 80: // 过庄
		switch l.grade {
		case 13:
			pureEmpty()
		case 5:
			pass(10)
		default:
			pass(13)
		}
	case l.scores < 125: // 败庄
		lose(l.grade2)
	case l.scores < 165: // 翻
		switch l.grade2 {
		case 13:
			pureEmpty()
		case 5:
			lose(10)
		default:
			lose(13)
		}
	case l.scores <= 200: // 翻两级
		if l.grade2 == 5 {
			lose(13)
		} else {
			pureEmpty()
		}
	default: // 有玩家无机动主或争庄局憋庄，信息不变
		l.rounds++
	}

	l.state = StWaiting
	l.readyState = 0
}

// 状态查询

func (l *Logic) State() State             { return l.state }
func (l *Logic) IsGrabbing() bool         { return l.isGrabbing }
func (l *Logic) Grade() uint32            { return l.grade }
func (l *Logic) Trump() uint32            { return l.trump }
func (l *Logic) Grade2() uint32           { return l.grade2 }
func (l *Logic) BankerPos() int32         { return l.bankerPos }
func (l *Logic) ShownPos() int32          { return l.shownPos }
func (l *Logic) TurnPos() int32           { return l.turnPos }
func (l *Logic) LeaderPos() int32         { return l.leaderPos }
func (l *Logic) Scores() uint32           { return l.scores }
func (l *Logic) Cycles() uint32           { return l.cycles }
func (l *Logic) Rounds() uint32           { return l.rounds }
func (l *Logic) LastResult() RoundResult  { return l.result }
func (l *Logic) ShownCards() []Card       { return l.shownCards }
func (l *Logic) UnderCards() []Card       { return l.underCards }
func (l *Logic) ScoreCards() []Card       { return l.scoreCards }
func (l *Logic) HandCards(p int32) []Card { return l.handCards[p] }

func (l *Logic) BringCards(p int32) []Card  { return l.bringCards[p] }
func (l *Logic) RecordCards(p int32) []Card { return l.recordCards[p] }
