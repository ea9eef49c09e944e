package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mc(suit, rank uint32) Card { return MakeCard(0, 0, suit, rank) }

// readyAll 四家准备进入发牌阶段，使用可控时钟
func readyAll(t *testing.T, l *Logic) {
	t.Helper()
	for pos := int32(0); pos < ParticipantCount; pos++ {
		require.Equal(t, Success, l.SetReady(pos))
	}
	require.Equal(t, StSending, l.State())
}

func TestSetReadyFlow(t *testing.T) {
	l := New()
	assert.Equal(t, StWaiting, l.State())

	assert.Equal(t, IllegalPos, l.SetReady(4))
	assert.Equal(t, IllegalPos, l.SetReady(-1))

	assert.Equal(t, Success, l.SetReady(0))
	assert.Equal(t, UnknownError, l.SetReady(0)) // 重复准备

	assert.Equal(t, Success, l.SetReady(1))
	assert.Equal(t, Success, l.SetReady(2))
	assert.Equal(t, StWaiting, l.State())

	assert.Equal(t, Success, l.SetReady(3))
	assert.Equal(t, StSending, l.State())

	// 发牌中不能再准备
	assert.Equal(t, StateError, l.SetReady(0))
}

func TestSitStandClearReady(t *testing.T) {
	l := New()
	require.Equal(t, Success, l.SetReady(0))
	l.StandUp(0)
	l.SitDown(0)
	// 站起后准备状态被清掉，可以再次准备
	assert.Equal(t, Success, l.SetReady(0))
}

func TestDealInvariant(t *testing.T) {
	l := New()
	readyAll(t, l)

	expected := make([]Card, 0, 92)
	for i := 0; i < 88; i++ {
		suit := uint32(i/11)>>1 + 1
		rank := uint32(i%11) + 5
		expected = append(expected, l.CalculateCard(mc(suit, rank)))
	}
	expected = append(expected, JokerBlack, JokerBlack, JokerRed, JokerRed)
	sortCardsDesc(expected)

	var dealt []Card
	for pos := int32(0); pos < ParticipantCount; pos++ {
		assert.Len(t, l.HandCards(pos), 21)
		dealt = append(dealt, l.HandCards(pos)...)
	}
	require.Len(t, l.UnderCards(), 8)
	dealt = append(dealt, l.UnderCards()...)
	sortCardsDesc(dealt)

	assert.Equal(t, expected, dealt)
}

func TestCheckSendEnd(t *testing.T) {
	l := New()
	cur := time.Now()
	l.now = func() time.Time { return cur }
	readyAll(t, l)

	// 每家补一张2，保证不会因无机动主重发
	for pos := 0; pos < ParticipantCount; pos++ {
		l.handCards[pos][0] = l.CalculateCard(mc(uint32(pos)+1, 15))
	}

	assert.False(t, l.CheckSendEnd())
	cur = cur.Add(10 * time.Second)
	assert.False(t, l.CheckSendEnd())

	cur = cur.Add(12 * time.Second)
	assert.True(t, l.CheckSendEnd())
	assert.Equal(t, StShowing, l.State())
	assert.GreaterOrEqual(t, l.TurnPos(), int32(0))
	assert.Less(t, l.TurnPos(), int32(4))

	// 理牌后手牌降序
	hand := l.HandCards(0)
	for i := 1; i < len(hand); i++ {
		assert.GreaterOrEqual(t, hand[i-1], hand[i])
	}

	assert.False(t, l.CheckSendEnd()) // 已不在发牌阶段
}

func TestNoTrumpRedeal(t *testing.T) {
	l := New()
	cur := time.Now()
	l.now = func() time.Time { return cur }
	readyAll(t, l)

	// 二号位全是小牌，必然无机动主
	weak := l.CalculateCard(mc(SuitClub, 7))
	for i := range l.handCards[2] {
		l.handCards[2][i] = weak
	}

	cur = cur.Add(22 * time.Second)
	assert.True(t, l.CheckSendEnd())
	assert.Equal(t, StWaiting, l.State())

	r := l.LastResult()
	assert.EqualValues(t, 205, r.Scores)
	assert.True(t, r.Tie())
	assert.False(t, r.BankerWon())
	// 级别信息不变
	assert.EqualValues(t, 5, l.Grade())
	assert.EqualValues(t, 1, l.Rounds())
}

func TestShowTrumpDuringSending(t *testing.T) {
	l := New()
	cur := time.Now()
	l.now = func() time.Time { return cur }
	l.state = StSending
	l.sendTime = cur

	w := l.CalculateCard
	l.handCards[0] = []Card{
		w(mc(SuitDiamond, 9)), JokerBlack, w(mc(SuitHeart, 5)),
		w(mc(SuitClub, 8)), w(mc(SuitHeart, 5)), w(mc(SuitSpade, 15)),
	}

	claim := []Card{JokerBlack, w(mc(SuitHeart, 5)), w(mc(SuitHeart, 5)), w(mc(SuitSpade, 15))}
	assert.Equal(t, Success, l.DoShowTrump(0, claim))

	assert.Equal(t, SuitHeart, l.Trump())
	assert.EqualValues(t, 0, l.ShownPos())
	assert.EqualValues(t, 0, l.BankerPos()) // 争庄局叫主即坐庄
	assert.Equal(t, StSending, l.State())   // 发牌阶段叫主不换状态
	assert.Equal(t, claim, l.ShownCards())
}

func TestShowTrumpSendingIllegalCards(t *testing.T) {
	l := New()
	cur := time.Now()
	l.now = func() time.Time { return cur }
	l.state = StSending
	l.sendTime = cur

	w := l.CalculateCard
	l.handCards[0] = []Card{JokerBlack, w(mc(SuitHeart, 5)), w(mc(SuitSpade, 15))}

	// 手上只有一张级牌，按两张叫
	claim := []Card{JokerBlack, w(mc(SuitHeart, 5)), w(mc(SuitHeart, 5)), w(mc(SuitSpade, 15))}
	assert.Equal(t, IllegalCards, l.DoShowTrump(0, claim))
}

func TestCheckShowTrumpRules(t *testing.T) {
	l := New()
	w := l.CalculateCard
	h5 := w(mc(SuitHeart, 5))
	s2 := w(mc(SuitSpade, 15))
	c9 := w(mc(SuitClub, 9))

	assert.Equal(t, UncharteredShowCount, l.checkShowTrump([]Card{JokerRed, h5}))
	assert.Equal(t, ShowCardsShouldContainJoker, l.checkShowTrump([]Card{c9, h5, s2}))
	assert.Equal(t, ShowCardsShouldHaveGrade, l.checkShowTrump([]Card{JokerRed, c9, s2}))
	assert.Equal(t, ShowCardsShouldContain2, l.checkShowTrump([]Card{JokerRed, h5, h5, c9}))
	assert.Equal(t, Success, l.checkShowTrump([]Card{JokerRed, h5, s2}))
	assert.Equal(t, Success, l.checkShowTrump([]Card{JokerRed, h5, h5, s2}))
}

func TestRebelLadder(t *testing.T) {
	l := New()
	w := l.CalculateCard
	h5 := w(mc(SuitHeart, 5))
	s5 := w(mc(SuitSpade, 5))
	d5 := w(mc(SuitDiamond, 5))
	s2 := w(mc(SuitSpade, 15))

	// 三张叫主后，四张即可反
	l.shownCards = []Card{JokerBlack, h5, s2}
	assert.Equal(t, RebelNeedTwoGrade, l.checkShowTrump([]Card{JokerRed, d5, s2}))
	assert.Equal(t, Success, l.checkShowTrump([]Card{JokerRed, d5, d5, s2}))

	// 四张叫主后，反主花色必须更大
	l.shownCards = []Card{JokerBlack, h5, h5, s2}
	assert.Equal(t, RebelShouldGreaterThanOrigin, l.checkShowTrump([]Card{JokerRed, d5, d5, s2}))
	assert.Equal(t, RebelShouldGreaterThanOrigin, l.checkShowTrump([]Card{JokerRed, h5, h5, s2}))
	assert.Equal(t, Success, l.checkShowTrump([]Card{JokerRed, s5, s5, s2}))
}

func TestShowingPhaseTurnAndRebel(t *testing.T) {
	l := New()
	l.state = StShowing
	l.isGrabbing = true
	l.turnPos = 1

	w := l.CalculateCard
	l.handCards[1] = []Card{JokerRed, w(mc(SuitHeart, 5)), w(mc(SuitHeart, 5)), w(mc(SuitSpade, 15)), w(mc(SuitClub, 9))}
	sortCardsDesc(l.handCards[1])

	assert.Equal(t, NotYourTurn, l.DoShowTrump(0, []Card{JokerRed}))

	claim := []Card{JokerRed, w(mc(SuitHeart, 5)), w(mc(SuitHeart, 5)), w(mc(SuitSpade, 15))}
	require.Equal(t, Success, l.DoShowTrump(1, claim))

	assert.Equal(t, SuitHeart, l.Trump())
	assert.EqualValues(t, 1, l.BankerPos())
	assert.EqualValues(t, 2, l.TurnPos()) // 叫主后轮到下家
	assert.Equal(t, StShowing, l.State())
}

func TestPassShowToExchanging(t *testing.T) {
	l := New()
	l.state = StShowing
	l.isGrabbing = true
	l.shownPos = 0 // 0号位叫主也要能进埋底
	l.bankerPos = 0
	l.trump = SuitHeart
	l.passFlag = 1 << 0
	l.turnPos = 1

	w := l.CalculateCard
	l.handCards[0] = []Card{w(mc(SuitHeart, 14)), w(mc(SuitClub, 9))}
	l.underCards = []Card{
		w(mc(SuitDiamond, 6)), w(mc(SuitDiamond, 7)), w(mc(SuitClub, 6)), w(mc(SuitClub, 7)),
		w(mc(SuitSpade, 6)), w(mc(SuitSpade, 7)), w(mc(SuitHeart, 6)), w(mc(SuitHeart, 7)),
	}

	assert.Equal(t, NotYourTurn, l.PassShow(3))
	require.Equal(t, Success, l.PassShow(1))
	require.Equal(t, Success, l.PassShow(2))
	assert.Equal(t, StShowing, l.State())
	require.Equal(t, Success, l.PassShow(3))

	assert.Equal(t, StExchanging, l.State())
	assert.EqualValues(t, 0, l.TurnPos())
	assert.Len(t, l.HandCards(0), 10) // 2 + 底牌8张

	hand := l.HandCards(0)
	for i := 1; i < len(hand); i++ {
		assert.GreaterOrEqual(t, hand[i-1], hand[i])
	}
}

func TestPassShowBlockedBanker(t *testing.T) {
	// 定庄局无人叫主，按败庄结算
	l := New()
	l.state = StShowing
	l.isGrabbing = false
	l.bankerPos = 1
	l.grade = 10
	l.grade2 = 5
	l.shownPos = -1
	l.turnPos = 0

	for pos := int32(0); pos < 4; pos++ {
		require.Equal(t, Success, l.PassShow(pos))
	}

	assert.Equal(t, StWaiting, l.State())
	r := l.LastResult()
	assert.EqualValues(t, 80, r.Scores)
	assert.EqualValues(t, 1, r.BankerPos)
	assert.False(t, r.Tie())
	assert.False(t, r.BankerWon())
	// 败庄：下家坐庄，闲家级别接手
	assert.EqualValues(t, 2, l.BankerPos())
	assert.EqualValues(t, 5, l.Grade())
	assert.EqualValues(t, 10, l.Grade2())
}

func TestPassShowGrabbingAllPass(t *testing.T) {
	l := New()
	l.state = StShowing
	l.isGrabbing = true
	l.bankerPos = -1
	l.shownPos = -1
	l.turnPos = 2

	for i := 0; i < 4; i++ {
		require.Equal(t, Success, l.PassShow(l.TurnPos()))
	}

	assert.Equal(t, StWaiting, l.State())
	r := l.LastResult()
	assert.EqualValues(t, 205, r.Scores)
	assert.True(t, r.Tie())
}

func TestDefeatHandshake(t *testing.T) {
	l := New()
	l.state = StExchanging
	l.bankerPos = 1

	assert.Equal(t, NotYourTurn, l.AskDefeat(0))
	assert.Equal(t, NotYourTurn, l.AdmitDefeat(0, true))
	assert.Equal(t, NoAskDefeat, l.AdmitDefeat(3, true))

	require.Equal(t, Success, l.AskDefeat(1))
	require.Equal(t, Success, l.AdmitDefeat(3, false))
	assert.Equal(t, StExchanging, l.State()) // 拒绝后继续
	assert.Equal(t, DefeatHasAsked, l.AdmitDefeat(3, true))
}

func TestDefeatAgreed(t *testing.T) {
	l := New()
	l.state = StExchanging
	l.isGrabbing = false
	l.bankerPos = 0
	l.grade = 5
	l.grade2 = 5

	require.Equal(t, Success, l.AskDefeat(0))
	require.Equal(t, Success, l.AdmitDefeat(2, true))

	assert.Equal(t, StWaiting, l.State())
	r := l.LastResult()
	assert.EqualValues(t, 80, r.Scores)
	assert.False(t, r.BankerWon())
}

func TestDoExchange(t *testing.T) {
	l := New()
	l.state = StExchanging
	l.bankerPos = 0
	l.turnPos = 0
	w := l.CalculateCard

	hand := make([]Card, 0, 29)
	for _, suit := range []uint32{SuitDiamond, SuitClub, SuitHeart, SuitSpade} {
		for _, rank := range []uint32{6, 7, 8, 9, 11, 12, 14} {
			hand = append(hand, w(mc(suit, rank)))
		}
	}
	hand = append(hand, JokerBlack)
	sortCardsDesc(hand)
	l.handCards[0] = hand

	assert.Equal(t, NotYourTurn, l.DoExchange(1, hand[:8]))
	assert.Equal(t, UncharteredExchangeCount, l.DoExchange(0, hand[:7]))

	withScore := append([]Card{w(mc(SuitHeart, 10))}, hand[:7]...)
	assert.Equal(t, ExchangedShouldNotContainScores, l.DoExchange(0, withScore))

	missing := make([]Card, 8)
	copy(missing, hand[:8])
	missing[7] = w(mc(SuitDiamond, 15)) // 手上没有的非分牌
	assert.Equal(t, IllegalCards, l.DoExchange(0, sorted(missing)))

	buried := make([]Card, 8)
	copy(buried, hand[2:10])
	require.Equal(t, Success, l.DoExchange(0, buried))

	assert.Equal(t, StBringing, l.State())
	assert.EqualValues(t, 0, l.TurnPos())
	assert.EqualValues(t, 0, l.LeaderPos())
	assert.Len(t, l.HandCards(0), 21)
}

func sorted(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sortCardsDesc(out)
	return out
}

func TestForcedEnd(t *testing.T) {
	l := New()
	l.state = StBringing
	l.isGrabbing = false
	l.grade = 13
	l.grade2 = 10
	l.bankerPos = 2
	l.handCards[0] = []Card{JokerRed}

	l.ForcedEnd()

	assert.Equal(t, StWaiting, l.State())
	assert.True(t, l.IsGrabbing())
	assert.EqualValues(t, 5, l.Grade())
	assert.EqualValues(t, 5, l.Grade2())
	assert.EqualValues(t, -1, l.BankerPos())
	assert.Empty(t, l.HandCards(0))
}

func TestGameOverBands(t *testing.T) {
	cases := []struct {
		name          string
		scores        uint32
		grade, grade2 uint32
		wantGrabbing  bool
		wantBanker    int32 // 初始庄家为1
		wantGrade     uint32
		wantGrade2    uint32
	}{
		{"清光", 0, 10, 5, true, -1, 5, 5},
		{"毛光打5", 20, 5, 5, false, 3, 13, 5},
		{"毛光打10", 20, 10, 5, true, -1, 5, 5},
		{"过庄打5", 50, 5, 5, false, 3, 10, 5},
		{"过庄打10", 50, 10, 5, false, 3, 13, 5},
		{"过庄打K", 50, 13, 5, true, -1, 5, 5},
		{"败庄", 100, 10, 5, false, 2, 5, 10},
		{"翻闲5", 150, 10, 5, false, 2, 10, 10},
		{"翻闲10", 150, 13, 10, false, 2, 13, 13},
		{"翻闲K", 150, 13, 13, true, -1, 5, 5},
		{"翻两级闲5", 180, 10, 5, false, 2, 13, 10},
		{"翻两级闲10", 180, 13, 10, true, -1, 5, 5},
		{"流局", 205, 10, 5, false, 1, 10, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := New()
			l.state = StBringing
			l.isGrabbing = false
			l.bankerPos = 1
			l.scores = tc.scores
			l.grade = tc.grade
			l.grade2 = tc.grade2

			l.gameOver()

			assert.Equal(t, StWaiting, l.State())
			assert.Equal(t, tc.wantGrabbing, l.IsGrabbing())
			assert.Equal(t, tc.wantBanker, l.BankerPos())
			assert.Equal(t, tc.wantGrade, l.Grade())
			assert.Equal(t, tc.wantGrade2, l.Grade2())
			assert.EqualValues(t, 1, l.LastResult().BankerPos)
			assert.Equal(t, tc.scores, l.LastResult().Scores)
		})
	}
}
