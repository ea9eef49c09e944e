package logic

// BringInfo 当前出牌信息，每8bit存放一个信息
// +-----24+-----16+------8+------0+
// | count | level |  type | power |
// +-------+-------+-------+-------+
type BringInfo uint32

const (
	BringNone    uint32 = 0 // 混合牌
	BringSingle  uint32 = 1 // 单张
	BringPair    uint32 = 2 // 对子
	BringTractor uint32 = 3 // 拖拉机
)

func makeBringInfo(count int, level, typ, power uint32) BringInfo {
	return BringInfo(uint32(count)<<24 | level<<16 | typ<<8 | power)
}

func (b BringInfo) Count() uint32 { return uint32(b) >> 24 & 0x0F }
func (b BringInfo) Level() uint32 { return uint32(b) >> 16 & 0x0F }
func (b BringInfo) Type() uint32  { return uint32(b) >> 8 & 0x0F }
func (b BringInfo) Power() uint32 { return uint32(b) & 0x0F }

// analyze 识别一手牌的牌型，cards 按降序排列
func analyze(cards []Card) BringInfo {
	cnt := len(cards)
	level0 := cards[0].Level()
	if cnt == 1 { // 单张
		return makeBringInfo(1, level0, BringSingle, cards[0].Power())
	}

	last := cards[cnt-1]
	if level0 != last.Level() { // 不同等级多张
		return makeBringInfo(cnt, 0, BringNone, 0)
	}

	// 同等级多张
	if cnt == 2 {
		if cards[0] == cards[1] { // 对子
			return makeBringInfo(2, level0, BringPair, cards[0].Power())
		}
		return makeBringInfo(2, level0, BringNone, last.Power())
	}

	// 更多张：从后往前选对子
	var pairs []Card
	for i := cnt - 1; i >= 0; i-- {
		if i > 0 && cards[i] == cards[i-1] {
			pairs = append(pairs, cards[i])
			i--
		} else { // 发现单张
			return makeBringInfo(cnt, level0, BringSingle, cards[i].Power())
		}
	}
	for i := 0; i < len(pairs)-1; i++ {
		if pairs[i].Power() != pairs[i+1].Power()-1 { // 对子不连续
			return makeBringInfo(cnt, level0, BringPair, pairs[i].Power())
		}
	}
	return makeBringInfo(cnt, level0, BringTractor, pairs[0].Power())
}

// countSingles 手上某等级的牌张数，cards 按降序排列
func countSingles(cards []Card, level uint32) uint32 {
	var cnt uint32
	for _, ca := range cards {
		switch l := ca.Level(); {
		case l == level:
			cnt++
		case l < level: // 牌已排序，到这里说明已找完
			return cnt
		}
	}
	return cnt
}

// countPairs 手上某等级的对子数
func countPairs(cards []Card, level uint32) uint32 {
	var cnt uint32
	for i := 0; i < len(cards); i++ {
		switch l := cards[i].Level(); {
		case l == level:
			if i+1 < len(cards) && cards[i] == cards[i+1] {
				cnt++
				i++
			}
		case l < level:
			return cnt
		}
	}
	return cnt
}

// greatThan info1 是否大过 info2（info2 为当前最大的一手）
func greatThan(info1, info2 BringInfo) bool {
	level1, level2 := info1.Level(), info2.Level()
	type1, type2 := info1.Type(), info2.Type()

	if level1 == level2 { // 相同等级
		if type2 == BringSingle || type2 == BringPair || type2 == BringTractor {
			return type1 == type2 && info1.Power() > info2.Power()
		}
		return false // 混合牌先出为大
	}
	if level1 == 0x05 { // 用主牌毙或者消主
		return type1 == type2
	}
	// 不同等级副牌，先出为大；主牌大于副牌
	return false
}

func (l *Logic) doLeaderBring(pos int32, cards []Card) ErrorType {
	info := analyze(cards)
	if info.Level() == 0 {
		return UncharteredBringCount
	}
	if info.Type() == BringNone {
		return UncharteredBringType
	}
	l.bringInfo[pos] = info
	return Success
}

func (l *Logic) doFollowBring(pos int32, cards []Card) ErrorType {
	leaderInfo := l.bringInfo[l.leaderPos]
	if uint32(len(cards)) != leaderInfo.Count() {
		return UncharteredBringCount
	}

	followInfo := analyze(cards)
	if leaderInfo.Type() == BringNone {
		l.bringInfo[pos] = followInfo
		return Success
	}

	leaderLevel := leaderInfo.Level()
	handSingles := countSingles(l.handCards[pos], leaderLevel)

	if leaderInfo.Type() == BringSingle { // 首家出单张
		// 没有同等级单张，可以随便出。有，则必须出同等级单张
		if handSingles == 0 || followInfo.Level() == leaderLevel {
			l.bringInfo[pos] = followInfo
			return Success
		}
		return FollowBringShouldMatchSuit
	}

	// 首家出对子或者拖拉机
	leaderCnt := leaderInfo.Count()
	if handSingles <= leaderCnt { // 手上同等级牌不够，必须全出完
		if countSingles(cards, leaderLevel) == handSingles {
			l.bringInfo[pos] = followInfo
			return Success
		}
		return FollowBringShouldMatchSuit
	}

	leaderPairs := leaderCnt >> 1
	handPairs := countPairs(l.handCards[pos], leaderLevel)
	preparePairs := countPairs(cards, leaderLevel)
	if handPairs <= leaderPairs { // 手上对子数不够，必须将对子出完
		if preparePairs == handPairs {
			l.bringInfo[pos] = followInfo
			return Success
		}
		return FollowBringShouldMatchPairCount
	}

	// 手上对子数大于首家出牌对子数，必须出等数量的对子
	if preparePairs == leaderPairs {
		l.bringInfo[pos] = followInfo
		return Success
	}
	return FollowBringShouldMatchPairCount
}

// DoBring 出牌。一轮四家出完后结算本轮
func (l *Logic) DoBring(pos int32, cards []Card) ErrorType {
	if pos < 0 || pos >= ParticipantCount {
		return IllegalPos
	}
	if l.state != StBringing {
		return StateError
	}
	if pos != l.turnPos {
		return NotYourTurn
	}
	if len(cards) == 0 || !isSubCardString(l.handCards[pos], cards) {
		return IllegalCards
	}

	var ret ErrorType
	if pos == l.leaderPos {
		ret = l.doLeaderBring(pos, cards)
	} else {
		ret = l.doFollowBring(pos, cards)
	}
	if ret != Success {
		return ret
	}

	l.handCards[pos] = deleteSubCardString(l.handCards[pos], cards)
	l.bringCards[pos] = append(l.bringCards[pos], cards...)
	l.recordCards[pos] = append(l.recordCards[pos], cards...)

	l.turnPos = (l.turnPos + 1) & 3
	if l.turnPos == l.leaderPos { // 一轮出完
		l.nextBring()
	}
	return Success
}

// nextBring 结算一轮：闲家大则捡分，大牌玩家下轮先出
func (l *Logic) nextBring() {
	maxInfo := l.bringInfo[l.leaderPos]
	maxPos := l.leaderPos
	for pos := (l.leaderPos + 1) & 3; pos != l.leaderPos; pos = (pos + 1) & 3 {
		if greatThan(l.bringInfo[pos], maxInfo) {
			maxInfo = l.bringInfo[pos]
			maxPos = pos
		}
	}

	if maxPos == (l.bankerPos+1)&3 || maxPos == (l.bankerPos+3)&3 { // 闲家大，捡分
		pos := l.leaderPos
		for {
			for _, ca := range l.bringCards[pos] {
				if ca.Suit() <= 4 && ca.IsScore() {
					l.scores += ca.Score()
					l.scoreCards = append(l.scoreCards, ca)
				}
			}
			pos = (pos + 1) & 3
			if pos == l.leaderPos {
				break
			}
		}
	}

	l.leaderPos = maxPos
	l.turnPos = maxPos

	if len(l.handCards[l.turnPos]) == 0 { // 手上没有牌了，结束游戏
		l.gameOver()
		return
	}
	for i := range l.bringInfo {
		l.bringInfo[i] = 0
		l.bringCards[i] = l.bringCards[i][:0]
	}
}
