package logic

import "sort"

// Card 每张牌的值由4个信息组成，每8bit存放一个信息
// +-----24+-----16+------8+------0+
// | level | power |  suit |  rank |
// +-------+-------+-------+-------+
// level: 1-4副花色 5主；power: 同level内比较大小；
// suit: 1方板 2梅花 3红桃 4黑桃 5王；rank: 5-13即牌面，14为A，15为2（王为14/15）
type Card uint32

const (
	JokerBlack Card = 0x050E050E // 小王
	JokerRed   Card = 0x050F050F // 大王
)

const (
	SuitDiamond uint32 = 1
	SuitClub    uint32 = 2
	SuitHeart   uint32 = 3
	SuitSpade   uint32 = 4
	SuitJoker   uint32 = 5
)

func MakeCard(level, power, suit, rank uint32) Card {
	return Card(level<<24 | power<<16 | suit<<8 | rank)
}

func (c Card) Rank() uint32  { return uint32(c) & 0x0F }
func (c Card) Suit() uint32  { return uint32(c) >> 8 & 0x0F }
func (c Card) Power() uint32 { return uint32(c) >> 16 & 0x0F }
func (c Card) Level() uint32 { return uint32(c) >> 24 & 0x0F }

// Wire 网络传输形式，仅保留 suit|rank
func (c Card) Wire() uint32 { return uint32(c) & 0xFFFF }

// IsScore 是否为分牌（5、10、K）
func (c Card) IsScore() bool {
	r := c.Rank()
	return r == 5 || r == 10 || r == 13
}

// Score 分值，非分牌为 0
func (c Card) Score() uint32 {
	switch c.Rank() {
	case 5:
		return 5
	case 10, 13:
		return 10
	}
	return 0
}

var cardNames = [5][11]string{
	{"D5", "D6", "D7", "D8", "D9", "DT", "DJ", "DQ", "DK", "DA", "D2"},
	{"C5", "C6", "C7", "C8", "C9", "CT", "CJ", "CQ", "CK", "CA", "C2"},
	{"H5", "H6", "H7", "H8", "H9", "HT", "HJ", "HQ", "HK", "HA", "H2"},
	{"S5", "S6", "S7", "S8", "S9", "ST", "SJ", "SQ", "SK", "SA", "S2"},
	{"JB", "JR"},
}

func (c Card) String() string {
	suit, rank := c.Suit(), c.Rank()
	if suit >= SuitJoker {
		if rank < 14 || rank > 15 {
			return "??"
		}
		return cardNames[4][rank-14]
	}
	if suit < 1 || rank < 5 || rank > 15 {
		return "??"
	}
	return cardNames[suit-1][rank-5]
}

func sortCardsDesc(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i] > cards[j] })
}

// isSubCardString cards 是否为 hand 的子序列（两者都按降序排列）
func isSubCardString(hand, cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	i := 0
	for _, ca := range hand {
		if ca == cards[i] {
			if i++; i == len(cards) {
				return true
			}
		}
	}
	return false
}

// isSubCardStringUnsorted hand 未排序时的子序列检测，不改动原切片
func isSubCardStringUnsorted(hand, cards []Card) bool {
	sorted := make([]Card, len(hand))
	copy(sorted, hand)
	sortCardsDesc(sorted)
	return isSubCardString(sorted, cards)
}

// deleteSubCardString 从 hand 中删掉子序列 cards，调用前需保证包含关系
func deleteSubCardString(hand []Card, cards []Card) []Card {
	out := hand[:0]
	i := 0
	for _, ca := range hand {
		if i < len(cards) && ca == cards[i] {
			i++
		} else {
			out = append(out, ca)
		}
	}
	return out
}
