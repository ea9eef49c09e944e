package logic

// ErrorType 游戏操作结果码
type ErrorType int32

const (
	Success                        ErrorType = iota // 成功
	UnknownError                                    // 未知错误
	StateError                                      // 状态错误
	NotYourTurn                                     // 没轮到你
	IllegalCards                                    // 手上没对应的牌
	IllegalPos                                      // 非法的座位
	UncharteredShowCount                            // 不合规则的叫主用牌数量
	ShowCardsShouldContainJoker                     // 叫主的牌必须包含王
	ShowCardsShouldHaveGrade                        // 叫主的牌必须包含级牌
	ShowCardsShouldContain2                         // 叫主的牌必须包含2
	RebelNeedTwoGrade                               // 反主的牌必须包含两张级牌
	RebelShouldGreaterThanOrigin                    // 反主的花色必须大于原花色
	NoAskDefeat                                     // 庄家没有发起投降询问
	DefeatHasAsked                                  // 已经问过了
	UncharteredExchangeCount                        // 埋牌数量不对
	ExchangedShouldNotContainScores                 // 不能埋分
	UncharteredBringCount                           // 出牌数量不正确
	UncharteredBringType                            // 出牌类型不正确
	FollowBringShouldMatchSuit                      // 出牌花色不正确
	FollowBringShouldMatchPairCount                 // 出牌对子数不正确
)

var errorReasons = map[ErrorType]string{
	Success:                         "成功",
	UnknownError:                    "未知错误",
	StateError:                      "状态错误",
	NotYourTurn:                     "没轮到你",
	IllegalCards:                    "手上没对应的牌",
	IllegalPos:                      "非法的座位",
	UncharteredShowCount:            "不合规则的叫主用牌数量",
	ShowCardsShouldContainJoker:     "叫主的牌必须包含王",
	ShowCardsShouldHaveGrade:        "叫主的牌必须包含级牌",
	ShowCardsShouldContain2:         "叫主的牌必须包含2",
	RebelNeedTwoGrade:               "反主的牌必须包含两张级牌",
	RebelShouldGreaterThanOrigin:    "反主的花色必须大于原花色",
	NoAskDefeat:                     "庄家没有发起投降询问",
	DefeatHasAsked:                  "已经问过了",
	UncharteredExchangeCount:        "埋牌数量不对",
	ExchangedShouldNotContainScores: "不能埋分",
	UncharteredBringCount:           "出牌数量不正确",
	UncharteredBringType:            "出牌类型不正确",
	FollowBringShouldMatchSuit:      "出牌花色不正确",
	FollowBringShouldMatchPairCount: "出牌对子数不正确",
}

func (e ErrorType) String() string {
	if s, ok := errorReasons[e]; ok {
		return s
	}
	return "未知错误"
}

// OK 是否成功
func (e ErrorType) OK() bool { return e == Success }
