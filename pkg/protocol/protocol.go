package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// 包结构，均为小端
// +-------+-------+-------+-------+
// | length|  cmd  |  tag  | body  |
// +-------+-------+-------+-------+
// length 为 cmd+tag+body 的总长度
const (
	HeaderLen  = 12 // length + cmd + tag
	lengthSize = 4

	// DefaultMaxFrameLen 单包最大长度（length 字段值）
	DefaultMaxFrameLen uint32 = 64 * 1024
)

// PushTag 服务器主动推送使用的 tag
const PushTag uint32 = 0xFFFFFFFF

// 房间命令
const (
	CmdEnter          uint32 = 3000 // 进入房间
	CmdSitDown        uint32 = 3001 // 坐下
	CmdStandUp        uint32 = 3002 // 站起
	CmdHandsUp        uint32 = 3003 // 准备
	CmdChatInRoom     uint32 = 3004 // 房间聊天
	CmdForcedStandUp  uint32 = 3005 // 强制站起（推送）
)

// 游戏命令
const (
	CmdBring          uint32 = 4001 // 出牌
	CmdShowTrump      uint32 = 4002 // 叫主/反主
	CmdPass           uint32 = 4003 // 不叫/不反
	CmdExchange       uint32 = 4004 // 埋底
	CmdAskDefeat      uint32 = 4005 // 询问投降
	CmdAgreeDefeat    uint32 = 4006 // 同意投降
	CmdDisagreeDefeat uint32 = 4007 // 拒绝投降
	CmdRefresh        uint32 = 4009 // 牌桌快照（推送）
)

// Encode 编码一个完整包
func Encode(cmd, tag uint32, body []byte) []byte {
	buf := make([]byte, HeaderLen+len(body))
	binary.LittleEndian.PutUint32(buf[0:], uint32(8+len(body)))
	binary.LittleEndian.PutUint32(buf[4:], cmd)
	binary.LittleEndian.PutUint32(buf[8:], tag)
	copy(buf[HeaderLen:], body)
	return buf
}

// Marshal 将 v 序列化为 JSON 后编码
func Marshal(cmd, tag uint32, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal cmd=%d: %w", cmd, err)
	}
	return Encode(cmd, tag, body), nil
}

// ModifyTag 原地改写包的 tag，用于广播包转发给请求者时回填请求 tag
func ModifyTag(frame []byte, tag uint32) {
	if len(frame) >= HeaderLen {
		binary.LittleEndian.PutUint32(frame[8:], tag)
	}
}

// Frame 解析一个完整包（不含黏包处理）
func Frame(data []byte) (cmd, tag uint32, body []byte, err error) {
	if len(data) < HeaderLen {
		return 0, 0, nil, fmt.Errorf("frame too short: %d", len(data))
	}
	length := binary.LittleEndian.Uint32(data[0:])
	if int(length) != len(data)-lengthSize {
		return 0, 0, nil, fmt.Errorf("frame length mismatch: head=%d actual=%d", length, len(data)-lengthSize)
	}
	cmd = binary.LittleEndian.Uint32(data[4:])
	tag = binary.LittleEndian.Uint32(data[8:])
	return cmd, tag, data[HeaderLen:], nil
}

// ReadRawFrame 从流中读出一个完整包，保留包头原样返回
func ReadRawFrame(r io.Reader, maxLen uint32) ([]byte, error) {
	var head [lengthSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(head[0:])
	if maxLen == 0 {
		maxLen = DefaultMaxFrameLen
	}
	if length < 8 || length > maxLen {
		return nil, fmt.Errorf("bad frame length: %d", length)
	}
	frame := make([]byte, lengthSize+length)
	copy(frame, head[:])
	if _, err := io.ReadFull(r, frame[lengthSize:]); err != nil {
		return nil, err
	}
	return frame, nil
}

// ReadFrame 从流中读出一个完整包
func ReadFrame(r io.Reader, maxLen uint32) (cmd, tag uint32, body []byte, err error) {
	var head [HeaderLen]byte
	if _, err = io.ReadFull(r, head[:lengthSize]); err != nil {
		return 0, 0, nil, err
	}
	length := binary.LittleEndian.Uint32(head[0:])
	if maxLen == 0 {
		maxLen = DefaultMaxFrameLen
	}
	if length < 8 || length > maxLen {
		return 0, 0, nil, fmt.Errorf("bad frame length: %d", length)
	}
	if _, err = io.ReadFull(r, head[lengthSize:]); err != nil {
		return 0, 0, nil, err
	}
	cmd = binary.LittleEndian.Uint32(head[4:])
	tag = binary.LittleEndian.Uint32(head[8:])
	body = make([]byte, length-8)
	if _, err = io.ReadFull(r, body); err != nil {
		return 0, 0, nil, err
	}
	return cmd, tag, body, nil
}
