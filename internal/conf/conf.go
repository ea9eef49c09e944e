package conf

import (
	"github.com/yola1107/kratos/v2/config"
	"github.com/yola1107/kratos/v2/config/file"
)

const Name = "u5tk"
const Version = "v0.0.1"

// Bootstrap 服务启动配置
type Bootstrap struct {
	Server *Server `json:"server"`
	Room   *Room   `json:"room"`
}

// Server 接入层配置
type Server struct {
	Addr        string `json:"addr"`        // 监听地址
	MaxFrameLen uint32 `json:"maxFrameLen"` // 单包长度上限
	SendQueue   int    `json:"sendQueue"`   // 每会话发送队列长度
	IdleTimeout int64  `json:"idleTimeout"` // 空闲断开秒数，0 不检查
	LoopSize    int    `json:"loopSize"`    // 任务池大小
}

// Room 房间配置
type Room struct {
	TableNum int32  `json:"tableNum"`
	LogDir   string `json:"logDir"`
}

func Default() *Bootstrap {
	return &Bootstrap{
		Server: &Server{
			Addr:        ":6000",
			MaxFrameLen: 64 * 1024,
			SendQueue:   256,
			IdleTimeout: 300,
			LoopSize:    1024,
		},
		Room: &Room{
			TableNum: 100,
			LogDir:   "./logs",
		},
	}
}

// LoadConfig 加载配置，flagconf 为空时使用默认值
func LoadConfig(flagconf string) (*Bootstrap, error) {
	bc := Default()
	if flagconf == "" {
		return bc, nil
	}

	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	if err := c.Load(); err != nil {
		return nil, err
	}
	if err := c.Scan(bc); err != nil {
		return nil, err
	}
	return bc, nil
}
