package main

import (
	"flag"
	xhttp "net/http"
	_ "net/http/pprof"
	"os"
	"runtime"

	"github.com/yola1107/kratos/v2"
	"github.com/yola1107/kratos/v2/library/log/zap"
	zconf "github.com/yola1107/kratos/v2/library/log/zap/conf"
	"github.com/yola1107/kratos/v2/log"

	"github.com/longguai/game-server/internal/conf"
	"github.com/longguai/game-server/internal/server"
)

var (
	Name     = conf.Name
	Version  = conf.Version
	flagconf string // -conf path
	id, _    = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "", "config path, e.g. -conf configs/config.yaml")
}

func newApp(logger log.Logger, ts *server.TCPServer) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			ts,
		),
	)
}

func main() {
	flag.Parse()

	go func() {
		runtime.GOMAXPROCS(runtime.NumCPU())
		runtime.SetBlockProfileRate(1) // 设置阻塞分析采样率 (每纳秒)
		log.Fatal(xhttp.ListenAndServe(":6060", nil))
	}()

	bc, err := conf.LoadConfig(flagconf)
	if err != nil {
		panic(err)
	}

	logger := zap.NewLogger(zconf.DefaultConfig(zconf.WithAppName(conf.Name)))
	log.SetLogger(logger)
	defer logger.Close()

	app, cleanup, err := wireApp(bc.Server, bc.Room, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
