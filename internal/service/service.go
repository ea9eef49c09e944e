package service

import (
	"github.com/google/wire"

	"github.com/longguai/game-server/internal/biz/room"
	"github.com/longguai/game-server/internal/conf"
	"github.com/longguai/game-server/internal/server"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewGameService, wire.Bind(new(server.Handler), new(*GameService)))

// GameService 把接入层的会话事件桥接到房间
type GameService struct {
	room *room.Room
}

func NewGameService(c *conf.Room) (*GameService, func(), error) {
	s := &GameService{room: room.New(c)}
	return s, s.Close, nil
}

func (s *GameService) Close() { s.room.Close() }

func (s *GameService) OnSessionOpen(sess *server.Session) {
	s.room.OnSessionOpen(sess)
}

func (s *GameService) OnSessionClose(sessionID string) {
	s.room.OnSessionClose(sessionID)
}

func (s *GameService) OnSessionMessage(sessionID string, frame []byte) error {
	return s.room.Dispatch(sessionID, frame)
}
