package server

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/yola1107/kratos/v2/log"
)

const writeTimeout = 10 * time.Second

// Session 一条客户端连接。写走独立队列，Deliver 非阻塞
type Session struct {
	id   string
	conn net.Conn

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once

	lastActive atomic.Int64 // unix 秒

	remoteIP   string
	remotePort int
}

func newSession(conn net.Conn, queue int) *Session {
	s := &Session{
		id:     uuid.New().String(),
		conn:   conn,
		sendCh: make(chan []byte, queue),
		done:   make(chan struct{}),
	}
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		s.remoteIP = addr.IP.String()
		s.remotePort = addr.Port
	}
	s.touch()
	return s
}

func (s *Session) ID() string       { return s.id }
func (s *Session) RemoteIP() string { return s.remoteIP }
func (s *Session) RemotePort() int  { return s.remotePort }

func (s *Session) touch() { s.lastActive.Store(time.Now().Unix()) }

func (s *Session) idleSeconds() int64 { return time.Now().Unix() - s.lastActive.Load() }

// Deliver 投递一个已编码的包，队列满或已关闭返回 false
func (s *Session) Deliver(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.sendCh <- data:
		return true
	default:
		log.Warnf("session %s send queue full, drop frame", s.id)
		return false
	}
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *Session) writeLoop() {
	for {
		select {
		case frame := <-s.sendCh:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := s.conn.Write(frame); err != nil {
				log.Warnf("session %s write: %v", s.id, err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}
