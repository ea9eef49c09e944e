package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/yola1107/kratos/v2/library/work"
	"github.com/yola1107/kratos/v2/log"

	"github.com/longguai/game-server/internal/conf"
	"github.com/longguai/game-server/pkg/protocol"
)

// Handler 业务侧会话回调，出错的消息由服务器断开会话
type Handler interface {
	OnSessionOpen(s *Session)
	OnSessionClose(sessionID string)
	OnSessionMessage(sessionID string, frame []byte) error
}

// TCPServer 监听端口并托管所有会话的生命周期
type TCPServer struct {
	c       *conf.Server
	handler Handler

	lis      net.Listener
	mu       sync.Mutex
	sessions map[string]*Session

	loop  work.Loop
	sched work.Scheduler

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

type loopExecutor struct{ loop work.Loop }

func (e loopExecutor) Post(job func()) { e.loop.Post(job) }

func NewTCPServer(c *conf.Server, h Handler) *TCPServer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &TCPServer{
		c:        c,
		handler:  h,
		sessions: make(map[string]*Session),
		loop:     work.NewLoop(work.WithSize(c.LoopSize)),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.sched = work.NewHeapScheduler(
		work.WithHeapExecutor(loopExecutor{s.loop}),
		work.WithHeapContext(ctx),
	)
	return s
}

func (s *TCPServer) Start(ctx context.Context) error {
	if err := s.loop.Start(); err != nil {
		return err
	}

	lis, err := net.Listen("tcp", s.c.Addr)
	if err != nil {
		return err
	}
	s.lis = lis
	log.Infof("tcp server listening on %s", s.c.Addr)

	if s.c.IdleTimeout > 0 {
		s.sched.Forever(time.Minute, s.sweepIdle)
	}

	go s.accept()
	return nil
}

func (s *TCPServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.lis != nil {
			s.lis.Close()
		}

		s.mu.Lock()
		sessions := make([]*Session, 0, len(s.sessions))
		for _, sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		s.mu.Unlock()
		for _, sess := range sessions {
			sess.Close()
		}

		s.sched.Stop()
		s.loop.Stop()
		log.Infof("tcp server stopped")
	})
	return nil
}

// Addr 实际监听地址，测试里用 ":0" 起服后取端口
func (s *TCPServer) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

func (s *TCPServer) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *TCPServer) accept() {
	for {
		conn, err := s.lis.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			log.Errorf("accept on %s: %v", s.c.Addr, err)
			return
		}
		go s.serve(conn)
	}
}

func (s *TCPServer) serve(conn net.Conn) {
	defer work.RecoverFromError(nil)

	sess := newSession(conn, s.c.SendQueue)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Infof("session %s connected from %s:%d", sess.id, sess.remoteIP, sess.remotePort)
	s.handler.OnSessionOpen(sess)

	go sess.writeLoop()
	s.readLoop(sess)

	sess.Close()
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.handler.OnSessionClose(sess.id)
	log.Infof("session %s disconnected", sess.id)
}

func (s *TCPServer) readLoop(sess *Session) {
	for {
		frame, err := protocol.ReadRawFrame(sess.conn, s.c.MaxFrameLen)
		if err != nil {
			return
		}
		sess.touch()
		if err = s.handler.OnSessionMessage(sess.id, frame); err != nil {
			log.Warnf("session %s: %v, closing", sess.id, err)
			return
		}
	}
}

// sweepIdle 关掉超时没有消息的会话
func (s *TCPServer) sweepIdle() {
	s.mu.Lock()
	var idle []*Session
	for _, sess := range s.sessions {
		if sess.idleSeconds() > s.c.IdleTimeout {
			idle = append(idle, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		log.Infof("session %s idle %ds, kick", sess.id, sess.idleSeconds())
		sess.Close()
	}
}
