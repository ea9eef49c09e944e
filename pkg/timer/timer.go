// Package timer 提供以 id 为键的定时器引擎。
// 同一 id 重复注册视为替换并重置触发时间，常用于牌桌状态切换时接管上一个定时器。
package timer

import (
	"math"
	"sync"
	"time"

	"github.com/yola1107/kratos/v2/library/work"
)

// RepeatForever 无限次触发
const RepeatForever uint32 = math.MaxUint32

const tickPrecision = time.Millisecond

// Callback 定时回调，elapsed 为距上次触发的毫秒数（首次触发从注册时刻起算）
type Callback func(elapsed int64)

type item struct {
	id       uint64
	interval time.Duration
	repeat   uint32
	cb       Callback
	last     time.Time // 上次触发时刻，未触发过为注册/替换时刻
	next     time.Time // 下次触发时刻
}

// Engine 定时器引擎，回调在引擎自己的协程里执行
type Engine struct {
	mu     sync.Mutex
	items  map[uint64]*item
	quit   chan struct{}
	once   sync.Once
	closed bool
}

func New() *Engine {
	e := &Engine{
		items: make(map[uint64]*item),
		quit:  make(chan struct{}),
	}
	go e.run()
	return e
}

// Register 注册定时器。id 为 0 非法，返回 0；
// id 已存在时替换旧定时器并重新计时。interval 单位毫秒。
func (e *Engine) Register(id uint64, interval, repeat uint32, cb Callback) uint64 {
	if id == 0 || cb == nil || repeat == 0 {
		return 0
	}

	now := time.Now()
	it := &item{
		id:       id,
		interval: time.Duration(interval) * time.Millisecond,
		repeat:   repeat,
		cb:       cb,
		last:     now,
	}
	it.next = now.Add(it.interval)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0
	}
	e.items[id] = it
	return id
}

// Unregister 取消定时器，返回是否存在
func (e *Engine) Unregister(id uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.items[id]; ok {
		delete(e.items, id)
		return true
	}
	return false
}

// Len 当前注册的定时器数量
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Stop 停止引擎，不再触发任何回调
func (e *Engine) Stop() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.items = make(map[uint64]*item)
		e.mu.Unlock()
		close(e.quit)
	})
}

func (e *Engine) run() {
	ticker := time.NewTicker(tickPrecision)
	defer ticker.Stop()
	for {
		select {
		case <-e.quit:
			return
		case now := <-ticker.C:
			e.tick(now)
		}
	}
}

func (e *Engine) tick(now time.Time) {
	// 先在锁内摘出到期项，回调在锁外执行：
	// 回调里会拿牌桌锁并重新 Register/Unregister，不能持锁回调
	e.mu.Lock()
	var due []*item
	for _, it := range e.items {
		if !it.next.After(now) {
			due = append(due, it)
		}
	}
	e.mu.Unlock()

	for _, it := range due {
		e.fire(it, now)
	}
}

func (e *Engine) fire(it *item, now time.Time) {
	func() {
		defer work.RecoverFromError(nil)
		it.cb(now.Sub(it.last).Milliseconds())
	}()

	e.mu.Lock()
	defer e.mu.Unlock()
	// 回调期间可能被替换成新的 item 或被注销，此时不做任何收尾
	if cur, ok := e.items[it.id]; !ok || cur != it {
		return
	}
	it.last = now
	if it.repeat != RepeatForever {
		it.repeat--
		if it.repeat == 0 {
			delete(e.items, it.id)
			return
		}
	}
	it.next = it.next.Add(it.interval)
}
