package worker

import (
	"sync"

	"github.com/labstack/gommon/log"
)

// Task 交給背景 worker 執行的工作，例如登入後更新 last_login_at
type Task func()

// Pool 固定數量的背景 worker
type Pool interface {
	Submit(Task)
	Stop()
}

// NewPool 建立 n 個 worker 的 pool；n<=0 視為 1
func NewPool(n int) Pool {
	if n <= 0 {
		n = 1
	}
	p := &pool{jobs: make(chan Task, n*queuePerWorker)}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.loop()
	}
	return p
}

const queuePerWorker = 16

type pool struct {
	mu      sync.RWMutex
	stopped bool
	jobs    chan Task
	wg      sync.WaitGroup
}

func (p *pool) loop() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(job)
	}
}

// run 單一工作 panic 時只記錄，不影響其他工作
func (p *pool) run(job Task) {
	if job == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("worker task panic: %v", r)
		}
	}()
	job()
}

// Submit 不阻塞呼叫端；佇列已滿或 Stop 之後送入的工作直接丟棄並記錄
func (p *pool) Submit(t Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		log.Warn("worker pool stopped, task dropped")
		return
	}
	select {
	case p.jobs <- t:
	default:
		log.Warnf("worker queue full (%d), task dropped", cap(p.jobs))
	}
}

// Stop 等待已送入的工作全部完成
func (p *pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
