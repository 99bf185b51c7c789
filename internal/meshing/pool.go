package meshing

import (
	"context"
	"fmt"
	"sync"
)

// MeshJob is a request to build one named mesh.
type MeshJob struct {
	Name  string
	Build func() (*Mesh, error)
	// Result channel - will be sent the result when done
	ResultChan chan MeshResult
}

// MeshResult carries a finished mesh, validated and with normals.
type MeshResult struct {
	Name  string
	Mesh  *Mesh
	Error error
}

// WorkerPool builds procedural meshes on background goroutines.
type WorkerPool struct {
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool starts workers goroutines reading from a queue of queueSize.
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		jobQueue: make(chan MeshJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// SubmitJob queues a job without blocking. It returns false if the queue is full.
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking queues a job, waiting for room unless the pool shuts down.
func (p *WorkerPool) SubmitJobBlocking(job MeshJob) {
	select {
	case p.jobQueue <- job:
	case <-p.ctx.Done():
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := run(job)
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func run(job MeshJob) (res MeshResult) {
	res.Name = job.Name
	defer func() {
		if r := recover(); r != nil {
			res.Mesh = nil
			res.Error = fmt.Errorf("mesh %s: build panicked: %v", job.Name, r)
		}
	}()
	m, err := job.Build()
	if err != nil {
		res.Error = fmt.Errorf("mesh %s: %w", job.Name, err)
		return res
	}
	if m == nil {
		res.Error = fmt.Errorf("mesh %s: build returned nil", job.Name)
		return res
	}
	if m.Name == "" {
		m.Name = job.Name
	}
	if err := m.Validate(); err != nil {
		res.Error = err
		return res
	}
	m.EnsureNormals()
	m.EnsureTexCoords()
	res.Mesh = m
	return res
}

// Shutdown stops the workers and waits for them to exit.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// GetQueueLength returns the number of queued jobs.
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}

// BuildAll builds every named mesh on the pool and returns them keyed by
// name. The first error is returned after all jobs finish.
func (p *WorkerPool) BuildAll(builders map[string]func() (*Mesh, error)) (map[string]*Mesh, error) {
	results := make(chan MeshResult, len(builders))
	for name, build := range builders {
		p.SubmitJobBlocking(MeshJob{Name: name, Build: build, ResultChan: results})
	}
	out := make(map[string]*Mesh, len(builders))
	var firstErr error
	for range builders {
		select {
		case r := <-results:
			if r.Error != nil {
				if firstErr == nil {
					firstErr = r.Error
				}
				continue
			}
			out[r.Name] = r.Mesh
		case <-p.ctx.Done():
			return out, fmt.Errorf("mesh pool shut down: %w", p.ctx.Err())
		}
	}
	return out, firstErr
}
