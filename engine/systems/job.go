package systems

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/fyrebird/engine/core"
)

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = errors.New("job system is shut down")

// JobTask is a unit of background work. Run executes on a worker goroutine;
// OnComplete and OnFailure execute on the goroutine calling Update.
type JobTask struct {
	ID         uuid.UUID
	Run        func(ctx context.Context) (any, error)
	OnComplete func(result any)
	OnFailure  func(err error)
}

type completion struct {
	task   JobTask
	result any
	err    error
}

// JobSystem runs jobs on a fixed pool of workers and hands their outcome back
// to the simulation goroutine on the next Update.
type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	// closeMu guards closed and the queue against being closed during a send.
	closeMu sync.RWMutex
	closed  bool

	mu      sync.Mutex
	pending int
	done    []completion
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := js.run(job)
				if err != nil {
					core.LogError("job %s failed: %s", job.ID, err)
				}
				js.mu.Lock()
				js.done = append(js.done, completion{task: job, result: result, err: err})
				js.mu.Unlock()
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(js.ctx)
}

/**
 * @brief Shuts the job system down. Running jobs see their context cancelled;
 * queued jobs still run. Completions not collected by Update are dropped.
 */
func (js *JobSystem) Shutdown() error {
	js.cancel()

	js.closeMu.Lock()
	if js.closed {
		js.closeMu.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.closeMu.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle: runs the
 * callbacks of every job finished since the previous call and returns how
 * many there were.
 */
func (js *JobSystem) Update() int {
	js.mu.Lock()
	done := js.done
	js.done = nil
	js.pending -= len(done)
	js.mu.Unlock()

	for _, c := range done {
		if c.err != nil {
			if c.task.OnFailure != nil {
				c.task.OnFailure(c.err)
			}
			continue
		}
		if c.task.OnComplete != nil {
			c.task.OnComplete(c.result)
		}
	}
	return len(done)
}

// Pending returns the number of submitted jobs whose callbacks have not run
// yet.
func (js *JobSystem) Pending() int {
	js.mu.Lock()
	defer js.mu.Unlock()
	return js.pending
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) (uuid.UUID, error) {
	if jt.Run == nil {
		return uuid.Nil, fmt.Errorf("job has nothing to run")
	}
	if jt.ID == uuid.Nil {
		jt.ID = uuid.New()
	}

	js.closeMu.RLock()
	defer js.closeMu.RUnlock()
	if js.closed {
		return uuid.Nil, ErrJobSystemClosed
	}
	js.mu.Lock()
	js.pending++
	js.mu.Unlock()
	js.jobQueue <- jt
	return jt.ID, nil
}
