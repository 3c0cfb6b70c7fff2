package job

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vanorg/vanorg"
	"github.com/vanorg/vanorg/queue/file"
	"github.com/vanorg/vanorg/queue/memory"
)

// NewWorker builds the background worker for a store. Pending tasks go
// to a crash-safe disk queue so an upload accepted just before a
// restart is still processed after it; the memory queue catches pushes
// when the disk is unavailable.
func NewWorker(store *Store, config ...Config) (*Worker, error) {
	cfg := configDefault(config...)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if cfg.QueueWorkspace == "" {
		cfg.QueueWorkspace = filepath.Join(store.Root(), "queue")
	}
	fileQueue, err := file.Open(&Task{}, file.Config{
		Workspace:     cfg.QueueWorkspace,
		Name:          "jobs",
		MaxQuarantine: cfg.MaxQuarantine,
	})
	if err != nil {
		return nil, fmt.Errorf("open job queue: %w", err)
	}

	deadDir := cfg.DeadLetterDir
	if deadDir == "" {
		deadDir = filepath.Join(store.Root(), "dead")
	}
	dead, err := NewFileDeadLetter(deadDir,
		func(jobID, cause string, err error) {
			logger.Errorw("failed to archive dead job", "jid", jobID, "cause", cause, "error", err)
		},
		func(err error) {
			logger.Errorw("failed to read dead letter dir", "error", err)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open dead letter dir: %w", err)
	}

	return &Worker{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		fileQueue:   fileQueue,
		memoryQueue: memory.NewQueue(),
		dead:        dead,
		stopSig:     make(chan bool),
	}, nil
}

// Worker drains the pending-job queues and runs the pipeline on each
// job, one batch per tick.
type Worker struct {
	cfg Config

	logger *zap.SugaredLogger
	store  *Store

	fileQueue   vanorg.Queue
	memoryQueue vanorg.Queue
	dead        vanorg.DeadLetter

	stopSig  chan bool
	shutdown int32
}

// Stop halts the run loop. With drainTail the worker finishes every
// queued job first; otherwise memory-queued tasks are flushed back to
// disk for the next start.
func (w *Worker) Stop(drainTail bool) {
	atomic.StoreInt32(&w.shutdown, 1)
	w.stopSig <- drainTail
	<-w.stopSig
}

// Push enqueues a job for processing.
func (w *Worker) Push(jid string) error {
	if atomic.LoadInt32(&w.shutdown) != 0 {
		return errors.New("worker shutdown")
	}

	err := w.fileQueue.Push(NewTask(jid))
	if err != nil {
		if w.cfg.UseMemoryFallback {
			w.logger.Warnw("writing to disk failed", "error", err)

			// the memory queue does not return an error
			_ = w.memoryQueue.Push(NewTask(jid))
			return nil
		}
		return fmt.Errorf("writing to disk failed: %v", err)
	}
	return nil
}

// Len reports how many jobs are waiting.
func (w *Worker) Len() int {
	return w.fileQueue.Len() + w.memoryQueue.Len()
}

func (w *Worker) process(jid string) {
	if err := w.cfg.Process(w.store, jid); err != nil {
		w.logger.Warnw("job failed", "jid", jid, "error", err)
		w.dead.Dump(jid, err.Error())
		return
	}
	w.logger.Infow("job done", "jid", jid)
}

func (w *Worker) drain(limit int) {
	tasks, _ := w.memoryQueue.Eject(limit)
	remaining := limit - len(tasks)
	if limit < 0 {
		remaining = -1
	}
	if remaining != 0 {
		fileTasks, err := w.fileQueue.Eject(remaining)
		if err != nil {
			w.logger.Warnw("problem ejecting queue from disk", "error", err)
		}
		tasks = append(tasks, fileTasks...)
	}

	for _, t := range tasks {
		task, ok := t.(vanorg.Task)
		if !ok {
			w.logger.Errorw("unexpected task type in queue", "task", fmt.Sprintf("%T", t))
			continue
		}
		w.process(task.JobID())
	}
}

// redrive puts archived dead jobs back on the queue. Each gets one
// retry per process start; a job that fails again is dumped again and
// waits for the next start.
func (w *Worker) redrive() {
	for {
		exist, jid, cause := w.dead.Return()
		if !exist {
			return
		}
		w.logger.Warnw("re-queueing dead job", "jid", jid, "cause", cause)
		if err := w.fileQueue.Push(NewTask(jid)); err != nil {
			w.logger.Errorw("failed to re-queue dead job", "jid", jid, "error", err)
			w.dead.Dump(jid, cause)
			return
		}
	}
}

// Run re-drives dead jobs, then starts the worker loop in its own
// goroutine.
func (w *Worker) Run() {
	w.redrive()

	t := time.NewTicker(w.cfg.PollInterval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.drain(w.cfg.PollLimit)
			case drainTail := <-w.stopSig:
				if drainTail {
					w.drain(-1)
					close(w.stopSig)
					return
				}

				tasks, _ := w.memoryQueue.Eject(-1)
				for _, t := range tasks {
					task, ok := t.(vanorg.Task)
					if !ok {
						continue
					}
					if err := w.fileQueue.Push(NewTask(task.JobID())); err != nil {
						w.logger.Errorw("job lost! fatal error writing to disk when stopping worker",
							"error", err,
							"jid", task.JobID(),
						)
					}
				}
				close(w.stopSig)
				return
			}
		}
	}()
}
