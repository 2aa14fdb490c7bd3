package sheets

import (
	"database/sql"
	"time"
)

type storeTask struct {
	run  func(*sql.DB) (interface{}, error)
	resp chan storeResult
}

type storeResult struct {
	data interface{}
	err  error
}

// storeQueue serializes all access to the sqlite file through a single
// worker goroutine, retrying transient failures with a growing delay.
type storeQueue struct {
	tasks      chan storeTask
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
}

func newStoreQueue(db *sql.DB) *storeQueue {
	q := &storeQueue{
		tasks:      make(chan storeTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: 100 * time.Millisecond,
	}
	go q.worker()
	return q
}

func newStoreQueueForTest(db *sql.DB) *storeQueue {
	q := &storeQueue{
		tasks:      make(chan storeTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: time.Millisecond,
	}
	go q.worker()
	return q
}

func (q *storeQueue) execute(run func(*sql.DB) (interface{}, error)) (interface{}, error) {
	resp := make(chan storeResult, 1)
	q.tasks <- storeTask{run: run, resp: resp}
	result := <-resp
	return result.data, result.err
}

func (q *storeQueue) worker() {
	for task := range q.tasks {
		task.resp <- q.runWithRetry(task)
	}
}

func (q *storeQueue) runWithRetry(task storeTask) storeResult {
	var lastErr error
	for attempt := 0; attempt < q.maxRetry; attempt++ {
		data, err := task.run(q.db)
		if err == nil {
			return storeResult{data: data}
		}
		lastErr = err
		if attempt < q.maxRetry-1 {
			time.Sleep(time.Duration(attempt+1) * q.retryDelay)
		}
	}
	return storeResult{err: lastErr}
}

func (q *storeQueue) close() {
	close(q.tasks)
}
