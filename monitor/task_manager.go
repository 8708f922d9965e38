package monitor

import (
	"log"
	"sync"
	"time"

	"catlink/models"
)

// TaskManager runs operator-triggered monitor passes asynchronously so the
// HTTP handler can return a task ID immediately and the caller can poll.
type TaskManager struct {
	monitor    *CatalogMonitor
	tasks      map[string]*models.MonitorTask
	taskQueue  chan *models.MonitorTask
	workers    int
	maxWorkers int
	mutex      sync.RWMutex
	stopChan   chan struct{}
}

// NewTaskManager creates and starts a task manager
func NewTaskManager(monitor *CatalogMonitor, maxWorkers int) *TaskManager {
	tm := &TaskManager{
		monitor:    monitor,
		tasks:      make(map[string]*models.MonitorTask),
		taskQueue:  make(chan *models.MonitorTask, 50),
		maxWorkers: maxWorkers,
		stopChan:   make(chan struct{}),
	}

	go tm.processTasks()
	log.Printf("Monitor task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitRun queues a monitor run for one retailer/category
func (tm *TaskManager) SubmitRun(retailer, category string) *models.MonitorTask {
	task := models.NewMonitorTask(retailer, category)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("Monitor task %s submitted for %s/%s", task.ID, retailer, category)
	default:
		task.Fail("task queue is full")
		log.Printf("Failed to submit monitor task %s: queue full", task.ID)
	}

	return task
}

// GetTask returns a task by ID
func (tm *TaskManager) GetTask(taskID string) (*models.MonitorTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	return task, exists
}

// GetActiveTasks returns all queued or running tasks
func (tm *TaskManager) GetActiveTasks() []*models.MonitorTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var active []*models.MonitorTask
	for _, task := range tm.tasks {
		if task.IsActive() {
			active = append(active, task)
		}
	}
	return active
}

// CleanupOldTasks removes completed tasks older than maxAge
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
		}
	}
}

// processTasks dispatches queued tasks to workers and cleans up old ones
func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			tm.mutex.Lock()
			if tm.workers < tm.maxWorkers {
				tm.workers++
				tm.mutex.Unlock()
				go tm.worker(task)
			} else {
				tm.mutex.Unlock()
				// at capacity, wait briefly and requeue
				go func() {
					time.Sleep(time.Second)
					select {
					case tm.taskQueue <- task:
					default:
						task.Fail("system overloaded, unable to process task")
					}
				}()
			}

		case <-ticker.C:
			tm.CleanupOldTasks(time.Hour)

		case <-tm.stopChan:
			log.Println("Monitor task manager stopped")
			return
		}
	}
}

// worker runs a single monitor pass
func (tm *TaskManager) worker(task *models.MonitorTask) {
	defer func() {
		tm.mutex.Lock()
		tm.workers--
		tm.mutex.Unlock()
	}()

	task.Start()
	log.Printf("Monitor task %s started for %s/%s", task.ID, task.Retailer, task.Category)

	result, err := tm.monitor.RunOnce(task.Retailer, task.Category)
	if err != nil {
		task.Fail(err.Error())
		log.Printf("Monitor task %s failed: %v", task.ID, err)
		return
	}

	task.Complete(result)
	log.Printf("Monitor task %s completed in %v", task.ID, task.Duration())
}

// Stop stops the task manager
func (tm *TaskManager) Stop() {
	close(tm.stopChan)
}
