package scheduler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/starling-data/starling/pkg/pipeline"
	"go.uber.org/zap"
)

type TaskInstanceStatus int

const (
	Pending TaskInstanceStatus = iota
	Queued
	Running
	Failed
	UpstreamFailed
	Succeeded
	Skipped
)

func (s TaskInstanceStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Failed:
		return "failed"
	case UpstreamFailed:
		return "upstream_failed"
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

type TaskInstance struct {
	ID       string
	Pipeline *pipeline.Pipeline
	Asset    *pipeline.Asset

	status     TaskInstanceStatus
	upstream   []*TaskInstance
	downstream []*TaskInstance
}

func (t *TaskInstance) GetStatus() TaskInstanceStatus {
	return t.status
}

func (t *TaskInstance) MarkAs(status TaskInstanceStatus) {
	t.status = status
}

func (t *TaskInstance) Completed() bool {
	return t.status == Failed || t.status == Succeeded || t.status == UpstreamFailed || t.status == Skipped
}

func (t *TaskInstance) GetUpstream() []*TaskInstance {
	return t.upstream
}

func (t *TaskInstance) GetDownstream() []*TaskInstance {
	return t.downstream
}

func (t *TaskInstance) AddUpstream(task *TaskInstance) {
	t.upstream = append(t.upstream, task)
}

func (t *TaskInstance) AddDownstream(task *TaskInstance) {
	t.downstream = append(t.downstream, task)
}

type TaskExecutionResult struct {
	Instance *TaskInstance
	Error    error
}

type Scheduler struct {
	logger           *zap.SugaredLogger
	taskScheduleLock sync.Mutex
	pipeline         *pipeline.Pipeline

	taskInstances []*TaskInstance
	taskNameMap   map[string]*TaskInstance

	WorkQueue chan *TaskInstance
	Results   chan *TaskExecutionResult
}

func NewScheduler(logger *zap.SugaredLogger, p *pipeline.Pipeline) *Scheduler {
	instances := make([]*TaskInstance, 0, len(p.Assets))
	for _, task := range p.Assets {
		instances = append(instances, &TaskInstance{
			ID:         uuid.New().String(),
			Pipeline:   p,
			Asset:      task,
			status:     Pending,
			upstream:   make([]*TaskInstance, 0),
			downstream: make([]*TaskInstance, 0),
		})
	}

	s := &Scheduler{
		logger:           logger,
		pipeline:         p,
		taskInstances:    instances,
		taskScheduleLock: sync.Mutex{},
		WorkQueue:        make(chan *TaskInstance, 100),
		Results:          make(chan *TaskExecutionResult),
	}
	s.initialize()

	return s
}

func (s *Scheduler) initialize() {
	s.taskNameMap = make(map[string]*TaskInstance, len(s.taskInstances))
	for _, ti := range s.taskInstances {
		s.taskNameMap[ti.Asset.Name] = ti
	}

	for _, ti := range s.taskInstances {
		for _, dep := range ti.Asset.Upstreams {
			upstream, ok := s.taskNameMap[dep.Value]
			if !ok {
				continue
			}

			ti.AddUpstream(upstream)
			upstream.AddDownstream(ti)
		}
	}
}

func (s *Scheduler) InstanceCount() int {
	return len(s.taskInstances)
}

func (s *Scheduler) InstanceCountByStatus(status TaskInstanceStatus) int {
	count := 0
	for _, i := range s.taskInstances {
		if i.GetStatus() == status {
			count++
		}
	}

	return count
}

func (s *Scheduler) MarkAll(status TaskInstanceStatus) {
	for _, instance := range s.taskInstances {
		instance.MarkAs(status)
	}
}

func (s *Scheduler) MarkAsset(name string, status TaskInstanceStatus, downstream bool) {
	instance, ok := s.taskNameMap[name]
	if !ok {
		return
	}

	s.MarkTaskInstance(instance, status, downstream)
}

func (s *Scheduler) MarkTaskInstance(instance *TaskInstance, status TaskInstanceStatus, downstream bool) {
	instance.MarkAs(status)
	if !downstream {
		return
	}

	for _, d := range instance.GetDownstream() {
		s.MarkTaskInstance(d, status, downstream)
	}
}

func (s *Scheduler) markTaskInstanceFailedWithDownstream(instance *TaskInstance) {
	s.MarkTaskInstance(instance, UpstreamFailed, true)
	s.MarkTaskInstance(instance, Failed, false)
}

func (s *Scheduler) GetTaskInstancesByStatus(status TaskInstanceStatus) []*TaskInstance {
	instances := make([]*TaskInstance, 0)
	for _, i := range s.taskInstances {
		if i.GetStatus() != status {
			continue
		}

		instances = append(instances, i)
	}

	return instances
}

func (s *Scheduler) Run(ctx context.Context) []*TaskExecutionResult {
	results := make([]*TaskExecutionResult, 0)
	if len(s.GetTaskInstancesByStatus(Pending)) == 0 {
		s.logger.Debug("no tasks to run, finishing the scheduler loop")
		return nil
	}

	go s.Kickstart()

	s.logger.Debug("started the scheduler loop")
	for {
		select {
		case <-ctx.Done():
			close(s.WorkQueue)
			return results
		case result := <-s.Results:
			s.logger.Debug("received task result: ", result.Instance.Asset.Name)
			results = append(results, result)
			finished := s.Tick(result)
			if finished {
				s.logger.Debug("pipeline has completed, finishing the scheduler loop")
				return results
			}
		}
	}
}

// Tick marks an iteration of the scheduler loop. It is called when a result is received.
// The results are mainly fed from a channel, but Tick allows passing results directly and
// simulating scheduler loops, which is also useful for testing purposes.
func (s *Scheduler) Tick(result *TaskExecutionResult) bool {
	s.taskScheduleLock.Lock()
	defer s.taskScheduleLock.Unlock()

	if result.Instance.GetStatus() != Skipped {
		s.MarkTaskInstance(result.Instance, Succeeded, false)
	}
	if result.Error != nil {
		s.markTaskInstanceFailedWithDownstream(result.Instance)
	}

	if s.hasPipelineFinished() {
		close(s.WorkQueue)
		return true
	}

	tasks := s.getScheduleableTasks()
	if len(tasks) == 0 {
		return false
	}

	for _, task := range tasks {
		task.MarkAs(Queued)
		s.WorkQueue <- task
	}

	return false
}

// Kickstart initiates the scheduler process by sending a "start" task for the processing.
func (s *Scheduler) Kickstart() {
	s.Tick(&TaskExecutionResult{
		Instance: &TaskInstance{
			Asset: &pipeline.Asset{
				Name: "start",
			},
			status: Succeeded,
		},
	})
}

func (s *Scheduler) getScheduleableTasks() []*TaskInstance {
	tasks := make([]*TaskInstance, 0)
	for _, task := range s.taskInstances {
		if task.GetStatus() != Pending {
			continue
		}

		if !s.allDependenciesSucceededForTask(task) {
			continue
		}

		tasks = append(tasks, task)
	}

	return tasks
}

func (s *Scheduler) allDependenciesSucceededForTask(t *TaskInstance) bool {
	if len(t.upstream) == 0 {
		return true
	}

	for _, upstream := range t.upstream {
		status := upstream.GetStatus()
		if status == Pending || status == Queued || status == Running {
			return false
		}
	}

	return true
}

func (s *Scheduler) hasPipelineFinished() bool {
	for _, task := range s.taskInstances {
		if !task.Completed() {
			return false
		}
	}

	return true
}
