package scheduler

import (
	"testing"

	"github.com/starling-data/starling/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestScheduler_getScheduleableTasks(t *testing.T) {
	t.Parallel()

	// The test cases simulate the execution steps of the following graph:
	// task11 -> task12
	// task21 -> task22
	// task12 -> task3
	// task22 -> task3

	tasks := []*pipeline.Asset{
		{
			Name: "task11",
		},
		{
			Name: "task21",
		},
		{
			Name: "task12",
			Upstreams: []pipeline.Upstream{
				{Value: "task11"},
			},
		},
		{
			Name: "task22",
			Upstreams: []pipeline.Upstream{
				{Value: "task21"},
			},
		},
		{
			Name: "task3",
			Upstreams: []pipeline.Upstream{
				{Value: "task12"},
				{Value: "task22"},
			},
		},
	}

	tests := []struct {
		name          string
		taskInstances map[string]TaskInstanceStatus
		want          []string
	}{
		{
			name: "beginning the pipeline execution",
			taskInstances: map[string]TaskInstanceStatus{
				"task11": Pending,
				"task12": Pending,
				"task21": Pending,
				"task22": Pending,
				"task3":  Pending,
			},
			want: []string{"task11", "task21"},
		},
		{
			name: "both t11 and t21 are running, should get nothing",
			taskInstances: map[string]TaskInstanceStatus{
				"task11": Running,
				"task12": Pending,
				"task21": Running,
				"task22": Pending,
				"task3":  Pending,
			},
			want: []string{},
		},
		{
			name: "t11 succeeded, should get t12",
			taskInstances: map[string]TaskInstanceStatus{
				"task11": Succeeded,
				"task12": Pending,
				"task21": Running,
				"task22": Pending,
				"task3":  Pending,
			},
			want: []string{"task12"},
		},
		{
			name: "t12 succeeded as well, shouldn't get anything yet",
			taskInstances: map[string]TaskInstanceStatus{
				"task11": Succeeded,
				"task12": Succeeded,
				"task21": Running,
				"task22": Pending,
				"task3":  Pending,
			},
			want: []string{},
		},
		{
			name: "t22 succeeded as well, should get the final asset",
			taskInstances: map[string]TaskInstanceStatus{
				"task11": Succeeded,
				"task12": Succeeded,
				"task21": Succeeded,
				"task22": Succeeded,
				"task3":  Pending,
			},
			want: []string{"task3"},
		},
		{
			name: "everything succeeded, should get nothing",
			taskInstances: map[string]TaskInstanceStatus{
				"task11": Succeeded,
				"task12": Succeeded,
				"task21": Succeeded,
				"task22": Succeeded,
				"task3":  Succeeded,
			},
			want: []string{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			taskInstances := make([]*TaskInstance, 0, len(tasks))
			for _, task := range tasks {
				status, ok := tt.taskInstances[task.Name]
				if !ok {
					t.Fatalf("given asset doesn't have a status set on the test: %s", task.Name)
				}
				taskInstances = append(taskInstances, &TaskInstance{
					Asset:  task,
					status: status,
				})
			}

			s := &Scheduler{
				taskInstances: taskInstances,
			}
			s.initialize()

			got := s.getScheduleableTasks()
			gotNames := make([]string, 0, len(got))
			for _, task := range got {
				gotNames = append(gotNames, task.Asset.Name)
			}

			assert.Equal(t, tt.want, gotNames)
		})
	}
}

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	p := &pipeline.Pipeline{
		Assets: []*pipeline.Asset{
			{
				Name: "task11",
			},
			{
				Name: "task21",
			},
			{
				Name: "task12",
				Upstreams: []pipeline.Upstream{
					{Value: "task11"},
				},
			},
			{
				Name: "task22",
				Upstreams: []pipeline.Upstream{
					{Value: "task21"},
				},
			},
			{
				Name: "task3",
				Upstreams: []pipeline.Upstream{
					{Value: "task12"},
					{Value: "task22"},
				},
			},
		},
	}

	s := NewScheduler(zap.NewNop().Sugar(), p)

	s.Kickstart()

	// ensure the first two tasks are scheduled
	t11 := <-s.WorkQueue
	assert.Equal(t, "task11", t11.Asset.Name)

	t21 := <-s.WorkQueue
	assert.Equal(t, "task21", t21.Asset.Name)

	// mark t11 as completed
	s.Tick(&TaskExecutionResult{
		Instance: t11,
	})

	// expect t12 to be scheduled
	t12 := <-s.WorkQueue
	assert.Equal(t, "task12", t12.Asset.Name)

	// mark t21 as completed
	s.Tick(&TaskExecutionResult{
		Instance: t21,
	})

	// expect t22 to arrive, given that t21 was completed
	t22 := <-s.WorkQueue
	assert.Equal(t, "task22", t22.Asset.Name)

	// mark t12 as completed
	s.Tick(&TaskExecutionResult{
		Instance: t12,
	})

	// mark t22 as completed
	finished := s.Tick(&TaskExecutionResult{
		Instance: t22,
	})
	assert.False(t, finished)

	// now that both t12 and t22 are completed, expect t3 to be dispatched
	t3 := <-s.WorkQueue
	assert.Equal(t, "task3", t3.Asset.Name)

	// mark t3 as completed
	finished = s.Tick(&TaskExecutionResult{
		Instance: t3,
	})

	assert.True(t, finished)
}

func TestScheduler_FailurePropagatesDownstream(t *testing.T) {
	t.Parallel()

	p := &pipeline.Pipeline{
		Assets: []*pipeline.Asset{
			{
				Name: "extract",
			},
			{
				Name: "flatten",
				Upstreams: []pipeline.Upstream{
					{Value: "extract"},
				},
			},
			{
				Name: "transform",
				Upstreams: []pipeline.Upstream{
					{Value: "flatten"},
				},
			},
			{
				Name: "unrelated",
			},
		},
	}

	s := NewScheduler(zap.NewNop().Sugar(), p)

	s.Kickstart()

	extract := <-s.WorkQueue
	assert.Equal(t, "extract", extract.Asset.Name)

	unrelated := <-s.WorkQueue
	assert.Equal(t, "unrelated", unrelated.Asset.Name)

	// extraction fails, all of its downstream should be marked as upstream_failed
	finished := s.Tick(&TaskExecutionResult{
		Instance: extract,
		Error:    assert.AnError,
	})
	assert.False(t, finished)

	finished = s.Tick(&TaskExecutionResult{
		Instance: unrelated,
	})
	assert.True(t, finished)

	assert.Equal(t, Failed, extract.GetStatus())
	assert.Equal(t, 2, s.InstanceCountByStatus(UpstreamFailed))
	assert.Equal(t, 1, s.InstanceCountByStatus(Succeeded))
}

func TestScheduler_MarkTasksAndDownstream(t *testing.T) {
	t.Parallel()

	p := &pipeline.Pipeline{
		Assets: []*pipeline.Asset{
			{
				Name: "task11",
			},
			{
				Name: "task12",
				Upstreams: []pipeline.Upstream{
					{Value: "task11"},
				},
			},
			{
				Name: "task13",
				Upstreams: []pipeline.Upstream{
					{Value: "task12"},
				},
			},
			{
				Name: "task3",
				Upstreams: []pipeline.Upstream{
					{Value: "task12"},
				},
			},
		},
	}

	s := NewScheduler(zap.NewNop().Sugar(), p)
	s.MarkAll(Succeeded)
	s.MarkAsset("task12", Pending, true)

	s.Kickstart()

	ti12 := <-s.WorkQueue
	assert.Equal(t, "task12", ti12.Asset.Name)
	s.Tick(&TaskExecutionResult{
		Instance: ti12,
	})

	ti13 := <-s.WorkQueue
	assert.Equal(t, "task13", ti13.Asset.Name)
	ti3 := <-s.WorkQueue
	assert.Equal(t, "task3", ti3.Asset.Name)

	s.Tick(&TaskExecutionResult{
		Instance: ti13,
	})
	finished := s.Tick(&TaskExecutionResult{
		Instance: ti3,
	})
	assert.True(t, finished)
}
