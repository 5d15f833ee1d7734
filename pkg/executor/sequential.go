package executor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/starling-data/starling/pkg/pipeline"
	"github.com/starling-data/starling/pkg/scheduler"
)

type Operator interface {
	Run(ctx context.Context, ti *scheduler.TaskInstance) error
}

type OperatorMap map[pipeline.AssetType]Operator

type Sequential struct {
	TaskTypeMap OperatorMap
}

func (s Sequential) RunSingleTask(ctx context.Context, instance *scheduler.TaskInstance) error {
	task := instance.Asset

	operator, ok := s.TaskTypeMap[task.Type]
	if !ok {
		return errors.New("there is no operator configured for the task type, task cannot be run: " + string(task.Type))
	}

	return operator.Run(ctx, instance)
}
