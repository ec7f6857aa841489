package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Stream message fields carrying a task
const (
	FieldType = "task_type"
	FieldData = "task_data"
)

type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// DefaultTaskValue provides a common implementation for TaskValue
func DefaultTaskValue(task interface{}) ([]byte, error) {
	return json.Marshal(task)
}

// Values encodes task as stream message fields
func Values(task Task) (map[string]interface{}, error) {
	data, err := task.TaskValue()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", task.TaskType(), err)
	}
	return map[string]interface{}{
		FieldType: task.TaskType(),
		FieldData: string(data),
	}, nil
}

// FromValues returns the task type and payload of a stream message
func FromValues(values map[string]interface{}) (string, []byte, error) {
	taskType, ok := values[FieldType].(string)
	if !ok || taskType == "" {
		return "", nil, fmt.Errorf("missing %s field", FieldType)
	}
	data, ok := values[FieldData].(string)
	if !ok {
		return "", nil, fmt.Errorf("missing %s field for %s", FieldData, taskType)
	}
	return taskType, []byte(data), nil
}

// ErrEmptyTask is returned when a stream message carries a null payload
var ErrEmptyTask = errors.New("empty task payload")

func UnmarshalTask[T Task](data []byte) (T, error) {
	var t T
	if err := json.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to decode %T: %w", t, err)
	}
	if v := reflect.ValueOf(t); !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return t, fmt.Errorf("failed to decode %T: %w", t, ErrEmptyTask)
	}
	return t, nil
}
