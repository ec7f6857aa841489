package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryTaskKeepsOrigin(t *testing.T) {
	retry := &LogoRetryTask{
		LogoTask: LogoTask{
			ID:           "abc",
			CategoryPath: "Multifamily.OCCUPANCY.Occupy.Rent Payment",
			CompanyName:  "Flex",
			CompanyURL:   "https://getflex.com",
		},
		RetryCount: 2,
		Error:      "timeout",
	}

	data, err := retry.TaskValue()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"company_name":"Flex"`)

	decoded, err := UnmarshalTask[*LogoRetryTask](data)
	require.NoError(t, err)
	assert.Equal(t, retry, decoded)
	assert.Equal(t, LogoRetryTaskType, decoded.TaskType())
	assert.Equal(t, LogoTaskType, decoded.LogoTask.TaskType())
}

func TestStreamValues(t *testing.T) {
	logoTask := &LogoTask{ID: "abc", CategoryPath: "A.B", CompanyName: "X", CompanyURL: "http://x"}

	values, err := Values(logoTask)
	require.NoError(t, err)
	assert.Equal(t, LogoTaskType, values[FieldType])

	taskType, data, err := FromValues(values)
	require.NoError(t, err)
	assert.Equal(t, LogoTaskType, taskType)

	decoded, err := UnmarshalTask[*LogoTask](data)
	require.NoError(t, err)
	assert.Equal(t, logoTask, decoded)
}

func TestFromValuesRejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{"empty", map[string]interface{}{}},
		{"missing data", map[string]interface{}{FieldType: LogoTaskType}},
		{"wrong type", map[string]interface{}{FieldType: 7, FieldData: "{}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FromValues(tt.values)
			assert.Error(t, err)
		})
	}

	_, err := UnmarshalTask[*LogoTask]([]byte("{"))
	assert.Error(t, err)
}

func TestUnmarshalTaskRejectsNull(t *testing.T) {
	_, err := UnmarshalTask[*LogoTask]([]byte("null"))
	assert.ErrorIs(t, err, ErrEmptyTask)

	_, err = UnmarshalTask[*LogoRetryTask]([]byte(" null "))
	assert.ErrorIs(t, err, ErrEmptyTask)

	decoded, err := UnmarshalTask[*LogoTask]([]byte("{}"))
	require.NoError(t, err)
	assert.NotNil(t, decoded)
}
