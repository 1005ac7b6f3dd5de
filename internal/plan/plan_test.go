package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshal_RoundTrips(t *testing.T) {
	p := &Plan{
		Message: "fetch and greet the customer",
		Steps: []PlanStep{
			{ActionID: "fetchCustomer", Description: "look up the customer", Parameters: []byte(`{"id":"7"}`)},
			{ActionID: "greet", Description: "say hello", Parameters: []byte(`{}`), DependsOn: []string{"step-0"}},
		},
	}

	data, err := Marshal(p)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, p.Message, got.Message)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, "fetchCustomer", got.Steps[0].ActionID)
	assert.Equal(t, []string{"step-0"}, got.Steps[1].DependsOn)
}

func TestUnmarshal_RejectsInvalidJSON(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	assert.Error(t, err)
}
