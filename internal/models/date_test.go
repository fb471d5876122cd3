package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var v struct {
		Due Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2025-04-09"}`), &v))
	assert.Equal(t, "2025-04-09", v.Due.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2025-04-09"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"due":null}`), &v))
	assert.True(t, v.Due.IsZero())
	out, err = json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"due":"09/04/2025"}`), &v))
}

func TestDateScanValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 4, 9, 13, 30, 0, 0, time.FixedZone("WIB", 7*3600))))
	assert.Equal(t, "2025-04-09", d.String())

	require.NoError(t, d.Scan([]byte("2024-12-31")))
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", v)

	require.NoError(t, d.Scan(nil))
	v, err = d.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, d.Scan(42))
}

func TestTaskView(t *testing.T) {
	report := "secret notes"
	task := &Task{ID: 3, Title: "x", Status: StatusCompleted, CompletionReport: &report}
	raw, err := json.Marshal(task.View())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "completion_report")
	assert.NotContains(t, string(raw), "secret notes")
}

func TestTaskCountsAdd(t *testing.T) {
	var c TaskCounts
	c.Add(StatusPending, 2)
	c.Add(StatusCompleted, 1)
	c.Add(StatusInProgress, 3)
	assert.Equal(t, TaskCounts{Total: 6, Pending: 2, InProgress: 3, Completed: 1}, c)
}
