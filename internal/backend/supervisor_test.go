package backend

import (
	"context"
	"testing"
	"time"

	unifmuerrors "github.com/unifmu/unifmu-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnLocalInjectsEnvironment(t *testing.T) {
	params := LaunchParams{
		Command:      []string{"sh", "-c", "env | grep UNIFMU_ && sleep 2"},
		ResourceDir:  t.TempDir(),
		Endpoint:     "tcp://127.0.0.1:5555",
		Port:         5555,
		GUID:         "{guid}",
		InstanceName: "adder",
		Visible:      true,
		FMUType:      "CoSimulation",
	}
	sup, err := SpawnLocal(params)
	require.NoError(t, err)
	defer sup.Kill()
	assert.False(t, sup.IsRemote())
	env := buildEnvironment(params)
	assert.Contains(t, env, "UNIFMU_DISPATCHER_ENDPOINT=tcp://127.0.0.1:5555")
	assert.Contains(t, env, "UNIFMU_DISPATCHER_ENDPOINT_PORT=5555")
	assert.Contains(t, env, "UNIFMU_GUID={guid}")
	assert.Contains(t, env, "UNIFMU_INSTANCE_NAME=adder")
}

func TestMonitorDetectsExit(t *testing.T) {
	sup, err := SpawnLocal(LaunchParams{
		Command:     []string{"sh", "-c", "exit 3"},
		ResourceDir: t.TempDir(),
		Endpoint:    "tcp://127.0.0.1:5555",
		Port:        5555,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	err = sup.Monitor(ctx)
	elapsed := time.Since(start)

	assert.True(t, unifmuerrors.IsSubprocessDeath(err))
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestRemoteSupervisorNeverExitsWithoutCancel(t *testing.T) {
	sup := NewRemote("tcp://0.0.0.0:6000")
	assert.True(t, sup.IsRemote())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := sup.Monitor(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSpawnLocalRejectsEmptyCommand(t *testing.T) {
	_, err := SpawnLocal(LaunchParams{Command: nil, ResourceDir: t.TempDir()})
	assert.Error(t, err)
}
