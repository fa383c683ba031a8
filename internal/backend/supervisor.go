// Package backend spawns and supervises the out-of-process language runtime
// that implements an FMU instance's behavior.
package backend

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	unifmuerrors "github.com/unifmu/unifmu-go/internal/errors"
	"github.com/unifmu/unifmu-go/internal/logger"
)

// PollInterval is the period of Monitor's wake-up ticker, matching original_source/fmiapi/src/dispatcher.rs's 100ms polling_time.
const PollInterval = 100 * time.Millisecond

// LaunchParams carries everything the supervisor needs to spawn the backend,
// assembled by internal/config from launch.toml plus the bound endpoint.
type LaunchParams struct {
	Command      []string
	ResourceDir  string
	Endpoint     string
	Port         int
	GUID         string
	InstanceName string
	Visible      bool
	FMUType      string
}

// buildEnvironment constructs the environment variables injected into the
// backend process, following the teacher's ShellHook.buildEnvironment
// pattern of deriving RTMP_* vars from event data -- here UNIFMU_* vars from
// LaunchParams (spec.md 6).
func buildEnvironment(p LaunchParams) []string {
	env := append([]string{}, os.Environ()...)
	env = append(env,
		fmt.Sprintf("UNIFMU_DISPATCHER_ENDPOINT=%s", p.Endpoint),
		fmt.Sprintf("UNIFMU_DISPATCHER_ENDPOINT_PORT=%d", p.Port),
		fmt.Sprintf("UNIFMU_GUID=%s", p.GUID),
		fmt.Sprintf("UNIFMU_INSTANCE_NAME=%s", p.InstanceName),
		fmt.Sprintf("UNIFMU_VISIBLE=%t", p.Visible),
		fmt.Sprintf("UNIFMU_FMU_TYPE=%s", p.FMUType),
	)
	return env
}

// Supervisor owns the backend's lifetime: a spawned subprocess for local
// instances, or nothing at all for remote instances.
type Supervisor struct {
	cmd    *exec.Cmd
	remote bool
}

// SpawnLocal launches the backend subprocess per spec.md 4.C: executable and
// args from the launch configuration, endpoint/port/informational vars
// injected, cwd = resource directory. No stdout/stderr capture -- the host's
// terminal inherits them, matching ShellHook's bare cmd.Run() without pipes
// (beyond the optional JSON stdin the teacher supports, which has no
// counterpart here).
func SpawnLocal(p LaunchParams) (*Supervisor, error) {
	if len(p.Command) == 0 {
		return nil, unifmuerrors.NewMisuseError("SpawnLocal", fmt.Errorf("launch configuration has no command for this OS"))
	}
	cmd := exec.Command(p.Command[0], p.Command[1:]...)
	cmd.Dir = p.ResourceDir
	cmd.Env = buildEnvironment(p)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, unifmuerrors.NewSubprocessError("spawn", -1, false, err)
	}
	logger.Info("backend subprocess started", "pid", cmd.Process.Pid, "endpoint", p.Endpoint)
	return &Supervisor{cmd: cmd}, nil
}

// NewRemote builds a degenerate supervisor for a remote-backend instance: no
// subprocess is owned, and Monitor never resolves until ctx is canceled.
func NewRemote(endpoint string) *Supervisor {
	logger.Info("remote instance: point an out-of-tree backend at this endpoint", "endpoint", endpoint)
	return &Supervisor{remote: true}
}

// Monitor resolves with a SubprocessError the moment the subprocess exits or
// is signaled, as observed by a goroutine blocked in cmd.Wait; its
// PollInterval ticker only wakes the loop and checks nothing. For a
// remote supervisor it blocks until ctx is done, since there is no
// subprocess to watch (spec.md 4.C: "the supervisor is degenerate").
func (s *Supervisor) Monitor(ctx context.Context) error {
	if s.remote {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			exitCode := -1
			signaled := false
			if s.cmd.ProcessState != nil {
				exitCode = s.cmd.ProcessState.ExitCode()
			}
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					signaled = exitErr.ExitCode() < 0
				}
			}
			return unifmuerrors.NewSubprocessError("monitor", exitCode, signaled, err)
		case <-ticker.C:
			// The tick performs no liveness check; exit detection happens
			// only via the done channel above.
		}
	}
}

// IsRemote reports whether this supervisor owns no subprocess.
func (s *Supervisor) IsRemote() bool { return s.remote }

// Kill terminates the subprocess; dispatcher.Close calls it every time a
// dispatcher is released, after any FreeInstance exchange.
func (s *Supervisor) Kill() error {
	if s.remote || s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}
