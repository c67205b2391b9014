package procstat

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchSelf(t *testing.T) {
	mon := Watch(os.Getpid(), 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	stats := mon.Stop()

	require.GreaterOrEqual(t, stats.Samples, 1)
	require.Greater(t, stats.PeakRSSMB, 0.0)
	require.GreaterOrEqual(t, stats.MaxThreads, int32(1))
}

func TestWatchChildProcess(t *testing.T) {
	cmd := exec.Command("sleep", "0.2")
	require.NoError(t, cmd.Start())

	mon := Watch(cmd.Process.Pid, 20*time.Millisecond)
	require.NoError(t, cmd.Wait())
	stats := mon.Stop()

	require.GreaterOrEqual(t, stats.Samples, 1)
}

func TestWatchGonePID(t *testing.T) {
	// A PID that does not exist: Stop must still return, with no samples.
	mon := Watch(1<<22-1, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	stats := mon.Stop()

	require.Equal(t, 0, stats.Samples)
}
