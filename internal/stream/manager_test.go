package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManager_ConnectPingDisconnect(t *testing.T) {
	m := NewManager(time.Hour)
	id := m.Connect("127.0.0.1", nil)
	require.Equal(t, 1, m.ActiveCount())
	require.True(t, m.Ping(id))

	m.Disconnect(id)
	require.Equal(t, 0, m.ActiveCount())
	require.False(t, m.Ping(id))
}

func TestManager_PingExpired(t *testing.T) {
	m := NewManager(10 * time.Millisecond)
	id := m.Connect("127.0.0.1", nil)
	time.Sleep(20 * time.Millisecond)

	require.False(t, m.Ping(id))
	require.Equal(t, 0, m.ActiveCount())
}

func TestManager_Sweep(t *testing.T) {
	m := NewManager(10 * time.Millisecond)
	m.Connect("127.0.0.1", nil)
	m.Connect("127.0.0.2", nil)
	time.Sleep(20 * time.Millisecond)

	require.Equal(t, 2, m.Sweep())
	require.Equal(t, 0, m.ActiveCount())
}

func TestManager_StartStopSweep(t *testing.T) {
	m := NewManager(time.Hour)
	m.StartSweep(5 * time.Millisecond)
	m.Connect("127.0.0.1", nil)
	time.Sleep(15 * time.Millisecond)
	m.Close()
	require.Equal(t, 1, m.ActiveCount())
}
