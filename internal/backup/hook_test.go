package backup

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_BacksUpOnce(t *testing.T) {
	src := writeConfig(t, "gpg-path: gpg\n")
	m := NewManager(WithBackupDir(t.TempDir()))
	s := NewSession(m)

	first, err := s.EnsureBackedUp(src, "0.1")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("changed\n"), 0o600))

	second, err := s.EnsureBackedUp(src, "1.0")
	require.NoError(t, err)
	assert.Same(t, first, second)

	list, err := m.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	s.Reset()
	_, err = s.EnsureBackedUp(src, "1.0")
	require.NoError(t, err)
	list, err = m.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSession_FailureIsRetried(t *testing.T) {
	s := NewSession(NewManager(WithBackupDir(t.TempDir())))
	missing := t.TempDir() + "/config.yaml"

	_, err := s.EnsureBackedUp(missing, "")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(missing, []byte("x: 1\n"), 0o600))
	m, err := s.EnsureBackedUp(missing, "")
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSession_Concurrent(t *testing.T) {
	src := writeConfig(t, "x: 1\n")
	m := NewManager(WithBackupDir(t.TempDir()))
	s := NewSession(m)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.EnsureBackedUp(src, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := m.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
