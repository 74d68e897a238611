package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/tile-merge-game/game/engine"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func createTestConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "classic.yaml", `
name: classic
description: Classic rules
size: 4
start_tiles: 2
win_value: 2048
four_probability: 0.1
`)
	writeFile(t, dir, "tiny.json", `{
  "name": "tiny",
  "description": "2x2 board",
  "size": 2,
  "start_tiles": 1,
  "win_value": 32,
  "four_probability": 0
}`)
	return dir
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		manager, err := NewManager(createTestConfigDir(t), zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, manager.GetDefault())
		assert.Equal(t, "classic", manager.GetDefault().Name)
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager(filepath.Join(t.TempDir(), "missing"), nil)
		assert.Error(t, err)
	})

	t.Run("empty directory falls back to built-in rules", func(t *testing.T) {
		manager, err := NewManager(t.TempDir(), nil)
		require.NoError(t, err)
		assert.Equal(t, engine.DefaultConfig(), manager.GetDefault())
	})

	t.Run("first valid file becomes default without classic", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "zeta.yaml", "size: 5\n")
		manager, err := NewManager(dir, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, manager.GetDefault().Size)
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	manager, err := NewManager(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	t.Run("yaml config", func(t *testing.T) {
		config, err := manager.LoadConfig("classic")
		require.NoError(t, err)
		assert.Equal(t, 4, config.Size)
		assert.Equal(t, 2048, config.WinValue)
		assert.InDelta(t, 0.1, config.FourProbability, 1e-9)
	})

	t.Run("json config with extension", func(t *testing.T) {
		config, err := manager.LoadConfig("tiny.json")
		require.NoError(t, err)
		assert.Equal(t, "tiny", config.Name)
		assert.Equal(t, 2, config.Size)
		assert.Zero(t, config.FourProbability, "explicit zero overrides the default")
	})

	t.Run("from cache", func(t *testing.T) {
		first, err := manager.LoadConfig("classic")
		require.NoError(t, err)
		second, err := manager.LoadConfig("classic")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("missing keys use classic defaults", func(t *testing.T) {
		writeFile(t, dir, "sparse.yaml", "description: only a description\n")
		config, err := manager.LoadConfig("sparse")
		require.NoError(t, err)
		assert.Equal(t, "sparse", config.Name)
		assert.Equal(t, engine.DefaultBoardSize, config.Size)
		assert.Equal(t, engine.DefaultStartTiles, config.StartTiles)
		assert.Equal(t, engine.DefaultWinValue, config.WinValue)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := manager.LoadConfig("nope")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("invalid", func(t *testing.T) {
		writeFile(t, dir, "broken.yaml", "size: 40\n")
		_, err := manager.LoadConfig("broken")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed", func(t *testing.T) {
		writeFile(t, dir, "garbage.json", "{not json")
		_, err := manager.LoadConfig("garbage")
		assert.Error(t, err)
	})
}

func TestManager_LoadConfigStaysInDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "configs")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeFile(t, dir, "classic.yaml", "name: classic\n")
	writeFile(t, root, "outside.yaml", "name: outside\nsize: 5\n")

	manager, err := NewManager(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	for _, name := range []string{"../outside", "../outside.yaml", `..\outside`, "sub/classic"} {
		_, err := manager.LoadConfig(name)
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
		assert.NotErrorIs(t, err, ErrConfigNotFound, name)
	}

	_, err = manager.LoadConfig("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	writeFile(t, dir, "broken.yaml", "win_value: 3\n")
	writeFile(t, dir, "notes.txt", "ignored")

	manager, err := NewManager(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	configs, err := manager.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, "classic", configs[0].ConfigID)
	assert.Equal(t, "classic.yaml", configs[0].Filename)
	assert.Equal(t, 4, configs[0].Size)

	assert.Equal(t, "tiny", configs[1].ConfigID)
	assert.Equal(t, 32, configs[1].WinValue)
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	manager, err := NewManager(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	config := &engine.Config{
		Name:            "custom",
		Description:     "5x5 to 1024",
		Size:            5,
		StartTiles:      3,
		WinValue:        1024,
		FourProbability: 0.25,
	}
	require.NoError(t, manager.SaveConfig("custom", config))
	assert.FileExists(t, filepath.Join(dir, "custom.yaml"))

	require.NoError(t, manager.RefreshCache())
	loaded, err := manager.LoadConfig("custom")
	require.NoError(t, err)
	assert.Equal(t, config, loaded)

	err = manager.SaveConfig("bad", &engine.Config{Name: "bad", Size: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	err = manager.SaveConfig("../escape", config)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManager_SetDefault(t *testing.T) {
	manager, err := NewManager(createTestConfigDir(t), nil)
	require.NoError(t, err)

	require.NoError(t, manager.SetDefault("tiny"))
	assert.Equal(t, "tiny", manager.GetDefault().Name)

	assert.ErrorIs(t, manager.SetDefault("missing"), ErrConfigNotFound)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager, err := NewManager(createTestConfigDir(t), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.LoadConfig("tiny")
			assert.NoError(t, err)
			_, err = manager.ListConfigs()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestReadFile(t *testing.T) {
	dir := createTestConfigDir(t)
	config, err := ReadFile(filepath.Join(dir, "tiny.json"))
	require.NoError(t, err)
	assert.Equal(t, "tiny", config.Name)
}
