package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewGame(t *testing.T) {
	actuator := &recordingActuator{}
	storage := NewMemoryStorage()

	game, err := NewGame(nil, WithStorage(storage), WithActuator(actuator))
	require.NoError(t, err)

	assert.Equal(t, DefaultBoardSize, game.Board().Size())
	assert.Equal(t, DefaultStartTiles, CountTiles(game.Board()))
	assert.Zero(t, game.Score())
	assert.False(t, game.Over())
	assert.False(t, game.Won())
	assert.False(t, game.IsTerminated())

	require.Len(t, actuator.actuations, 1, "setup publishes a snapshot")
	assert.NotNil(t, storage.GameState(), "setup persists the fresh game")

	for _, tile := range game.Board().Tiles() {
		assert.Contains(t, []int{2, 4}, tile.Value)
	}
}

func TestNewGame_InvalidConfig(t *testing.T) {
	_, err := NewGame(&Config{Name: "broken", Size: 1, StartTiles: 1, WinValue: 2048})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewGame_StartTilesFromConfig(t *testing.T) {
	config := DefaultConfig()
	config.Size = 5
	config.StartTiles = 6

	game, err := NewGame(config, WithRandom(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, err)
	assert.Equal(t, 6, CountTiles(game.Board()))
}

func TestGame_SpawnValues(t *testing.T) {
	config := DefaultConfig()
	config.StartTiles = 2

	// First spawn draws 0.95 (>= 0.9) => 4, second draws 0.5 => 2.
	game, err := NewGame(config, WithRandom(&scriptedRandom{
		floats: []float64{0.95, 0.5},
		ints:   []int{0, 0},
	}))
	require.NoError(t, err)

	assert.Equal(t, 4, game.Board().CellContent(Position{X: 0, Y: 0}).Value)
	assert.Equal(t, 2, game.Board().CellContent(Position{X: 0, Y: 1}).Value)
}

func TestGame_SpawnAlwaysFour(t *testing.T) {
	config := DefaultConfig()
	config.FourProbability = 1

	game, err := NewGame(config, WithRandom(rand.New(rand.NewPCG(3, 4))))
	require.NoError(t, err)
	for _, tile := range game.Board().Tiles() {
		assert.Equal(t, 4, tile.Value)
	}
}

func TestGame_MoveMergesAndSpawns(t *testing.T) {
	actuator := &recordingActuator{}
	game, storage := newTestGame(t, [][]int{
		{2, 2, 4, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, WithActuator(actuator))

	result := game.Move(Left)

	assert.True(t, result.Moved)
	assert.False(t, result.Ignored)
	assert.Equal(t, 4, result.ScoreDelta)
	assert.Equal(t, 1, result.Merges)
	assert.Equal(t, 4, game.Score())
	require.NotNil(t, result.Spawned)
	assert.Equal(t, SerializedTile{Position: Position{X: 0, Y: 1}, Value: 2}, *result.Spawned)

	assert.Equal(t, [][]int{
		{4, 4, 0, 0},
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, rowsOf(game.Board()))

	assert.Equal(t, 4, storage.BestScore())
	assert.Equal(t, 4, storage.GameState().Score)
	require.Len(t, actuator.actuations, 2)
	assert.Equal(t, Metadata{Score: 4, BestScore: 4}, actuator.actuations[1])
}

func TestGame_MoveWithoutChangeIsNoOp(t *testing.T) {
	actuator := &recordingActuator{}
	rows := [][]int{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	game, storage := newTestGame(t, rows, WithActuator(actuator))

	before := game.Serialize()
	stored := storage.GameState()

	result := game.Move(Left)

	assert.False(t, result.Moved)
	assert.False(t, result.Ignored)
	assert.Nil(t, result.Spawned)
	assert.Equal(t, before, game.Serialize())
	assert.Equal(t, stored, storage.GameState())
	assert.Len(t, actuator.actuations, 1, "no snapshot beyond setup")
}

func TestGame_Conservation(t *testing.T) {
	game, err := NewGame(nil, WithRandom(rand.New(rand.NewPCG(42, 99))))
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 500 && !game.IsTerminated(); i++ {
		totalBefore := TotalValue(game.Board())
		tilesBefore := CountTiles(game.Board())
		scoreBefore := game.Score()

		result := game.Move(Directions[rng.IntN(len(Directions))])
		if !result.Moved {
			continue
		}

		spawned := 0
		spawnedTiles := 0
		if result.Spawned != nil {
			spawned = result.Spawned.Value
			spawnedTiles = 1
		}

		require.Equal(t, totalBefore, TotalValue(game.Board())-spawned, "merges conserve tile value")
		require.Equal(t, tilesBefore-result.Merges+spawnedTiles, CountTiles(game.Board()))
		require.Equal(t, scoreBefore+result.ScoreDelta, game.Score())
	}
}

func TestGame_Determinism(t *testing.T) {
	rows := [][]int{
		{2, 2, 4, 8},
		{0, 4, 4, 0},
		{2, 0, 0, 2},
		{0, 0, 8, 8},
	}
	moves := []Direction{Left, Down, Right, Up, Left, Left, Down}

	play := func() *GameState {
		game, _ := newTestGame(t, rows, WithRandom(rand.New(rand.NewPCG(9, 9))))
		for _, d := range moves {
			game.Move(d)
		}
		return game.Serialize()
	}

	assert.Equal(t, play(), play())
}

func TestGame_GameOver(t *testing.T) {
	actuator := &recordingActuator{}
	game, storage := newTestGame(t, [][]int{
		{4, 8, 16, 32},
		{64, 128, 256, 512},
		{1024, 4096, 8192, 16384},
		{32768, 65536, 131072, 0},
	}, WithActuator(actuator))

	assert.True(t, game.MovesAvailable())

	// Left and up cannot change anything.
	assert.False(t, game.Move(Left).Moved)
	assert.False(t, game.Move(Up).Moved)

	result := game.Move(Right)
	require.True(t, result.Moved)
	assert.True(t, result.Over)
	assert.True(t, game.Over())
	assert.False(t, game.MovesAvailable())
	assert.True(t, game.IsTerminated())
	assert.Nil(t, storage.GameState(), "finished games are cleared from storage")

	last := actuator.actuations[len(actuator.actuations)-1]
	assert.True(t, last.Over)
	assert.True(t, last.Terminated)

	ignored := game.Move(Left)
	assert.True(t, ignored.Ignored)
	assert.False(t, ignored.Moved)
}

func TestGame_WinAndKeepPlaying(t *testing.T) {
	actuator := &recordingActuator{}
	game, storage := newTestGame(t, [][]int{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, WithActuator(actuator))

	result := game.Move(Left)
	require.True(t, result.Moved)
	assert.True(t, result.Won)
	assert.True(t, game.Won())
	assert.False(t, game.Over())
	assert.True(t, game.IsTerminated())
	assert.Equal(t, 2048, game.Score())

	assert.True(t, game.Move(Right).Ignored)

	game.KeepPlaying()
	assert.Equal(t, 1, actuator.continues)
	assert.True(t, game.Won())
	assert.False(t, game.IsTerminated())
	assert.True(t, storage.GameState().KeepPlaying, "flag survives a reload")

	assert.True(t, game.Move(Right).Moved)
}

func TestGame_KeepPlayingSurvivesRestore(t *testing.T) {
	storage := NewMemoryStorage()
	state := stateFromRows([][]int{
		{2048, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
	})
	state.Won = true
	state.KeepPlaying = true
	storage.SetGameState(state)

	game, err := NewGame(nil, WithStorage(storage))
	require.NoError(t, err)
	assert.True(t, game.Won())
	assert.False(t, game.IsTerminated())
}

func TestGame_Restart(t *testing.T) {
	actuator := &recordingActuator{}
	game, storage := newTestGame(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, WithActuator(actuator))

	game.Move(Left)
	require.Equal(t, 4, game.Score())

	game.Restart()

	assert.Zero(t, game.Score())
	assert.Equal(t, DefaultStartTiles, CountTiles(game.Board()))
	assert.Equal(t, 1, actuator.continues)
	assert.Equal(t, 4, storage.BestScore(), "best score is kept across restarts")
	assert.Zero(t, storage.GameState().Score)
}

func TestGame_BestScoreOnlyRises(t *testing.T) {
	storage := NewMemoryStorage()
	storage.SetBestScore(100)
	storage.SetGameState(stateFromRows([][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))

	game, err := NewGame(nil, WithStorage(storage), WithRandom(&scriptedRandom{}))
	require.NoError(t, err)

	game.Move(Left)
	assert.Equal(t, 100, game.BestScore())
	assert.Equal(t, 100, game.Metadata().BestScore)
}

func TestGame_RejectsMismatchedState(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	storage := NewMemoryStorage()
	storage.SetGameState(stateFromRows([][]int{
		{2, 0, 0},
		{0, 0, 0},
		{0, 0, 4},
	}))

	game, err := NewGame(nil, WithStorage(storage), WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, DefaultBoardSize, game.Board().Size())
	assert.Zero(t, game.Score())
	assert.Equal(t, 1, logs.FilterMessage("discarding stored game state").Len())
	assert.Equal(t, DefaultBoardSize, storage.GameState().Grid.Size)
}

func TestGame_RejectsInvalidTileValues(t *testing.T) {
	storage := NewMemoryStorage()
	storage.SetGameState(stateFromRows([][]int{
		{3, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))

	game, err := NewGame(nil, WithStorage(storage))
	require.NoError(t, err)
	for _, tile := range game.Board().Tiles() {
		assert.NotEqual(t, 3, tile.Value)
	}
}

func TestGame_PreviewAndPossibleMoves(t *testing.T) {
	game, _ := newTestGame(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	before := game.Serialize()

	preview := game.Preview(Left)
	assert.True(t, preview.Moved)
	assert.Equal(t, 4, preview.ScoreDelta)
	assert.Nil(t, preview.Spawned)

	assert.False(t, game.Preview(Up).Moved)
	assert.Equal(t, []Direction{Right, Down, Left}, game.PossibleMoves())
	assert.Equal(t, before, game.Serialize(), "previews leave the game untouched")
}

func TestGame_InvalidDirectionIgnored(t *testing.T) {
	game, _ := newTestGame(t, [][]int{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	result := game.Move(Direction(7))
	assert.True(t, result.Ignored)
	assert.Equal(t, 1, CountTiles(game.Board()))
}

func TestGame_ViewMarksAnimations(t *testing.T) {
	actuator := &recordingActuator{}
	game, _ := newTestGame(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 4},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, WithActuator(actuator))

	game.Move(Left)

	views := actuator.views[len(actuator.views)-1]
	byPos := make(map[Position]TileView, len(views))
	for _, v := range views {
		byPos[v.Position] = v
	}

	merged := byPos[Position{X: 0, Y: 0}]
	assert.Len(t, merged.MergedFrom, 2)
	assert.False(t, merged.New)

	slid := byPos[Position{X: 0, Y: 1}]
	require.NotNil(t, slid.PreviousPosition)
	assert.Equal(t, Position{X: 3, Y: 1}, *slid.PreviousPosition)

	spawned := byPos[Position{X: 0, Y: 2}]
	assert.True(t, spawned.New)
	assert.Equal(t, 2, spawned.Value)
}
