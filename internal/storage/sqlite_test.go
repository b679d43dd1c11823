package storage

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-threes/internal/agent"
	"github.com/vovakirdan/tui-threes/internal/games/threes"
	"github.com/vovakirdan/tui-threes/internal/training"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsScores(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveScore(threes.ID, 42); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore(threes.ID)
	if err != nil || high != 42 {
		t.Errorf("HighScore() = %d, %v; want 42", high, err)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, s := range []int{100, 50, 200} {
		if _, err := store.SaveScore(threes.ID, s); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("other", 500); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores(threes.ID, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	want := []int{200, 100, 50}
	for i, w := range want {
		if scores[i].Score != w {
			t.Errorf("scores[%d] = %d, want %d", i, scores[i].Score, w)
		}
		if scores[i].HasLog {
			t.Errorf("bare score %d should have no log", i)
		}
		if scores[i].Source != SourcePlay {
			t.Errorf("source = %q, want %q", scores[i].Source, SourcePlay)
		}
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := range 5 {
		store.SaveScore("test", (i+1)*100)
	}

	scores, err := store.TopScores("test", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore(threes.ID)
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	store.SaveScore(threes.ID, 100)
	store.SaveScore(threes.ID, 300)
	store.SaveScore(threes.ID, 200)

	high, err = store.HighScore(threes.ID)
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreSaveResultWithLog(t *testing.T) {
	store := openTestStore(t)

	const seed = math.MaxUint64 - 7
	res, err := agent.PlaySeed(seed, agent.NewRandom(1), false, true)
	if err != nil {
		t.Fatal(err)
	}

	id, err := store.SaveResult(ScoreEntry{GameID: threes.ID, Player: "alice", Source: SourceSSH}, res)
	if err != nil {
		t.Fatalf("SaveResult() failed: %v", err)
	}

	top, err := store.TopScores(threes.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	e := top[0]
	if e.ID != id || e.Score != res.Score || e.Moves != res.NumMoves || e.Seed != seed {
		t.Errorf("entry = %+v, want score %d moves %d seed %d", e, res.Score, res.NumMoves, uint64(seed))
	}
	if !e.HasLog || e.Player != "alice" || e.Source != SourceSSH {
		t.Errorf("entry = %+v", e)
	}

	log, err := store.ScoreLog(id)
	if err != nil {
		t.Fatalf("ScoreLog() failed: %v", err)
	}
	replayed, err := threes.Replay(log)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if replayed.Score != res.Score {
		t.Errorf("replayed score %d, want %d", replayed.Score, res.Score)
	}
}

func TestStoreScoreLogMissing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.ScoreLog(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}

	id, _ := store.SaveScore(threes.ID, 10)
	if _, err := store.ScoreLog(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("score without log: err = %v, want ErrNotFound", err)
	}

	if _, err := store.SaveResult(ScoreEntry{GameID: threes.ID}, nil); err == nil {
		t.Error("SaveResult(nil) should fail")
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore(threes.ID, 100)
	store.SaveScore(threes.ID, 200)
	store.SaveScore("other", 300)

	if err := store.ClearScores(threes.ID); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	scores, _ := store.TopScores(threes.ID, 10)
	if len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}

	other, _ := store.TopScores("other", 10)
	if len(other) != 1 {
		t.Errorf("other game's scores should not be affected")
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.GetGameStats(threes.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesCount != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", stats)
	}

	store.SaveResult(ScoreEntry{GameID: threes.ID}, &threes.GameResult{Score: 30, NumMoves: 10})
	store.SaveResult(ScoreEntry{GameID: threes.ID}, &threes.GameResult{Score: 90, NumMoves: 20})

	stats, err = store.GetGameStats(threes.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 90 || stats.AvgScore != 60 ||
		stats.TotalScore != 120 || stats.TotalMoves != 30 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreTrainingRuns(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LatestTrainingRun(); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestTrainingRun on empty db: err = %v, want ErrNotFound", err)
	}

	out := &training.Outcomes{GamesPlayed: []training.PlayedGame{
		{GenID: 0, Score: 12, GameLog: &threes.GameLog{Seed: 5, Moves: []threes.Direction{threes.Left, threes.Up}}},
		{GenID: 1, Score: 40, GameLog: &threes.GameLog{Seed: math.MaxUint64, Moves: []threes.Direction{threes.Down}}},
		{GenID: 2, Score: 21},
	}}
	run := TrainingRun{Seed: 77, Generations: 3, EpisodesPerGen: 10, LearningRate: 0.5, DiscountFactor: 0.9, ExplorationRate: 0.1}

	first, err := store.SaveTrainingRun(run, &training.Outcomes{GamesPlayed: out.GamesPlayed[:1]})
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.SaveTrainingRun(run, out)
	if err != nil {
		t.Fatalf("SaveTrainingRun() failed: %v", err)
	}

	latest, err := store.LatestTrainingRun()
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != id || latest.BestScore != 40 || latest.Seed != 77 || latest.EpisodesPerGen != 10 {
		t.Errorf("latest = %+v", latest)
	}

	runs, err := store.TrainingRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != id || runs[1].ID != first {
		t.Errorf("runs = %+v", runs)
	}

	loaded, err := store.TrainingOutcomes(id)
	if err != nil {
		t.Fatalf("TrainingOutcomes() failed: %v", err)
	}
	if len(loaded.GamesPlayed) != 3 {
		t.Fatalf("loaded %d games", len(loaded.GamesPlayed))
	}
	log, err := loaded.Log(1)
	if err != nil {
		t.Fatal(err)
	}
	if log.Seed != math.MaxUint64 || len(log.Moves) != 1 || log.Moves[0] != threes.Down {
		t.Errorf("generation 1 log = %+v", log)
	}
	if loaded.GamesPlayed[2].GameLog != nil {
		t.Error("generation 2 should have no log")
	}

	if _, err := store.TrainingOutcomes(id + 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown run: err = %v, want ErrNotFound", err)
	}
}
