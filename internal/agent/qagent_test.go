package agent

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-threes/internal/games/threes"
)

func TestQTablePriors(t *testing.T) {
	table := NewQTable(DefaultParams().Priors.Rewards())
	var empty threes.Board

	d, q := table.MaxAction(empty)
	if d != threes.Left || q != 80 {
		t.Errorf("MaxAction on unseen board = %s %v, want Left 80", d, q)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestQTableMaxAction(t *testing.T) {
	tests := []struct {
		name    string
		rewards ActionRewards
		want    threes.Direction
		wantQ   float64
	}{
		{"single best", ActionRewards{42, 0, 0, 0}, threes.Down, 42},
		{"ties go to the later direction", ActionRewards{5, 5, 5, 1}, threes.Left, 5},
		{"all below the floor", ActionRewards{-3, -4, -5, -6}, threes.Down, -1},
		{"floor tie goes to the direction", ActionRewards{-3, -1, -5, -6}, threes.Up, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewQTable(tt.rewards)
			d, q := table.MaxAction(threes.Board{})
			if d != tt.want || q != tt.wantQ {
				t.Errorf("MaxAction() = %s %v, want %s %v", d, q, tt.want, tt.wantQ)
			}
		})
	}
}

func TestQTableBestOf(t *testing.T) {
	table := NewQTable(ActionRewards{10, 20, 30, 40})
	var b threes.Board

	tests := []struct {
		name  string
		avail []threes.Direction
		want  threes.Direction
	}{
		{"all", threes.Directions[:], threes.Right},
		{"without right", []threes.Direction{threes.Down, threes.Up, threes.Left}, threes.Left},
		{"single", []threes.Direction{threes.Up}, threes.Up},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.BestOf(b, tt.avail); got != tt.want {
				t.Errorf("BestOf(%v) = %s, want %s", tt.avail, got, tt.want)
			}
		})
	}
}

func TestQTableCountsReads(t *testing.T) {
	table := NewQTable(ActionRewards{})
	var b threes.Board

	table.Value(b, threes.Up)
	table.Set(b, threes.Up, 3)
	table.MaxAction(b)

	if got := table.Table(b).Reads; got != 4 {
		t.Errorf("Reads = %d, want 4", got)
	}
}

func TestQTableNaNPanics(t *testing.T) {
	table := NewQTable(ActionRewards{})
	var b threes.Board
	table.Set(b, threes.Left, math.NaN())

	defer func() {
		if recover() == nil {
			t.Error("MaxAction with a NaN entry should panic")
		}
	}()
	table.MaxAction(b)
}

func TestQAgentObserve(t *testing.T) {
	p := DefaultParams()
	a := NewQAgent(1, p)

	var board0 threes.Board
	board1 := board0
	board1.Set(0, 0, 1)

	a.Observe(board0, threes.Up, board1, 100)

	// 40·(1−0.9) + 0.9·(100 + 0.9·80)
	want := 158.8
	if got := a.Table().Value(board0, threes.Up); math.Abs(got-want) > 1e-9 {
		t.Errorf("Q(board0, Up) = %v, want %v", got, want)
	}
	// Other directions keep their priors
	if got := a.Table().Value(board0, threes.Left); got != 80 {
		t.Errorf("Q(board0, Left) = %v, want 80", got)
	}
}

func TestQAgentExploitsWithoutExploration(t *testing.T) {
	p := DefaultParams()
	p.ExplorationRate = 0
	a := NewQAgent(1, p)

	g := threes.New(1, false)
	if d := a.ChooseDirection(g); d != threes.Left {
		t.Errorf("greedy first move = %s, want Left from the priors", d)
	}
}

func TestQAgentPlaysFullGame(t *testing.T) {
	a := NewQAgent(9, DefaultParams())

	for i := range 5 {
		res, err := PlaySeed(uint64(i+1), a, true, false)
		if err != nil {
			t.Fatalf("game %d: %v", i, err)
		}
		if res.Score == 0 {
			t.Errorf("game %d scored 0", i)
		}
	}
	if a.Table().Len() == 0 {
		t.Error("learning left the table empty")
	}
}

func TestQAgentSummary(t *testing.T) {
	a := NewQAgent(2, DefaultParams())
	if _, err := PlaySeed(2, a, true, false); err != nil {
		t.Fatal(err)
	}

	stats := a.Stats()
	total := 0
	for _, n := range stats.Fullness {
		total += n
	}
	if total != stats.Tables {
		t.Errorf("fullness counts sum to %d, want %d", total, stats.Tables)
	}

	var sb strings.Builder
	if err := a.Summary(&sb, 3); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{"qtable ", "Q table fullness:", "#0 table [", "Left"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	hot := a.Hottest(2)
	if len(hot) != 2 {
		t.Fatalf("Hottest(2) returned %d boards", len(hot))
	}
	if a.Table().tables[hot[0]].Reads < a.Table().tables[hot[1]].Reads {
		t.Error("Hottest not ordered by reads")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestQAgentSummaryWriteError(t *testing.T) {
	a := NewQAgent(2, DefaultParams())
	if _, err := PlaySeed(2, a, true, false); err != nil {
		t.Fatal(err)
	}

	if err := a.Summary(failingWriter{}, 3); err == nil || err.Error() != "disk full" {
		t.Errorf("Summary to a failing writer = %v, want disk full", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults", func(*Params) {}, false},
		{"learning rate above one", func(p *Params) { p.LearningRate = 1.5 }, true},
		{"negative discount", func(p *Params) { p.DiscountFactor = -0.1 }, true},
		{"NaN exploration", func(p *Params) { p.ExplorationRate = math.NaN() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
