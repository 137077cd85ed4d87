package snake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession("AB3x", DefaultGrid, 50*time.Millisecond, 1, 4)
}

func TestConnectAssignsOwnerToFirstPlayer(t *testing.T) {
	s := newTestSession()
	a, err := s.Connect("h:1", "A")
	require.NoError(t, err)
	require.Equal(t, "h:1", s.Owner)
	require.True(t, a.Alive)

	_, err = s.Connect("h:2", "B")
	require.NoError(t, err)
	require.Equal(t, "h:1", s.Owner, "owner should not change on a second join")
}

func TestConnectRejectsDuplicateName(t *testing.T) {
	s := newTestSession()
	_, err := s.Connect("h:1", "A")
	require.NoError(t, err)

	_, err = s.Connect("h:2", "A")
	require.ErrorIs(t, err, ErrNameTaken)
}

func TestConnectRejectsWhileRunning(t *testing.T) {
	s := newTestSession()
	_, _ = s.Connect("h:1", "A")
	s.Start()

	_, err := s.Connect("h:2", "B")
	require.ErrorIs(t, err, ErrSessionRunning)
}

func TestStartLayoutMatchesSpecExample(t *testing.T) {
	// S2: grid 40x30, initial_chunk_amount=4, A at x=13, B at x=26,
	// chunks y in {14,15,16,17}, heads at y=14, direction UP.
	s := newTestSession()
	a, _ := s.Connect("h:1", "A")
	b, _ := s.Connect("h:2", "B")
	s.Start()

	require.Equal(t, 13, a.Head().X)
	require.Equal(t, 26, b.Head().X)
	require.Equal(t, Point{X: 13, Y: 14}, a.Head())
	require.Equal(t, []Point{{13, 14}, {13, 15}, {13, 16}, {13, 17}}, a.Chunks)
	require.Equal(t, Up, a.Dir)
}

func TestDisconnectBeforeStartPromotesOwner(t *testing.T) {
	s := newTestSession()
	_, _ = s.Connect("h:1", "A")
	_, _ = s.Connect("h:2", "B")

	res := s.Disconnect("h:1")
	require.False(t, res.SessionEmptied)
	require.Equal(t, "h:2", res.NewOwner)
	require.Equal(t, "h:2", s.Owner)
}

func TestDisconnectLastPlayerBeforeStartEmptiesSession(t *testing.T) {
	s := newTestSession()
	_, _ = s.Connect("h:1", "A")

	res := s.Disconnect("h:1")
	require.True(t, res.SessionEmptied)
}

func TestDisconnectWhileRunningRecordsDeath(t *testing.T) {
	s := newTestSession()
	_, _ = s.Connect("h:1", "A")
	_, _ = s.Connect("h:2", "B")
	s.Start()

	s.Disconnect("h:1")
	require.Len(t, s.currentDeaths, 1)
	require.Equal(t, "h:1", s.currentDeaths[0].Key)
	require.Equal(t, []string{"h:2"}, s.aliveOrder)
}

func TestAppleGrowthPreservesTailAndClearsApple(t *testing.T) {
	// S3: head (5,5) moving RIGHT, apple at (6,5), chunks length 4.
	s := newTestSession()
	a, _ := s.Connect("h:1", "A")
	a.Chunks = []Point{{5, 5}, {4, 5}, {3, 5}, {2, 5}}
	a.Dir = Right
	s.Apples[Point{X: 6, Y: 5}] = struct{}{}

	s.Move()

	require.Equal(t, Point{X: 6, Y: 5}, a.Head())
	require.Empty(t, s.Apples)
	require.Len(t, a.Chunks, 5)
	require.Equal(t, Point{X: 2, Y: 5}, a.Chunks[len(a.Chunks)-1])
}

func TestWallDeathKillsPlayerOutOfBounds(t *testing.T) {
	s := newTestSession()
	a, _ := s.Connect("h:1", "A")
	b, _ := s.Connect("h:2", "B")
	a.Chunks = []Point{{0, 0}, {1, 0}}
	a.Dir = Left // steps to x=-1
	b.Chunks = []Point{{10, 10}, {10, 11}}
	b.Dir = Up

	s.Move()

	require.False(t, a.Alive)
	require.True(t, b.Alive)
	require.Equal(t, []string{"h:2"}, s.aliveOrder)
}

func TestSelfCuttingTruncatesWithoutKilling(t *testing.T) {
	s := newTestSession()
	a, _ := s.Connect("h:1", "A")
	// Head about to move onto a body cell that isn't this tick's vacated
	// tail cell - a tight loop five chunks long.
	a.Chunks = []Point{{5, 5}, {5, 6}, {6, 6}, {6, 5}, {7, 5}}
	a.Dir = Right // new head (6,5), occupied at (post-move) index 4

	s.Move()

	require.True(t, a.Alive)
	require.Equal(t, Point{X: 6, Y: 5}, a.Head())
	require.Len(t, a.Chunks, 4)
}

func TestHeadOnCollisionUnequalLengths(t *testing.T) {
	// S4: A length 5 moving RIGHT, B length 3 moving LEFT, heads swap.
	s := newTestSession()
	a, _ := s.Connect("h:1", "A")
	b, _ := s.Connect("h:2", "B")
	a.Chunks = []Point{{5, 5}, {4, 5}, {3, 5}, {2, 5}, {1, 5}}
	a.Dir = Right
	b.Chunks = []Point{{6, 5}, {7, 5}, {8, 5}}
	b.Dir = Left

	s.Move()

	require.True(t, a.Alive)
	require.False(t, b.Alive)
	require.Equal(t, []string{"h:1"}, s.aliveOrder)
}

func TestHeadOverlapSurvivorIsLongest(t *testing.T) {
	s := newTestSession()
	a, _ := s.Connect("h:1", "A")
	b, _ := s.Connect("h:2", "B")
	// Both step onto (10,10) from perpendicular directions, unequal length.
	a.Chunks = []Point{{9, 10}, {8, 10}, {7, 10}}
	a.Dir = Right
	b.Chunks = []Point{{10, 9}}
	b.Dir = Down

	s.Move()

	require.True(t, a.Alive, "A is longer, should survive the overlap")
	require.False(t, b.Alive)
}

func TestLeaderboardGroupsEqualLengthDeathsIntoOnePlace(t *testing.T) {
	s := newTestSession()
	_, _ = s.Connect("h:1", "A")
	_, _ = s.Connect("h:2", "B")
	_, _ = s.Connect("h:3", "C")
	s.Start()

	s.players["h:1"].Chunks = []Point{{1, 1}, {1, 2}}
	s.players["h:2"].Chunks = []Point{{2, 1}, {2, 2}}
	s.players["h:3"].Chunks = []Point{{3, 1}, {3, 2}, {3, 3}}

	s.kill([]string{"h:1", "h:2"})
	s.flushLeaderboard()
	s.kill([]string{"h:3"})
	s.finishGame()

	board := s.Leaderboard()
	require.Len(t, board, 2)
	require.ElementsMatch(t, []string{"h:1", "h:2"}, board[1].Keys)
	require.Equal(t, []string{"h:3"}, board[0].Keys)
}

func TestEveryAdmittedPlayerAppearsExactlyOnceInFinalLeaderboard(t *testing.T) {
	s := newTestSession()
	keys := []string{"h:1", "h:2", "h:3", "h:4"}
	for i, k := range keys {
		_, err := s.Connect(k, string(rune('A'+i)))
		require.NoError(t, err)
	}
	s.Start()

	s.kill([]string{"h:1"})
	s.flushLeaderboard()
	s.kill([]string{"h:2", "h:3"})
	s.finishGame()

	seen := map[string]int{}
	for _, place := range s.Leaderboard() {
		for _, k := range place.Keys {
			seen[k]++
		}
	}
	require.Len(t, seen, len(keys))
	for _, k := range keys {
		require.Equal(t, 1, seen[k])
	}
}

func TestAdvanceDeadlineMovesByTickInterval(t *testing.T) {
	s := newTestSession()
	s.LastTickTime = time.Now()
	first := s.LastTickTime

	s.AdvanceDeadline()
	require.True(t, s.LastTickTime.After(first))
	require.Equal(t, s.TickInterval, s.LastTickTime.Sub(first))
}

func TestInviteCodeAlphabetAndLength(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateInviteCode()
		require.NoError(t, err)
		require.Len(t, code, codeLength)
		for _, r := range code {
			require.Contains(t, codeAlphabet, string(r))
		}
	}
}

func TestChunkContiguityAfterMove(t *testing.T) {
	s := newTestSession()
	a, _ := s.Connect("h:1", "A")
	a.Chunks = []Point{{10, 10}, {10, 11}, {10, 12}, {9, 12}}
	a.Dir = Up

	s.Move()

	for i := 1; i < len(a.Chunks); i++ {
		dx := abs(a.Chunks[i-1].X - a.Chunks[i].X)
		dy := abs(a.Chunks[i-1].Y - a.Chunks[i].Y)
		require.True(t, dx+dy == 1, "chunks %d and %d not adjacent", i-1, i)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestHeadUniquenessAfterFullCollisionPhase(t *testing.T) {
	s := newTestSession()
	a, _ := s.Connect("h:1", "A")
	b, _ := s.Connect("h:2", "B")
	c, _ := s.Connect("h:3", "C")
	a.Chunks = []Point{{5, 5}, {5, 6}}
	a.Dir = Right
	b.Chunks = []Point{{4, 5}, {4, 6}}
	b.Dir = Right
	c.Chunks = []Point{{20, 20}, {20, 21}}
	c.Dir = Up

	s.Move()

	heads := map[Point]int{}
	for _, p := range s.AlivePlayers() {
		heads[p.Head()]++
	}
	for cell, count := range heads {
		require.Equal(t, 1, count, "head %v occupied by more than one alive player", cell)
	}
}
