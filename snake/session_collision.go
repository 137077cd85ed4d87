package snake

import (
	"crypto/rand"
	"math/big"
)

// Move advances the session by one movement sub-tick: per-player
// movement, wall deaths, self-cutting, inter-player collision, and
// deferred apple-growth commit, in that authoritative order.
func (s *Session) Move() {
	s.moveHeads()
	s.applyWallDeaths()
	s.applySelfCutting()
	s.resolveInterPlayerCollisions()
	s.commitDeferredGrowth()
}

func (s *Session) moveHeads() {
	for _, p := range s.AlivePlayers() {
		newHead := p.Head().Add(p.Dir.Offset())
		p.Chunks = append([]Point{newHead}, p.Chunks...)

		if _, hasApple := s.Apples[newHead]; hasApple {
			delete(s.Apples, newHead)
			tail := p.Chunks[len(p.Chunks)-1]
			p.Chunks = p.Chunks[:len(p.Chunks)-1]
			p.lastTailPiece = &tail
			p.hasTailPiece = true
		} else {
			p.Chunks = p.Chunks[:len(p.Chunks)-1]
		}
	}
}

func (s *Session) applyWallDeaths() {
	var dying []string
	for _, p := range s.AlivePlayers() {
		if !s.Grid.Contains(p.Head()) {
			dying = append(dying, p.Key)
		}
	}
	s.kill(dying)
}

func (s *Session) applySelfCutting() {
	for _, p := range s.AlivePlayers() {
		idx := -1
		for i := 1; i < len(p.Chunks); i++ {
			if p.Chunks[i] == p.Head() {
				idx = i
				break
			}
		}
		if idx >= 1 {
			p.Chunks = p.Chunks[:idx]
		}
	}
}

// resolveInterPlayerCollisions runs the three independent sub-phases in
// order: tail collision, head-overlap, head-on. Each phase reads
// post-move positions and is applied atomically before the next begins.
func (s *Session) resolveInterPlayerCollisions() {
	s.resolveTailCollisions()
	s.resolveHeadOverlaps()
	s.resolveHeadOnCollisions()
}

func (s *Session) resolveTailCollisions() {
	alive := s.AlivePlayers()
	dead := make(map[string]bool)

	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			p1, p2 := alive[i], alive[j]
			if dead[p1.Key] || dead[p2.Key] {
				continue
			}
			if p1.Head() == p2.Head() {
				continue // handled by head-overlap phase
			}
			if isHeadOn(p1, p2) {
				continue // handled by head-on phase
			}

			var candidates []*Player
			if idx := p2.indexOf(p1.Head()); idx >= 0 {
				candidates = append(candidates, p1)
			}
			if idx := p1.indexOf(p2.Head()); idx >= 0 {
				candidates = append(candidates, p2)
			}
			for _, loser := range chooseLosers(candidates) {
				dead[loser] = true
			}
		}
	}
	s.kill(mapKeys(dead))
}

// isHeadOn reports whether p1 and p2 are swapping positions head-to-
// second-chunk, the configuration the head-on phase owns.
func isHeadOn(p1, p2 *Player) bool {
	if len(p1.Chunks) < 2 || len(p2.Chunks) < 2 {
		return false
	}
	return p1.Chunks[0] == p2.Chunks[1] && p2.Chunks[0] == p1.Chunks[1]
}

func (s *Session) resolveHeadOverlaps() {
	buckets := make(map[Point][]*Player)
	for _, p := range s.AlivePlayers() {
		buckets[p.Head()] = append(buckets[p.Head()], p)
	}

	var dying []string
	for _, group := range buckets {
		if len(group) < 2 {
			continue
		}
		losers := chooseLosers(group)
		dying = append(dying, losers...)
	}
	s.kill(dying)
}

func (s *Session) resolveHeadOnCollisions() {
	alive := s.AlivePlayers()
	dead := make(map[string]bool)

	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			p1, p2 := alive[i], alive[j]
			if dead[p1.Key] || dead[p2.Key] {
				continue
			}
			if !isHeadOn(p1, p2) {
				continue
			}
			for _, loser := range chooseLosers([]*Player{p1, p2}) {
				dead[loser] = true
			}
		}
	}
	s.kill(mapKeys(dead))
}

// chooseLosers picks the survivor uniformly at random among the longest
// of players, returning every other player's key as a loser.
func chooseLosers(players []*Player) []string {
	if len(players) == 0 {
		return nil
	}
	maxLen := 0
	for _, p := range players {
		if p.Length() > maxLen {
			maxLen = p.Length()
		}
	}

	var longest []*Player
	for _, p := range players {
		if p.Length() == maxLen {
			longest = append(longest, p)
		}
	}

	winnerIdx := 0
	if len(longest) > 1 {
		winnerIdx = randomIndex(len(longest))
	}
	winner := longest[winnerIdx]

	losers := make([]string, 0, len(players)-1)
	for _, p := range players {
		if p.Key != winner.Key {
			losers = append(losers, p.Key)
		}
	}
	return losers
}

func randomIndex(n int) int {
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// kill marks every key in keys dead, removes them from aliveOrder, and
// records their length for the leaderboard. Safe to call with duplicate
// or already-dead keys.
func (s *Session) kill(keys []string) {
	for _, key := range keys {
		p, ok := s.players[key]
		if !ok || !p.Alive {
			continue
		}
		p.Alive = false
		s.currentDeaths = append(s.currentDeaths, death{Key: key, Length: p.Length()})
	}
	if len(keys) == 0 {
		return
	}
	killed := make(map[string]bool, len(keys))
	for _, k := range keys {
		killed[k] = true
	}
	filtered := s.aliveOrder[:0:0]
	for _, k := range s.aliveOrder {
		if !killed[k] {
			filtered = append(filtered, k)
		}
	}
	s.aliveOrder = filtered
}

func (s *Session) commitDeferredGrowth() {
	for _, p := range s.AlivePlayers() {
		if p.hasTailPiece {
			p.Chunks = append(p.Chunks, *p.lastTailPiece)
			p.lastTailPiece = nil
			p.hasTailPiece = false
		}
	}
}

func mapKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
