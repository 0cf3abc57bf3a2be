package state

import "time"

// RetargetDifficulty adjusts the difficulty based on the time since the last
// block was mined. Blocks arriving faster than the genesis fast block
// interval raise the difficulty by one, blocks arriving slower than the slow
// block interval lower it by one, never below 1. The last mined time is
// reset to now in every case.
func (s *State) RetargetDifficulty() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.retargetDifficulty()
}

// retargetDifficulty performs the adjustment. The caller must hold mu.
func (s *State) retargetDifficulty() {
	now := s.now()
	elapsed := now.Sub(s.lastMined)

	old := s.difficulty
	switch {
	case elapsed < time.Duration(s.genesis.FastBlock):
		s.difficulty++

	case elapsed > time.Duration(s.genesis.SlowBlock) && s.difficulty > 1:
		s.difficulty--
	}

	s.lastMined = now

	s.evHandler("state: retargetDifficulty: elapsed[%v]: difficulty[%d->%d]", elapsed, old, s.difficulty)
}
