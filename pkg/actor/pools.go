package actor

// Derived pool names.
const (
	PoolFrenzy    = "frenzy"
	PoolWillpower = "willpower"
	PoolRemorse   = "remorse"
	PoolHarano    = "harano"
	PoolHauglosk  = "hauglosk"
)

// Frenzy is the dice pool to resist frenzy: undamaged willpower plus a third
// of humanity, at least one die.
func (s *Sheet) Frenzy() int {
	return max(s.Willpower.Max-s.Willpower.Aggravated-s.Willpower.Superficial+s.Humanity.Value/3, 1)
}

// WillpowerPool is the number of undamaged willpower boxes, at least one.
func (s *Sheet) WillpowerPool() int {
	return max(s.Willpower.Max-s.Willpower.Aggravated-s.Willpower.Superficial, 1)
}

// Remorse is the pool for a remorse test, at least one die.
func (s *Sheet) Remorse() int {
	return max(10-s.Humanity.Value-s.Humanity.Stains, 1)
}

// HaranoPool serves both harano and hauglosk tests.
func (s *Sheet) HaranoPool() int {
	return max(s.Harano.Value+s.Hauglosk.Value, 1)
}

// DerivedPool looks up a named pool.
func (s *Sheet) DerivedPool(name string) (int, bool) {
	switch name {
	case PoolFrenzy:
		return s.Frenzy(), true
	case PoolWillpower:
		return s.WillpowerPool(), true
	case PoolRemorse:
		return s.Remorse(), true
	case PoolHarano, PoolHauglosk:
		return s.HaranoPool(), true
	}
	return 0, false
}

// DerivedPools returns every pool the sheet's line can roll.
func (s *Sheet) DerivedPools() map[string]int {
	pools := map[string]int{PoolWillpower: s.WillpowerPool()}
	switch s.Type {
	case LineVampire, LineGhoul:
		pools[PoolFrenzy] = s.Frenzy()
		pools[PoolRemorse] = s.Remorse()
	case LineWerewolf:
		pools[PoolHarano] = s.HaranoPool()
		pools[PoolHauglosk] = s.HaranoPool()
	}
	return pools
}
