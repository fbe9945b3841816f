package checker

// Stats counts the work done by strategic evaluations. A nil *Stats
// counts nothing.
type Stats struct {
	// Strategies is the number of uniform strategies fully evaluated.
	Strategies int64
	// Filterings is the number of winning-region computations.
	Filterings int64
	// Splits is the number of split steps over equivalence classes.
	Splits int64
	// FixpointIterations counts steps of the strategic fixpoints.
	FixpointIterations int64
	// NfairIterations counts steps of the unfair-avoidance fixpoint.
	NfairIterations int64
}

func (s *Stats) strategy() {
	if s != nil {
		s.Strategies++
	}
}

func (s *Stats) filtering() {
	if s != nil {
		s.Filterings++
	}
}

func (s *Stats) split() {
	if s != nil {
		s.Splits++
	}
}

func (s *Stats) fixpoint(steps int) {
	if s != nil {
		s.FixpointIterations += int64(steps)
	}
}

func (s *Stats) nfair(steps int) {
	if s != nil {
		s.NfairIterations += int64(steps)
	}
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Strategies += o.Strategies
	s.Filterings += o.Filterings
	s.Splits += o.Splits
	s.FixpointIterations += o.FixpointIterations
	s.NfairIterations += o.NfairIterations
}

// Sub returns s - o, for measuring one evaluation.
func (s Stats) Sub(o Stats) Stats {
	return Stats{
		Strategies:         s.Strategies - o.Strategies,
		Filterings:         s.Filterings - o.Filterings,
		Splits:             s.Splits - o.Splits,
		FixpointIterations: s.FixpointIterations - o.FixpointIterations,
		NfairIterations:    s.NfairIterations - o.NfairIterations,
	}
}
