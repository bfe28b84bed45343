package sink

import "tscan/internal/diag"

// Merge folds other into s with set-union semantics over fingerprints:
// merging the same sink twice, or merging in a different order, leaves s with
// the same fingerprint set, the same counters and the same configuration
// attribution. Diagnostics that were still pending in other become pending in s.
func (s *Sink) Merge(other *Sink) {
	if other == nil || other == s {
		return
	}

	other.mu.Lock()
	incoming := make([]entry, len(other.entries))
	for i, e := range other.entries {
		e.d = e.d.Clone()
		incoming[i] = e
	}
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range incoming {
		fp := e.d.Fingerprint()
		if idx, ok := s.seen[fp]; ok {
			s.entries[idx].d.AddConfigs(e.d.Configs...)
			continue
		}
		idx := len(s.entries)
		s.seen[fp] = idx
		s.entries = append(s.entries, e)
		if e.suppressed {
			s.suppressed++
			continue
		}
		s.emitted++
		if e.d.Severity == diag.SevError {
			s.errors++
		}
		if !e.flushed {
			s.pending = append(s.pending, idx)
		}
	}
}
