package synth

import (
	"errors"
	"fmt"
)

// CanStart reports whether Start would act: notes selected and nothing sounding
func (s *Synth) CanStart(selected []string) bool {
	return len(selected) > 0 && s.pool.Empty()
}

// CanStop reports whether Stop would act
func (s *Synth) CanStop() bool {
	return s.pool.Len() > 0
}

// CanChange reports whether ChangeChord would act
func (s *Synth) CanChange(target []string) bool {
	return s.pool.Len() > 0 && len(target) > 0
}

// Start resumes the engine and voices the selection
// Resume failure returns ErrEngineUnavailable and leaves the synth stopped for a later retry
func (s *Synth) Start(selected []string) error {
	if !s.CanStart(selected) {
		return nil
	}
	if err := s.eng.Resume(); err != nil {
		if errors.Is(err, ErrEngineUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	return s.pool.Start(selected, s.params)
}

// Stop silences and releases every voice
func (s *Synth) Stop() {
	if !s.CanStop() {
		return
	}
	s.pool.Stop()
}

// ChangeChord retargets the sounding voices to target
func (s *Synth) ChangeChord(target []string) error {
	if !s.CanChange(target) {
		return nil
	}
	return s.pool.Retarget(target, s.params)
}
