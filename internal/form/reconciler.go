package form

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"clientregistry/internal/cep"
	"clientregistry/internal/registry/validation"
	"clientregistry/pkg/sentinel"
)

// State is the reconciler state for one form session. Transitions happen
// only on blur events; typing never triggers a lookup.
type State int

const (
	StateIdle State = iota
	StateResolvingFromAddress
	StateResolvingFromPostalCode
)

// cepToken matches a postal code embedded in free text: 5 digits, an
// optional separator, 3 digits.
var cepToken = regexp.MustCompile(`\b\d{5}-?\d{3}\b`)

// AddressBlur runs the address→postal-code direction of the reconciler.
//
// Free-text address edits are the primary signal of user intent, so a
// postal code detected in the address augments and corrects the address:
// on a successful lookup the matched token is removed, the canonical
// street is prepended to the trimmed remainder, and the postal code and
// city are overwritten.
//
// Lookup misses and transport failures are silent no-ops: autofill is a
// convenience, never a requirement.
func (s *Session) AddressBlur(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.draft.Address == "" {
		s.mu.Unlock()
		return
	}
	token := cepToken.FindString(s.draft.Address)
	if token == "" {
		s.mu.Unlock()
		return
	}
	code := cep.Normalize(token)
	if !validation.CEP(code) || code == s.draft.CEP {
		s.mu.Unlock()
		return
	}
	attempt, lctx := s.startLookupLocked(ctx, StateResolvingFromAddress)
	s.mu.Unlock()

	res, err := s.doLookup(lctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishLookupLocked(attempt) {
		return
	}
	if err != nil {
		return
	}

	s.draft.CEP = code
	if res.Street != "" {
		remainder := trimDebris(stripFirstToken(s.draft.Address))
		if remainder != "" {
			s.draft.Address = res.Street + ", " + remainder
		} else {
			s.draft.Address = res.Street
		}
	}
	if res.Locality != "" {
		s.draft.City = res.Locality
	}
}

// PostalCodeBlur runs the postal-code→address direction. Direct postal
// code entry is a convenience autofill, so it never clobbers address text
// the user already typed: the street fills only an empty address, while
// the city is refreshed whenever the lookup returns a locality.
func (s *Session) PostalCodeBlur(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.draft.CEP == "" || !validation.CEP(s.draft.CEP) {
		s.mu.Unlock()
		return
	}
	code := cep.Normalize(s.draft.CEP)
	attempt, lctx := s.startLookupLocked(ctx, StateResolvingFromPostalCode)
	s.mu.Unlock()

	res, err := s.doLookup(lctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishLookupLocked(attempt) {
		return
	}
	if err != nil {
		return
	}

	if res.Street != "" && s.draft.Address == "" {
		s.draft.Address = res.Street
	}
	if res.Locality != "" {
		s.draft.City = res.Locality
	}
}

// startLookupLocked registers a new reconciliation attempt. The previous
// in-flight attempt, if any, is cancelled and superseded: sequential blur
// events are observably serialized and the newest attempt always wins.
func (s *Session) startLookupLocked(ctx context.Context, next State) (uint64, context.Context) {
	s.abortLookupLocked()
	attempt := s.seq
	s.state = next
	lctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return attempt, lctx
}

// finishLookupLocked reports whether this attempt may apply its result.
// Stale attempts (superseded or from a closed session) are discarded and
// must not touch the draft or the state.
func (s *Session) finishLookupLocked(attempt uint64) bool {
	if s.closed || attempt != s.seq {
		return false
	}
	s.state = StateIdle
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

func (s *Session) doLookup(ctx context.Context, code string) (cep.Result, error) {
	start := time.Now()
	res, err := s.lookup.Lookup(ctx, code)
	if s.metrics != nil {
		s.metrics.ObserveLookup(start)
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.LookupMisses.Inc()
		}
	}
	if err != nil {
		s.logger.Debug("reconciler lookup degraded to no-op", "code", code, "error", err)
	}
	return res, err
}

// stripFirstToken removes only the token the lookup resolved. Any
// further token in the text is part of the user's address and must
// survive in the remainder.
func stripFirstToken(address string) string {
	loc := cepToken.FindStringIndex(address)
	if loc == nil {
		return address
	}
	return address[:loc[0]] + address[loc[1]:]
}

// trimDebris strips the whitespace and comma debris left behind after
// removing the postal code token from the address text.
func trimDebris(s string) string {
	return strings.Trim(s, " \t,")
}
