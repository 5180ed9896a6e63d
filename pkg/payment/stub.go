package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// StubGateway is an in-process gateway for development. Every payment and
// payout stays pending until Complete or Fail is called. Providers listed in
// InstantProviders complete payouts immediately.
type StubGateway struct {
	InstantProviders []string

	mu     sync.Mutex
	seq    int64
	states map[string]*StatusResult
}

func NewStubGateway(instant ...string) *StubGateway {
	return &StubGateway{InstantProviders: instant, states: map[string]*StatusResult{}}
}

func (s *StubGateway) next(prefix string, status string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ref := fmt.Sprintf("stub_%s_%d_%d", prefix, time.Now().UnixNano(), s.seq)
	if s.states == nil {
		s.states = map[string]*StatusResult{}
	}
	s.states[ref] = &StatusResult{Reference: ref, Status: status}
	return &Result{Reference: ref, Status: status}
}

func (s *StubGateway) lookup(reference string) (*StatusResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[reference]
	if !ok {
		return nil, fmt.Errorf("stub: unknown reference %s", reference)
	}
	cp := *st
	return &cp, nil
}

func (s *StubGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*Result, error) {
	return s.next("pay", StatusPending), nil
}

func (s *StubGateway) GetPaymentStatus(ctx context.Context, reference string) (*StatusResult, error) {
	return s.lookup(reference)
}

func (s *StubGateway) CreatePayout(ctx context.Context, req PayoutRequest) (*Result, error) {
	for _, p := range s.InstantProviders {
		if strings.EqualFold(p, req.Provider) {
			res := s.next("po", StatusCompleted)
			now := time.Now()
			s.mu.Lock()
			s.states[res.Reference].CompletedAt = &now
			s.mu.Unlock()
			return res, nil
		}
	}
	return s.next("po", StatusPending), nil
}

func (s *StubGateway) GetPayoutStatus(ctx context.Context, reference string) (*StatusResult, error) {
	return s.lookup(reference)
}

// Complete marks a stub transaction as completed.
func (s *StubGateway) Complete(reference string) {
	s.set(reference, StatusCompleted, "")
}

// Fail marks a stub transaction as failed with reason.
func (s *StubGateway) Fail(reference, reason string) {
	s.set(reference, StatusFailed, reason)
}

func (s *StubGateway) set(reference, status, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[reference]
	if !ok {
		return
	}
	st.Status = status
	st.FailureReason = reason
	if status == StatusCompleted {
		now := time.Now()
		st.CompletedAt = &now
	}
}
