package domain

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusVerified  TransactionStatus = "VERIFIED"
	StatusRejected  TransactionStatus = "REJECTED"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

var transitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:  {StatusVerified, StatusRejected, StatusCompleted, StatusFailed, StatusCancelled},
	StatusVerified: {StatusCompleted},
}

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func (s TransactionStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether next is reachable from s. Staying in the same
// status is allowed and only refreshes verification metadata.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// StatusEffect is the balance consequence of a transition.
type StatusEffect int

const (
	EffectNone StatusEffect = iota
	// EffectSettle applies legs that were deferred while PENDING.
	EffectSettle
	// EffectCompensate undoes the legs applied at creation.
	EffectCompensate
)

// TransitionEffect returns what a move from one status to another does to balances.
func TransitionEffect(from, to TransactionStatus) StatusEffect {
	if from != StatusPending || from == to {
		return EffectNone
	}
	switch to {
	case StatusVerified, StatusCompleted:
		return EffectSettle
	case StatusRejected, StatusFailed, StatusCancelled:
		return EffectCompensate
	}
	return EffectNone
}
