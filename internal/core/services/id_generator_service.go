package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/google/uuid"
)

// CandidateSource produces one candidate identifier of a kind.
type CandidateSource func(kind domain.IDKind, now time.Time) (string, error)

type idGeneratorService struct {
	BaseService
	registry    portsrepo.IdentifierRegistry
	candidate   CandidateSource
	maxAttempts int
}

// IDGeneratorOption is a function that configures an idGeneratorService
type IDGeneratorOption func(*idGeneratorService)

// WithCandidateSource replaces the default candidate source.
func WithCandidateSource(src CandidateSource) IDGeneratorOption {
	return func(s *idGeneratorService) {
		s.candidate = src
	}
}

// NewIDGeneratorService creates a generator that checks candidates against registry.
func NewIDGeneratorService(registry portsrepo.IdentifierRegistry, options ...IDGeneratorOption) portssvc.IDGeneratorSvc {
	s := &idGeneratorService{
		registry:    registry,
		candidate:   DefaultCandidate,
		maxAttempts: domain.MaxIDAttempts,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.IDGeneratorSvc = (*idGeneratorService)(nil)

// Generate returns a candidate of kind that is not yet registered.
func (s *idGeneratorService) Generate(ctx context.Context, kind domain.IDKind) (string, error) {
	now := s.Now()
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, err := s.candidate(kind, now)
		if err != nil {
			return "", fmt.Errorf("failed to generate %s candidate: %w", kind, err)
		}
		exists, err := s.registry.IdentifierExists(ctx, kind, id)
		if err != nil {
			return "", fmt.Errorf("failed to check %s uniqueness: %w", kind, err)
		}
		if !exists {
			return id, nil
		}
		s.LogDebug(ctx, "Identifier candidate collided", slog.String("kind", string(kind)), slog.Int("attempt", attempt))
	}
	s.LogError(ctx, apperrors.ErrIDExhaustion, "Identifier attempts exhausted",
		slog.String("kind", string(kind)), slog.Int("attempts", s.maxAttempts))
	return "", fmt.Errorf("%w: %s after %d attempts", apperrors.ErrIDExhaustion, kind, s.maxAttempts)
}

// DefaultCandidate builds identifiers from UUIDv7 hex and crypto/rand digits.
func DefaultCandidate(kind domain.IDKind, now time.Time) (string, error) {
	switch kind {
	case domain.IDKindClient:
		return timeOrderedHex("CLT")
	case domain.IDKindAccount:
		return timeOrderedHex("ACC")
	case domain.IDKindTransaction:
		return timeOrderedHex("TXN")
	case domain.IDKindWalletAddress:
		h, err := uuidHex()
		if err != nil {
			return "", err
		}
		return "1" + h, nil
	case domain.IDKindIdentificationNumber:
		return yearDigits("ID", now, 8)
	case domain.IDKindEmployee:
		return yearDigits("EMP", now, 4)
	}
	return "", fmt.Errorf("unknown identifier kind %q", kind)
}

func uuidHex() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(u.String(), "-", ""), nil
}

// timeOrderedHex is prefix + 12 hex of millisecond timestamp + 8 hex of randomness.
func timeOrderedHex(prefix string) (string, error) {
	h, err := uuidHex()
	if err != nil {
		return "", err
	}
	return prefix + strings.ToUpper(h[:12]+h[len(h)-8:]), nil
}

func yearDigits(prefix string, now time.Time, digits int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d%0*d", prefix, now.Year(), digits, n.Int64()), nil
}
