package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const mergeRetryAttempts = 3

// MergeService folds an anonymous session's cart into a user's cart at
// login. The whole merge runs in one transaction: a crash mid-merge leaves
// the session cart either fully intact or fully merged, never partially
// duplicated. An idempotency store guards against the same login transition
// being merged twice.
type MergeService struct {
	scope       TransactionScope
	idempotency shared.IdempotencyStore
	idemTTL     time.Duration
	logger      *zap.Logger
}

// NewMergeService creates a new MergeService. The idempotency store may be
// nil, in which case every call attempts the merge (the defensive cleanup
// makes a repeat merge a no-op anyway).
func NewMergeService(scope TransactionScope, idempotency shared.IdempotencyStore, logger *zap.Logger) *MergeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeService{
		scope:       scope,
		idempotency: idempotency,
		idemTTL:     shared.DefaultIdempotencyConfig().TTL,
		logger:      logger,
	}
}

// MergeOnLogin transfers all session lines to the user. Duplicate products
// are combined with the quantity clamped to current stock (excess dropped
// silently); other lines are reassigned in place, preserving the original
// price snapshot and creation time.
func (s *MergeService) MergeOnLogin(ctx context.Context, sessionID string, userID uuid.UUID) (*MergeResponse, error) {
	if sessionID == "" || userID == uuid.Nil {
		return nil, shared.ErrInvalidOwner
	}

	key := mergeKey(sessionID, userID)
	if s.idempotency != nil {
		processed, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			return nil, err
		}
		if processed {
			return &MergeResponse{AlreadyMerged: true, Outcomes: []MergeOutcome{}}, nil
		}
	}

	var outcomes []MergeOutcome
	var err error
	for attempt := 1; attempt <= mergeRetryAttempts; attempt++ {
		outcomes, err = s.mergeOnce(ctx, sessionID, userID)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		s.logger.Warn("cart merge conflict, retrying",
			zap.String("session_id", sessionID),
			zap.String("user_id", userID.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, shared.ErrMergeConflict
	}

	if s.idempotency != nil {
		// Marked only after the merge committed; a failure above leaves the
		// key unset so the caller's retry still runs.
		if _, err := s.idempotency.MarkProcessed(ctx, key, s.idemTTL); err != nil {
			s.logger.Warn("failed to record merge idempotency key", zap.Error(err))
		}
	}

	s.logger.Info("session cart merged",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID.String()),
		zap.Int("lines", len(outcomes)),
	)

	return &MergeResponse{AlreadyMerged: false, Outcomes: outcomes}, nil
}

func (s *MergeService) mergeOnce(ctx context.Context, sessionID string, userID uuid.UUID) ([]MergeOutcome, error) {
	sessionOwner := cart.SessionOwner(sessionID)
	userOwner := cart.UserOwner(userID)
	outcomes := make([]MergeOutcome, 0)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sessionLines, err := repos.CartLines().FindByOwner(ctx, sessionOwner)
		if err != nil {
			return err
		}

		for i := range sessionLines {
			sessionLine := &sessionLines[i]

			userLine, err := repos.CartLines().FindOne(ctx, userOwner, sessionLine.ProductID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}

			if userLine == nil {
				// No conflict: reassign in place, preserving the unit price
				// snapshot and CreatedAt
				if err := sessionLine.ReassignToUser(userID); err != nil {
					return err
				}
				if err := repos.CartLines().Save(ctx, sessionLine); err != nil {
					return err
				}
				outcomes = append(outcomes, MergeOutcome{
					ProductID: sessionLine.ProductID,
					Action:    MergeActionMoved,
					Quantity:  sessionLine.Quantity,
				})
				continue
			}

			newQuantity, clamped, err := s.combinedQuantity(ctx, repos, sessionLine, userLine)
			if err != nil {
				return err
			}
			if err := userLine.ChangeQuantity(newQuantity); err != nil {
				return err
			}
			if err := repos.CartLines().Save(ctx, userLine); err != nil {
				return err
			}
			if err := repos.CartLines().Delete(ctx, sessionLine.ID); err != nil {
				return err
			}
			outcomes = append(outcomes, MergeOutcome{
				ProductID: sessionLine.ProductID,
				Action:    MergeActionCombined,
				Quantity:  newQuantity,
				Clamped:   clamped,
			})
		}

		// Defensive cleanup: no session-owned lines may survive the merge
		return repos.CartLines().DeleteAllForOwner(ctx, sessionOwner)
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// combinedQuantity resolves the quantity for a duplicate-product conflict,
// clamped to current stock so the merge never oversells as a side effect.
// When the product is gone from the catalog the quantities are combined
// unclamped and the next validation reports the line as unavailable; when
// stock is zero the user's existing quantity is kept rather than growing a
// line that already cannot be fulfilled.
func (s *MergeService) combinedQuantity(
	ctx context.Context,
	repos TransactionalRepositories,
	sessionLine, userLine *cart.CartLine,
) (int, bool, error) {
	combined := userLine.Quantity + sessionLine.Quantity

	product, err := repos.Products().FindByID(ctx, sessionLine.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return combined, false, nil
		}
		return 0, false, err
	}

	if product.Stock == 0 {
		return userLine.Quantity, true, nil
	}
	if combined > product.Stock {
		return product.Stock, true, nil
	}
	return combined, false, nil
}

func mergeKey(sessionID string, userID uuid.UUID) string {
	return fmt.Sprintf("cart:merge:%s:%s", sessionID, userID)
}
