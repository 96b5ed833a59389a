package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/target/storyweb/internal/errors"
	"github.com/target/storyweb/internal/ports"
)

// AccountService serves the pricing, cart and admin listings. Every call that
// needs a session takes its bearer token; errors from the story API are returned
// unchanged so callers can pass them through the expiry interceptor.
type AccountService struct {
	api ports.StoryAPI
}

// NewAccountService constructs an AccountService.
func NewAccountService(api ports.StoryAPI) *AccountService {
	return &AccountService{api: api}
}

// Plans lists the pricing plans.
func (s *AccountService) Plans(ctx context.Context) ([]ports.Plan, error) {
	return s.api.Plans(ctx)
}

// Cart returns the signed-in user's cart.
func (s *AccountService) Cart(ctx context.Context, token string) (ports.Cart, error) {
	return s.api.Cart(ctx, token)
}

// SelectPlan puts planID in the cart.
func (s *AccountService) SelectPlan(ctx context.Context, token, planID string) (ports.Cart, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return ports.Cart{}, apperrors.ValidationField("plan_id", "Choose a plan.")
	}
	return s.api.SelectPlan(ctx, token, planID)
}

// AdminUsers lists users for the admin dashboard.
func (s *AccountService) AdminUsers(ctx context.Context, token string) ([]ports.UserSummary, error) {
	return s.api.AdminUsers(ctx, token)
}

// Dashboard is the data behind the user dashboard.
type Dashboard struct {
	Plans []ports.Plan
	Cart  ports.Cart
}

// Dashboard loads plans and cart concurrently. The first error cancels the other call.
func (s *AccountService) Dashboard(ctx context.Context, token string) (Dashboard, error) {
	var out Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plans, err := s.api.Plans(gctx)
		if err != nil {
			return fmt.Errorf("plans: %w", err)
		}
		out.Plans = plans
		return nil
	})
	g.Go(func() error {
		cart, err := s.api.Cart(gctx, token)
		if err != nil {
			return fmt.Errorf("cart: %w", err)
		}
		out.Cart = cart
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return out, nil
}
