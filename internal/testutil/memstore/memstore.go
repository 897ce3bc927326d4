// Package memstore is an in-memory implementation of every repository in the module.
// WithTx serializes transactions behind one mutex and restores a snapshot on error,
// which is enough to exercise the services' transactional behaviour without Postgres.
// Because transactions never overlap, row-lock races are covered by the Postgres
// suite in internal/purchase/store instead.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/subx/internal/plot"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
	"github.com/MrJamesThe3rd/subx/internal/reconcile"
	"github.com/MrJamesThe3rd/subx/internal/referral"
)

type txKey struct{}

type state struct {
	plots        map[uuid.UUID]plot.Plot
	reservations map[uuid.UUID]purchase.Reservation
	ownerships   map[uuid.UUID]purchase.Ownership
	portfolios   map[string]portfolio.Aggregate
	referrals    map[string]referral.Link
	rewards      map[uuid.UUID]referral.Reward
	wallets      map[string]referral.Wallet
	incidents    []purchase.Incident
	reports      []reconcile.Report
}

func (s *state) clone() *state {
	return &state{
		plots:        maps.Clone(s.plots),
		reservations: maps.Clone(s.reservations),
		ownerships:   maps.Clone(s.ownerships),
		portfolios:   maps.Clone(s.portfolios),
		referrals:    maps.Clone(s.referrals),
		rewards:      maps.Clone(s.rewards),
		wallets:      maps.Clone(s.wallets),
		incidents:    slices.Clone(s.incidents),
		reports:      slices.Clone(s.reports),
	}
}

type Store struct {
	mu  sync.Mutex
	now func() time.Time
	st  *state
}

func New() *Store {
	return &Store{
		now: time.Now,
		st: &state{
			plots:        map[uuid.UUID]plot.Plot{},
			reservations: map[uuid.UUID]purchase.Reservation{},
			ownerships:   map[uuid.UUID]purchase.Ownership{},
			portfolios:   map[string]portfolio.Aggregate{},
			referrals:    map[string]referral.Link{},
			rewards:      map[uuid.UUID]referral.Reward{},
			wallets:      map[string]referral.Wallet{},
		},
	}
}

// enter locks the store unless ctx already belongs to a running transaction.
func (s *Store) enter(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}

	s.mu.Lock()

	return s.mu.Unlock
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.st = snapshot
		return err
	}

	return nil
}

// Corrupt lets tests damage stored data the way a bug or manual edit would.
func (s *Store) Corrupt(fn func(plots map[uuid.UUID]plot.Plot, portfolios map[string]portfolio.Aggregate)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.st.plots, s.st.portfolios)
}

// Plots

func (s *Store) CreatePlot(ctx context.Context, p *plot.Plot) error {
	defer s.enter(ctx)()

	for _, existing := range s.st.plots {
		if existing.Name == p.Name {
			return plot.ErrDuplicateName
		}
	}

	p.ID = uuid.New()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.st.plots[p.ID] = *p

	return nil
}

func (s *Store) GetPlot(ctx context.Context, id uuid.UUID) (*plot.Plot, error) {
	defer s.enter(ctx)()

	p, ok := s.st.plots[id]
	if !ok {
		return nil, plot.ErrNotFound
	}

	return &p, nil
}

func (s *Store) GetPlotForUpdate(ctx context.Context, id uuid.UUID) (*plot.Plot, error) {
	return s.GetPlot(ctx, id)
}

func (s *Store) ListPlots(ctx context.Context) ([]*plot.Plot, error) {
	defer s.enter(ctx)()

	out := make([]*plot.Plot, 0, len(s.st.plots))
	for _, p := range s.st.plots {
		out = append(out, &p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (s *Store) AdjustAvailability(ctx context.Context, id uuid.UUID, deltaSqm int) (*plot.Plot, error) {
	defer s.enter(ctx)()

	p, ok := s.st.plots[id]
	if !ok {
		return nil, plot.ErrNotFound
	}

	next := p.AvailableSqm + deltaSqm

	switch {
	case next < 0:
		return nil, plot.ErrInsufficientInventory
	case next > p.TotalSqm:
		return nil, plot.ErrInventoryOverflow
	}

	p.AvailableSqm = next
	p.UpdatedAt = s.now()
	s.st.plots[id] = p

	return &p, nil
}

// Reservations and ownerships

func (s *Store) CreateReservation(ctx context.Context, r *purchase.Reservation) error {
	defer s.enter(ctx)()

	r.ID = uuid.New()
	s.st.reservations[r.ID] = *r

	return nil
}

func (s *Store) GetReservation(ctx context.Context, id uuid.UUID) (*purchase.Reservation, error) {
	defer s.enter(ctx)()

	r, ok := s.st.reservations[id]
	if !ok {
		return nil, purchase.ErrReservationNotFound
	}

	return &r, nil
}

func (s *Store) GetReservationForUpdate(ctx context.Context, id uuid.UUID) (*purchase.Reservation, error) {
	return s.GetReservation(ctx, id)
}

func (s *Store) GetReservationByReferenceForUpdate(ctx context.Context, reference string) (*purchase.Reservation, error) {
	defer s.enter(ctx)()

	for _, r := range s.st.reservations {
		if r.PaymentReference == reference {
			return &r, nil
		}
	}

	return nil, purchase.ErrReservationNotFound
}

func (s *Store) UpdateReservationStatus(ctx context.Context, id uuid.UUID, from, to purchase.Status) (bool, error) {
	defer s.enter(ctx)()

	r, ok := s.st.reservations[id]
	if !ok || r.Status != from {
		return false, nil
	}

	r.Status = to
	r.UpdatedAt = s.now()
	s.st.reservations[id] = r

	return true, nil
}

func (s *Store) ListExpiredReservations(ctx context.Context, now time.Time, limit int) ([]*purchase.Reservation, error) {
	defer s.enter(ctx)()

	var out []*purchase.Reservation

	for _, r := range s.st.reservations {
		if r.Status == purchase.StatusReserved && !r.ExpiresAt.After(now) {
			out = append(out, &r)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (s *Store) CreateOwnership(ctx context.Context, o *purchase.Ownership) error {
	defer s.enter(ctx)()

	for _, existing := range s.st.ownerships {
		if existing.ReservationID == o.ReservationID || existing.PaymentReference == o.PaymentReference {
			return purchase.ErrReservationNotActive
		}
	}

	o.ID = uuid.New()
	s.st.ownerships[o.ID] = *o

	return nil
}

func (s *Store) GetOwnershipByReservation(ctx context.Context, reservationID uuid.UUID) (*purchase.Ownership, error) {
	defer s.enter(ctx)()

	for _, o := range s.st.ownerships {
		if o.ReservationID == reservationID {
			return &o, nil
		}
	}

	return nil, purchase.ErrOwnershipNotFound
}

func (s *Store) ListOwnershipsByOwner(ctx context.Context, ownerID string) ([]*purchase.Ownership, error) {
	defer s.enter(ctx)()

	var out []*purchase.Ownership

	for _, o := range s.st.ownerships {
		if o.OwnerID == ownerID {
			out = append(out, &o)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (s *Store) RecordIncident(ctx context.Context, inc *purchase.Incident) error {
	defer s.enter(ctx)()

	for _, existing := range s.st.incidents {
		if existing.PaymentReference == inc.PaymentReference && existing.Kind == inc.Kind {
			return nil
		}
	}

	inc.ID = uuid.New()
	s.st.incidents = append(s.st.incidents, *inc)

	return nil
}

func (s *Store) ListIncidents(ctx context.Context, limit int) ([]*purchase.Incident, error) {
	defer s.enter(ctx)()

	var out []*purchase.Incident

	for i := len(s.st.incidents) - 1; i >= 0 && len(out) < limit; i-- {
		inc := s.st.incidents[i]
		out = append(out, &inc)
	}

	return out, nil
}

// Portfolios

func (s *Store) IncrementPortfolio(ctx context.Context, userID string, sqm int, value decimal.Decimal) error {
	defer s.enter(ctx)()

	agg, ok := s.st.portfolios[userID]
	if !ok {
		agg = portfolio.Aggregate{UserID: userID, PortfolioValue: decimal.Zero}
	}

	agg.TotalSqm += sqm
	agg.TotalPlots++
	agg.PortfolioValue = agg.PortfolioValue.Add(value)
	agg.UpdatedAt = s.now()
	s.st.portfolios[userID] = agg

	return nil
}

func (s *Store) GetPortfolio(ctx context.Context, userID string) (*portfolio.Aggregate, error) {
	defer s.enter(ctx)()

	agg, ok := s.st.portfolios[userID]
	if !ok {
		return nil, portfolio.ErrNotFound
	}

	return &agg, nil
}

func (s *Store) ListPortfolios(ctx context.Context) ([]*portfolio.Aggregate, error) {
	defer s.enter(ctx)()

	out := make([]*portfolio.Aggregate, 0, len(s.st.portfolios))
	for _, agg := range s.st.portfolios {
		out = append(out, &agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

func (s *Store) UpsertPortfolio(ctx context.Context, agg *portfolio.Aggregate) error {
	defer s.enter(ctx)()

	stored := *agg
	stored.UpdatedAt = s.now()
	s.st.portfolios[agg.UserID] = stored

	return nil
}

// Referrals

func (s *Store) CreateLink(ctx context.Context, link *referral.Link) error {
	defer s.enter(ctx)()

	if link.ReferrerID == link.ReferredUserID {
		return referral.ErrSelfReferral
	}

	if _, ok := s.st.referrals[link.ReferredUserID]; ok {
		return referral.ErrAlreadyReferred
	}

	s.st.referrals[link.ReferredUserID] = *link

	return nil
}

func (s *Store) GetReferrer(ctx context.Context, referredUserID string) (string, error) {
	defer s.enter(ctx)()

	return s.st.referrals[referredUserID].ReferrerID, nil
}

func (s *Store) InsertRewardIfAbsent(ctx context.Context, reward *referral.Reward) (bool, error) {
	defer s.enter(ctx)()

	for _, r := range s.st.rewards {
		if r.ReferrerID == reward.ReferrerID && r.PurchaseReference == reward.PurchaseReference {
			return false, nil
		}
	}

	reward.ID = uuid.New()
	s.st.rewards[reward.ID] = *reward

	return true, nil
}

func (s *Store) GetReward(ctx context.Context, id uuid.UUID) (*referral.Reward, error) {
	defer s.enter(ctx)()

	r, ok := s.st.rewards[id]
	if !ok {
		return nil, referral.ErrRewardNotFound
	}

	return &r, nil
}

func (s *Store) ListRewards(ctx context.Context, referrerID string) ([]*referral.Reward, error) {
	defer s.enter(ctx)()

	var out []*referral.Reward

	for _, r := range s.st.rewards {
		if r.ReferrerID == referrerID {
			out = append(out, &r)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseReference < out[j].PurchaseReference })

	return out, nil
}

func (s *Store) MarkRewardPaid(ctx context.Context, reward *referral.Reward) (bool, error) {
	defer s.enter(ctx)()

	r, ok := s.st.rewards[reward.ID]
	if !ok || r.Status != referral.RewardPending {
		return false, nil
	}

	r.Status = referral.RewardPaid
	r.PaidAt = reward.PaidAt
	s.st.rewards[r.ID] = r

	return true, nil
}

func (s *Store) AdjustWallet(ctx context.Context, userID string, delta decimal.Decimal) error {
	defer s.enter(ctx)()

	w, ok := s.st.wallets[userID]
	if !ok {
		w = referral.Wallet{UserID: userID, Balance: decimal.Zero}
	}

	w.Balance = w.Balance.Add(delta)
	w.UpdatedAt = s.now()
	s.st.wallets[userID] = w

	return nil
}

func (s *Store) GetWallet(ctx context.Context, userID string) (*referral.Wallet, error) {
	defer s.enter(ctx)()

	w, ok := s.st.wallets[userID]
	if !ok {
		return nil, referral.ErrWalletNotFound
	}

	return &w, nil
}

// Reconciliation

func (s *Store) ListPlotIDs(ctx context.Context) ([]uuid.UUID, error) {
	defer s.enter(ctx)()

	ids := slices.Collect(maps.Keys(s.st.plots))
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	return ids, nil
}

func (s *Store) LockPlotHoldings(ctx context.Context, plotID uuid.UUID) (*reconcile.PlotHoldings, error) {
	defer s.enter(ctx)()

	p, ok := s.st.plots[plotID]
	if !ok {
		return nil, plot.ErrNotFound
	}

	h := &reconcile.PlotHoldings{PlotID: p.ID, Name: p.Name, TotalSqm: p.TotalSqm, AvailableSqm: p.AvailableSqm}

	for _, r := range s.st.reservations {
		if r.PlotID == plotID && r.Status == purchase.StatusReserved {
			h.ReservedSqm += r.Sqm
		}
	}

	for _, o := range s.st.ownerships {
		if o.PlotID == plotID {
			h.CompletedSqm += o.Sqm
		}
	}

	return h, nil
}

func (s *Store) ownerTotals() map[string]*reconcile.OwnerTotal {
	totals := map[string]*reconcile.OwnerTotal{}

	for _, o := range s.st.ownerships {
		t, ok := totals[o.OwnerID]
		if !ok {
			t = &reconcile.OwnerTotal{OwnerID: o.OwnerID, Value: decimal.Zero}
			totals[o.OwnerID] = t
		}

		t.TotalSqm += o.Sqm
		t.Ownerships++
		t.Value = t.Value.Add(o.AmountPaid)
	}

	return totals
}

func (s *Store) OwnerTotals(ctx context.Context) ([]*reconcile.OwnerTotal, error) {
	defer s.enter(ctx)()

	out := slices.Collect(maps.Values(s.ownerTotals()))
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })

	return out, nil
}

func (s *Store) OwnerTotal(ctx context.Context, ownerID string) (*reconcile.OwnerTotal, error) {
	defer s.enter(ctx)()

	if t, ok := s.ownerTotals()[ownerID]; ok {
		return t, nil
	}

	return &reconcile.OwnerTotal{OwnerID: ownerID, Value: decimal.Zero}, nil
}

func (s *Store) LockPortfolio(ctx context.Context, _ string) error {
	defer s.enter(ctx)()
	return nil
}

func (s *Store) UnrewardedPurchases(ctx context.Context, limit int) ([]*reconcile.UnrewardedPurchase, error) {
	defer s.enter(ctx)()

	var out []*reconcile.UnrewardedPurchase

	for _, o := range s.st.ownerships {
		link, ok := s.st.referrals[o.OwnerID]
		if !ok || link.CreatedAt.After(o.CreatedAt) {
			continue
		}

		rewarded := false

		for _, r := range s.st.rewards {
			if r.ReferrerID == link.ReferrerID && r.PurchaseReference == o.PaymentReference {
				rewarded = true
				break
			}
		}

		if !rewarded {
			out = append(out, &reconcile.UnrewardedPurchase{
				PaymentReference: o.PaymentReference,
				BuyerID:          o.OwnerID,
				Amount:           o.AmountPaid,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].PaymentReference, out[j].PaymentReference) < 0 })

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (s *Store) SaveReport(ctx context.Context, report *reconcile.Report) error {
	defer s.enter(ctx)()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	s.st.reports = append(s.st.reports, *report)

	return nil
}

func (s *Store) ListReports(ctx context.Context, limit int) ([]*reconcile.Report, error) {
	defer s.enter(ctx)()

	var out []*reconcile.Report

	for i := len(s.st.reports) - 1; i >= 0 && len(out) < limit; i-- {
		r := s.st.reports[i]
		out = append(out, &r)
	}

	return out, nil
}
