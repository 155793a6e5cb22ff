package sync

import (
	"context"
	"encoding/json"

	"tradeconsole/internal/adapters/rest"
	"tradeconsole/internal/bus"
	"tradeconsole/internal/domain"
	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

type strategyAPI interface {
	GetStrategies(ctx context.Context) ([]domain.Strategy, error)
	GetStrategy(ctx context.Context, id string) (domain.Strategy, error)
	CreateStrategy(ctx context.Context, req rest.StrategyRequest) (domain.Strategy, error)
	UpdateStrategy(ctx context.Context, id string, req rest.StrategyRequest) (domain.Strategy, error)
	DeleteStrategy(ctx context.Context, id string) error
	StartStrategy(ctx context.Context, id string) (domain.Strategy, error)
	StopStrategy(ctx context.Context, id string) (domain.Strategy, error)
	GetStrategyLog(ctx context.Context, id string) ([]string, error)
}

// Strategies reconciles the strategy collection. The client mirrors server
// lifecycle truth only: start/stop call the backend and converge from its
// response rather than echoing a status locally.
type Strategies struct {
	api      strategyAPI
	store    *store.Store
	log      ports.Logger
	fetching inflight
}

// NewStrategies creates the strategy reconciler.
func NewStrategies(api strategyAPI, st *store.Store, log ports.Logger) *Strategies {
	return &Strategies{api: api, store: st, log: log}
}

// FetchAll pulls the full snapshot and replaces the store slice wholesale.
func (s *Strategies) FetchAll(ctx context.Context) error {
	if !s.fetching.tryAcquire() {
		return nil
	}
	defer s.fetching.release()

	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	strategies, err := s.api.GetStrategies(ctx)
	if err != nil {
		reportError(ctx, s.store, s.log, err, "failed to fetch strategies")
		return err
	}
	s.store.SetStrategies(strategies)
	s.store.ClearError()
	return nil
}

// RefreshOne re-pulls a single strategy through its dedicated endpoint.
func (s *Strategies) RefreshOne(ctx context.Context, id string) error {
	st, err := s.api.GetStrategy(ctx, id)
	if err != nil {
		reportError(ctx, s.store, s.log, err, "failed to refresh strategy")
		return err
	}
	s.store.UpdateStrategy(st)
	s.store.ClearError()
	return nil
}

// Create registers a new strategy and re-pulls the collection so the new
// key becomes visible.
func (s *Strategies) Create(ctx context.Context, req rest.StrategyRequest) error {
	if req.Name == "" || req.ClassName == "" {
		err := validationErrorf("strategy name and class name are required")
		reportError(ctx, s.store, s.log, err, "failed to create strategy")
		return err
	}
	if _, err := s.api.CreateStrategy(ctx, req); err != nil {
		reportError(ctx, s.store, s.log, err, "failed to create strategy")
		return err
	}
	s.store.ClearError()
	return s.FetchAll(ctx)
}

// Update replaces a strategy's configuration and converges the local copy.
func (s *Strategies) Update(ctx context.Context, id string, req rest.StrategyRequest) error {
	st, err := s.api.UpdateStrategy(ctx, id, req)
	if err != nil {
		reportError(ctx, s.store, s.log, err, "failed to update strategy")
		return err
	}
	s.store.UpdateStrategy(st)
	s.store.ClearError()
	return nil
}

// Delete removes a strategy and re-pulls the collection, which also nulls a
// selection pointing at the removed key.
func (s *Strategies) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteStrategy(ctx, id); err != nil {
		reportError(ctx, s.store, s.log, err, "failed to delete strategy")
		return err
	}
	s.store.ClearError()
	return s.FetchAll(ctx)
}

// Start asks the backend to start the strategy and converges from its
// response.
func (s *Strategies) Start(ctx context.Context, id string) error {
	st, err := s.api.StartStrategy(ctx, id)
	if err != nil {
		reportError(ctx, s.store, s.log, err, "failed to start strategy")
		return err
	}
	s.store.UpdateStrategy(st)
	s.store.ClearError()
	return nil
}

// Stop asks the backend to stop the strategy and converges from its
// response.
func (s *Strategies) Stop(ctx context.Context, id string) error {
	st, err := s.api.StopStrategy(ctx, id)
	if err != nil {
		reportError(ctx, s.store, s.log, err, "failed to stop strategy")
		return err
	}
	s.store.UpdateStrategy(st)
	s.store.ClearError()
	return nil
}

// Log retrieves the recent log lines of a strategy.
func (s *Strategies) Log(ctx context.Context, id string) ([]string, error) {
	lines, err := s.api.GetStrategyLog(ctx, id)
	if err != nil {
		reportError(ctx, s.store, s.log, err, "failed to fetch strategy log")
		return nil, err
	}
	s.store.ClearError()
	return lines, nil
}

// Bind registers push handlers and returns a teardown removing them.
func (s *Strategies) Bind(b *bus.Bus) func() {
	ctx := context.Background()
	updateOne := func(event string) ports.PushHandler {
		return func(data json.RawMessage) {
			var st domain.Strategy
			if !decodePush(ctx, s.log, event, data, &st) {
				return
			}
			s.store.UpdateStrategy(st)
		}
	}
	return unsubscribeAll(
		b.Subscribe("strategy_start", updateOne("strategy_start")),
		b.Subscribe("strategy_stop", updateOne("strategy_stop")),
		b.Subscribe("strategy_log", func(data json.RawMessage) {
			var line string
			if !decodePush(ctx, s.log, "strategy_log", data, &line) {
				return
			}
			s.log.Info(ctx, "Strategy log", map[string]interface{}{"line": line})
		}),
		b.Subscribe("strategy_error", func(data json.RawMessage) {
			var msg string
			if !decodePush(ctx, s.log, "strategy_error", data, &msg) {
				return
			}
			s.store.SetError(msg)
		}),
	)
}
