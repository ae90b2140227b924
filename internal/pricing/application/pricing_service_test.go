package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

type fakeRepo struct {
	mu      sync.Mutex
	saved   []*domain.PricingResult
	latest  map[string]*domain.PricingResult
	history map[string][]*domain.PricingResult
	txErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		latest:  make(map[string]*domain.PricingResult),
		history: make(map[string][]*domain.PricingResult),
	}
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if r.txErr != nil {
		return r.txErr
	}
	return fn(ctx)
}

func (r *fakeRepo) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, result)
	r.latest[result.Symbol] = result
	r.history[result.Symbol] = append([]*domain.PricingResult{result}, r.history[result.Symbol]...)
	return nil
}

func (r *fakeRepo) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest[symbol], nil
}

func (r *fakeRepo) GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.history[symbol]
	if len(h) > limit {
		h = h[:limit]
	}
	return h, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*domain.PricingResult
	saveErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.PricingResult)}
}

func (c *fakeCache) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[result.Symbol] = result
	return nil
}

func (c *fakeCache) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[symbol], nil
}

type publishedEvent struct {
	eventType string
	key       string
	inTx      bool
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, key: key})
	return nil
}

func (p *fakePublisher) PublishInTx(ctx context.Context, tx any, eventType, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, key: key, inTx: true})
	return nil
}

func (p *fakePublisher) byType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestService() (*PricingService, *fakeRepo, *fakeCache, *fakePublisher) {
	repo := newFakeRepo()
	cache := newFakeCache()
	pub := &fakePublisher{}
	return NewPricingService(repo, cache, pub, nil), repo, cache, pub
}

func expiryIn(d time.Duration) int64 {
	return time.Now().Add(d).UnixMilli()
}

func validPriceCommand() *PriceOptionCommand {
	return &PriceOptionCommand{
		Symbol:          "AAPL-C-110",
		OptionType:      "CALL",
		PricingModel:    "BLACK_SCHOLES",
		StrikePrice:     110,
		ExpiryDate:      expiryIn(6 * 30 * 24 * time.Hour),
		UnderlyingPrice: 100,
		Volatility:      0.25,
		RiskFreeRate:    0.05,
	}
}

func TestPriceOptionPersistsAndPublishes(t *testing.T) {
	svc, repo, cache, pub := newTestService()

	res, err := svc.Commands.PriceOption(context.Background(), validPriceCommand())
	if err != nil {
		t.Fatalf("PriceOption: %v", err)
	}
	if res.TheoreticalPx <= 0 {
		t.Fatalf("theoretical price = %v, want > 0", res.TheoreticalPx)
	}
	if res.Greeks == nil || res.Greeks.Delta <= 0 || res.Greeks.Delta >= 1 {
		t.Fatalf("call delta out of (0,1): %+v", res.Greeks)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("saved %d results, want 1", len(repo.saved))
	}
	saved := repo.saved[0]
	if saved.Symbol != "AAPL-C-110" || saved.PricingModel != domain.ModelBlackScholes {
		t.Fatalf("unexpected saved result: %+v", saved)
	}

	if got := cache.entries["AAPL-C-110"]; got == nil {
		t.Fatal("result not cached")
	}

	priced := pub.byType(domain.EventTypeOptionPriced)
	if len(priced) != 1 || !priced[0].inTx {
		t.Fatalf("priced events = %+v, want one transactional event", priced)
	}
	greeks := pub.byType(domain.EventTypeGreeksCalculated)
	if len(greeks) != 1 || !greeks[0].inTx {
		t.Fatalf("greeks events = %+v, want one transactional event", greeks)
	}
}

func TestPriceOptionDefaultsToBlackScholes(t *testing.T) {
	svc, repo, _, _ := newTestService()

	cmd := validPriceCommand()
	cmd.PricingModel = ""
	res, err := svc.Commands.PriceOption(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceOption: %v", err)
	}
	if res.PricingModel != string(domain.ModelBlackScholes) {
		t.Fatalf("model = %q, want BLACK_SCHOLES", res.PricingModel)
	}
	if repo.saved[0].PricingModel != domain.ModelBlackScholes {
		t.Fatalf("saved model = %q", repo.saved[0].PricingModel)
	}
}

func TestPriceOptionRejectsInvalidInput(t *testing.T) {
	svc, repo, _, pub := newTestService()

	cmd := validPriceCommand()
	cmd.Volatility = 3.0 // 超出定义域
	_, err := svc.Commands.PriceOption(context.Background(), cmd)

	var inputErr *domain.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("err = %v, want *domain.InputError", err)
	}
	if inputErr.Field != "volatility" {
		t.Fatalf("field = %q, want volatility", inputErr.Field)
	}
	if len(repo.saved) != 0 {
		t.Fatal("invalid input must not be persisted")
	}
	if got := pub.byType(domain.EventTypePricingError); len(got) != 1 {
		t.Fatalf("error events = %d, want 1", len(got))
	}
}

func TestPriceOptionRejectsUnknownModel(t *testing.T) {
	svc, _, _, _ := newTestService()

	cmd := validPriceCommand()
	cmd.PricingModel = "TRINOMIAL"
	_, err := svc.Commands.PriceOption(context.Background(), cmd)

	var inputErr *domain.InputError
	if !errors.As(err, &inputErr) || inputErr.Field != "pricing_model" {
		t.Fatalf("err = %v, want pricing_model InputError", err)
	}
}

func TestPriceOptionExpiredContract(t *testing.T) {
	svc, _, _, _ := newTestService()

	cmd := validPriceCommand()
	cmd.ExpiryDate = expiryIn(-24 * time.Hour)
	_, err := svc.Commands.PriceOption(context.Background(), cmd)

	var inputErr *domain.InputError
	if !errors.As(err, &inputErr) || inputErr.Field != "time" {
		t.Fatalf("err = %v, want time InputError", err)
	}
}

func TestPriceOptionAmerican(t *testing.T) {
	svc, _, _, _ := newTestService()

	cmd := validPriceCommand()
	cmd.PricingModel = "AMERICAN"
	cmd.OptionType = "PUT"
	cmd.DividendYield = 0.02
	res, err := svc.Commands.PriceOption(context.Background(), cmd)
	if err != nil {
		t.Fatalf("PriceOption: %v", err)
	}

	euroCmd := validPriceCommand()
	euroCmd.PricingModel = "MERTON"
	euroCmd.OptionType = "PUT"
	euroCmd.DividendYield = 0.02
	euro, err := svc.Commands.PriceOption(context.Background(), euroCmd)
	if err != nil {
		t.Fatalf("PriceOption euro: %v", err)
	}
	if res.TheoreticalPx < euro.TheoreticalPx-1e-9 {
		t.Fatalf("american %v < european %v", res.TheoreticalPx, euro.TheoreticalPx)
	}
}

func TestImpliedVolRoundTrip(t *testing.T) {
	svc, _, _, pub := newTestService()

	priceCmd := validPriceCommand()
	priced, err := svc.Commands.PriceOption(context.Background(), priceCmd)
	if err != nil {
		t.Fatalf("PriceOption: %v", err)
	}

	ivCmd := &ImpliedVolCommand{
		Symbol:          priceCmd.Symbol,
		OptionType:      priceCmd.OptionType,
		PricingModel:    priceCmd.PricingModel,
		StrikePrice:     priceCmd.StrikePrice,
		ExpiryDate:      priceCmd.ExpiryDate,
		UnderlyingPrice: priceCmd.UnderlyingPrice,
		MarketPrice:     priced.TheoreticalPx,
		RiskFreeRate:    priceCmd.RiskFreeRate,
	}
	res, err := svc.Commands.ImpliedVol(context.Background(), ivCmd)
	if err != nil {
		t.Fatalf("ImpliedVol: %v", err)
	}
	if res.Solver != "newton" {
		t.Fatalf("solver = %q, want newton", res.Solver)
	}
	if diff := res.ImpliedVol - priceCmd.Volatility; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("implied vol = %v, want ~%v", res.ImpliedVol, priceCmd.Volatility)
	}
	if got := pub.byType(domain.EventTypeVolatilityImplied); len(got) != 1 {
		t.Fatalf("implied vol events = %d, want 1", len(got))
	}
}

func TestImpliedVolAmericanUsesBisection(t *testing.T) {
	svc, _, _, _ := newTestService()

	priceCmd := validPriceCommand()
	priceCmd.PricingModel = "AMERICAN"
	priceCmd.OptionType = "PUT"
	priced, err := svc.Commands.PriceOption(context.Background(), priceCmd)
	if err != nil {
		t.Fatalf("PriceOption: %v", err)
	}

	res, err := svc.Commands.ImpliedVol(context.Background(), &ImpliedVolCommand{
		Symbol:          priceCmd.Symbol,
		OptionType:      "PUT",
		PricingModel:    "AMERICAN",
		StrikePrice:     priceCmd.StrikePrice,
		ExpiryDate:      priceCmd.ExpiryDate,
		UnderlyingPrice: priceCmd.UnderlyingPrice,
		MarketPrice:     priced.TheoreticalPx,
		RiskFreeRate:    priceCmd.RiskFreeRate,
	})
	if err != nil {
		t.Fatalf("ImpliedVol: %v", err)
	}
	if res.Solver != "bisection" {
		t.Fatalf("solver = %q, want bisection", res.Solver)
	}
	if diff := res.ImpliedVol - priceCmd.Volatility; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("implied vol = %v, want ~%v", res.ImpliedVol, priceCmd.Volatility)
	}
}

func TestImpliedVolUnsupportedModel(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Commands.ImpliedVol(context.Background(), &ImpliedVolCommand{
		Symbol:          "SPREAD",
		OptionType:      "CALL",
		PricingModel:    "KIRKS_76",
		StrikePrice:     3,
		ExpiryDate:      expiryIn(90 * 24 * time.Hour),
		UnderlyingPrice: 30,
		MarketPrice:     1.5,
	})
	var inputErr *domain.InputError
	if !errors.As(err, &inputErr) || inputErr.Field != "pricing_model" {
		t.Fatalf("err = %v, want pricing_model InputError", err)
	}
}

func TestBatchPriceOptionsPartialFailure(t *testing.T) {
	svc, repo, _, pub := newTestService()

	good := validPriceCommand()
	bad := *validPriceCommand()
	bad.Symbol = "BAD"
	bad.Volatility = 5.0

	out, err := svc.Commands.BatchPriceOptions(context.Background(), &BatchPriceOptionsCommand{
		Options: []PriceOptionCommand{*good, bad},
	})
	if err != nil {
		t.Fatalf("BatchPriceOptions: %v", err)
	}

	if out.Total != 2 || out.Succeeded != 1 || out.Failed != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/1", out.Total, out.Succeeded, out.Failed)
	}
	if out.Results[0] == nil || out.Results[1] != nil {
		t.Fatalf("results not position-aligned: %+v", out.Results)
	}
	if out.Errors[0] != "" || !strings.Contains(out.Errors[1], "volatility") {
		t.Fatalf("errors not position-aligned: %+v", out.Errors)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved %d results, want 1", len(repo.saved))
	}
	if got := pub.byType(domain.EventTypeBatchPricingCompleted); len(got) != 1 {
		t.Fatalf("batch events = %d, want 1", len(got))
	}
}

func TestGetGreeksExpiredReturnsZero(t *testing.T) {
	svc, _, _, _ := newTestService()

	val, err := svc.Queries.GetGreeks(context.Background(), &GreeksQuery{
		OptionType:      "CALL",
		StrikePrice:     100,
		ExpiryDate:      expiryIn(-time.Hour),
		UnderlyingPrice: 100,
		Volatility:      0.2,
	})
	if err != nil {
		t.Fatalf("GetGreeks: %v", err)
	}
	if *val != (domain.Valuation{}) {
		t.Fatalf("expired greeks = %+v, want zero", val)
	}
}

func TestGetGreeksLive(t *testing.T) {
	svc, _, _, _ := newTestService()

	val, err := svc.Queries.GetGreeks(context.Background(), &GreeksQuery{
		OptionType:      "PUT",
		StrikePrice:     100,
		ExpiryDate:      expiryIn(180 * 24 * time.Hour),
		UnderlyingPrice: 100,
		Volatility:      0.25,
		RiskFreeRate:    0.05,
	})
	if err != nil {
		t.Fatalf("GetGreeks: %v", err)
	}
	if val.Delta >= 0 || val.Delta <= -1 {
		t.Fatalf("put delta = %v, want in (-1, 0)", val.Delta)
	}
	if val.Gamma <= 0 || val.Vega <= 0 {
		t.Fatalf("gamma/vega must be positive: %+v", val)
	}
}

// 模型专属输入必须传入定价核心，不能被悄悄置零。
func TestGetGreeksCarriesModelSpecificInputs(t *testing.T) {
	svc, _, _, _ := newTestService()

	base := &GreeksQuery{
		OptionType:      "CALL",
		PricingModel:    "GARMAN_KOHLHAGEN",
		StrikePrice:     1.60,
		ExpiryDate:      expiryIn(180 * 24 * time.Hour),
		UnderlyingPrice: 1.56,
		Volatility:      0.12,
		RiskFreeRate:    0.06,
	}
	domestic, err := svc.Queries.GetGreeks(context.Background(), base)
	if err != nil {
		t.Fatalf("GetGreeks: %v", err)
	}

	withForeign := *base
	withForeign.ForeignRate = 0.08
	foreign, err := svc.Queries.GetGreeks(context.Background(), &withForeign)
	if err != nil {
		t.Fatalf("GetGreeks: %v", err)
	}
	if foreign.Value >= domestic.Value {
		t.Fatalf("foreign rate ignored: %v >= %v", foreign.Value, domestic.Value)
	}

	asian := &GreeksQuery{
		OptionType:      "PUT",
		PricingModel:    "ASIAN_76",
		StrikePrice:     100,
		ExpiryDate:      expiryIn(2 * 365 * 24 * time.Hour),
		UnderlyingPrice: 102,
		Volatility:      0.25,
		RiskFreeRate:    0.05,
		AveragingStart:  10, // 超出期限，必须被校验拒绝
	}
	_, err = svc.Queries.GetGreeks(context.Background(), asian)
	var inputErr *domain.InputError
	if !errors.As(err, &inputErr) || inputErr.Field != "averaging_start" {
		t.Fatalf("err = %v, want averaging_start InputError", err)
	}
}

func TestGetLatestResultCacheFirst(t *testing.T) {
	svc, repo, cache, _ := newTestService()

	if _, err := svc.Commands.PriceOption(context.Background(), validPriceCommand()); err != nil {
		t.Fatalf("PriceOption: %v", err)
	}

	// 命中缓存时不应回源
	repo.latest = map[string]*domain.PricingResult{}
	got, err := svc.Queries.GetLatestResult(context.Background(), "AAPL-C-110")
	if err != nil {
		t.Fatalf("GetLatestResult: %v", err)
	}
	if got == nil || got.Symbol != "AAPL-C-110" {
		t.Fatalf("cache-first read failed: %+v", got)
	}

	// 缓存未命中时回源并回填
	delete(cache.entries, "AAPL-C-110")
	repo.latest["AAPL-C-110"] = repo.saved[0]
	got, err = svc.Queries.GetLatestResult(context.Background(), "AAPL-C-110")
	if err != nil {
		t.Fatalf("GetLatestResult: %v", err)
	}
	if got == nil {
		t.Fatal("repo fallback failed")
	}
	if cache.entries["AAPL-C-110"] == nil {
		t.Fatal("cache not backfilled")
	}
}

func TestGetHistoryLimitClamp(t *testing.T) {
	svc, _, _, _ := newTestService()

	for range 3 {
		if _, err := svc.Commands.PriceOption(context.Background(), validPriceCommand()); err != nil {
			t.Fatalf("PriceOption: %v", err)
		}
	}

	h, err := svc.Queries.GetHistory(context.Background(), "AAPL-C-110", -5)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(h) != 3 {
		t.Fatalf("history len = %d, want 3", len(h))
	}

	h, err = svc.Queries.GetHistory(context.Background(), "AAPL-C-110", 2)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(h) != 2 {
		t.Fatalf("history len = %d, want 2", len(h))
	}
}
