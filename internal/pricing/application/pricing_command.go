package application

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/contextx"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
)

// batchConcurrency 批量定价的并发上限
const batchConcurrency = 8

// PricingCommandService 定价命令服务，负责计算、落库与事件发布
type PricingCommandService struct {
	repo      domain.PricingRepository
	cache     domain.PricingCache
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewPricingCommandService 创建定价命令服务，metrics 可为 nil
func NewPricingCommandService(
	repo domain.PricingRepository,
	cache domain.PricingCache,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *PricingCommandService {
	return &PricingCommandService{repo: repo, cache: cache, publisher: publisher, metrics: m}
}

// valuate 按模型分发到定价核心
func valuate(cmd *PriceOptionCommand, tte float64) (*domain.Valuation, error) {
	optionType := domain.OptionType(cmd.OptionType)
	model := domain.PricingModel(cmd.PricingModel)

	switch model {
	case domain.ModelMerton:
		return domain.Merton(optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte, cmd.RiskFreeRate, cmd.DividendYield, cmd.Volatility)
	case domain.ModelBlack76:
		return domain.Black76(optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte, cmd.RiskFreeRate, cmd.Volatility)
	case domain.ModelGarmanKohlhagen:
		return domain.GarmanKohlhagen(optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte, cmd.RiskFreeRate, cmd.ForeignRate, cmd.Volatility)
	case domain.ModelAsian76:
		return domain.Asian76(optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte, cmd.AveragingStart, cmd.RiskFreeRate, cmd.Volatility)
	case domain.ModelKirks76:
		return domain.Kirks76(optionType, cmd.UnderlyingPrice, cmd.SecondLeg, cmd.StrikePrice, tte,
			cmd.RiskFreeRate, cmd.Volatility, cmd.SecondLegVol, cmd.Correlation)
	case domain.ModelAmerican:
		return domain.American(optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte, cmd.RiskFreeRate, cmd.DividendYield, cmd.Volatility)
	case domain.ModelAmerican76:
		return domain.American76(optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte, cmd.RiskFreeRate, cmd.Volatility)
	case domain.ModelBlackScholes, "":
		return domain.BlackScholes(optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte, cmd.RiskFreeRate, cmd.Volatility)
	default:
		return nil, &domain.InputError{Field: "pricing_model", Detail: fmt.Sprintf("unknown pricing model %q", cmd.PricingModel)}
	}
}

// PriceOption 执行单笔定价：计算理论价与希腊字母，事务内落库并发布领域事件
func (s *PricingCommandService) PriceOption(ctx context.Context, cmd *PriceOptionCommand) (*PriceOptionResult, error) {
	start := time.Now()

	contract := domain.OptionContract{
		Symbol:      cmd.Symbol,
		Type:        domain.OptionType(cmd.OptionType),
		StrikePrice: decimal.NewFromFloat(cmd.StrikePrice),
		ExpiryDate:  cmd.ExpiryDate,
	}
	tte := contract.TimeToExpiry(time.Now())

	model := domain.PricingModel(cmd.PricingModel)
	if model == "" {
		model = domain.ModelBlackScholes
	}

	val, err := valuate(cmd, tte)
	if err != nil {
		logger.Warn(ctx, "option pricing failed",
			"symbol", cmd.Symbol, "model", string(model), "error", err)
		s.publishError(ctx, cmd.Symbol, model, err)
		if s.metrics != nil {
			s.metrics.ValuationErrors.Inc()
		}
		return nil, err
	}

	result := domain.NewPricingResult(contract, model, cmd.UnderlyingPrice, cmd.Volatility, cmd.RiskFreeRate, tte, val)

	// 结果与事件在同一事务内写入，由 Outbox 转发器保证投递
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.SavePricingResult(txCtx, result); err != nil {
			return fmt.Errorf("save pricing result: %w", err)
		}

		tx := contextx.GetTx(txCtx)
		pricedEvent := &domain.OptionPricedEvent{
			Symbol:          result.Symbol,
			OptionType:      string(result.OptionType),
			PricingModel:    string(result.PricingModel),
			TheoreticalPx:   result.TheoreticalPx.String(),
			UnderlyingPrice: result.UnderlyingPrice.String(),
			Volatility:      result.Volatility.String(),
			OccurredOn:      time.Now(),
		}
		if err := s.publisher.PublishInTx(txCtx, tx, domain.EventTypeOptionPriced, result.Symbol, pricedEvent); err != nil {
			return fmt.Errorf("publish priced event: %w", err)
		}

		greeksEvent := &domain.GreeksCalculatedEvent{
			Symbol:     result.Symbol,
			Delta:      result.Greeks.Delta.String(),
			Gamma:      result.Greeks.Gamma.String(),
			Theta:      result.Greeks.Theta.String(),
			Vega:       result.Greeks.Vega.String(),
			Rho:        result.Greeks.Rho.String(),
			OccurredOn: time.Now(),
		}
		if err := s.publisher.PublishInTx(txCtx, tx, domain.EventTypeGreeksCalculated, result.Symbol, greeksEvent); err != nil {
			return fmt.Errorf("publish greeks event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 缓存失败不影响主流程
	if s.cache != nil {
		if cacheErr := s.cache.SavePricingResult(ctx, result); cacheErr != nil {
			logger.Warn(ctx, "cache pricing result failed", "symbol", result.Symbol, "error", cacheErr)
		}
	}

	if s.metrics != nil {
		s.metrics.ValuationsTotal.WithLabelValues(string(model)).Inc()
		s.metrics.ValuationDuration.Observe(time.Since(start).Seconds())
	}
	logger.Info(ctx, "option priced",
		"symbol", result.Symbol, "model", string(model),
		"theoretical_px", result.TheoreticalPx.String(), "elapsed", time.Since(start))

	return &PriceOptionResult{
		Symbol:        result.Symbol,
		PricingModel:  string(model),
		TheoreticalPx: val.Value,
		Greeks:        val,
		TimeToExpiry:  tte,
	}, nil
}

// ImpliedVol 反解隐含波动率。欧式走 Newton 快速通道，美式直接二分
func (s *PricingCommandService) ImpliedVol(ctx context.Context, cmd *ImpliedVolCommand) (*ImpliedVolResult, error) {
	start := time.Now()

	contract := domain.OptionContract{
		Symbol:      cmd.Symbol,
		Type:        domain.OptionType(cmd.OptionType),
		StrikePrice: decimal.NewFromFloat(cmd.StrikePrice),
		ExpiryDate:  cmd.ExpiryDate,
	}
	tte := contract.TimeToExpiry(time.Now())

	cfg := domain.SolverConfig{Precision: cmd.Precision, MaxSteps: cmd.MaxSteps}
	optionType := domain.OptionType(cmd.OptionType)

	var (
		vol    float64
		err    error
		solver string
	)
	switch domain.PricingModel(cmd.PricingModel) {
	case domain.ModelAmerican:
		solver = "bisection"
		vol, err = domain.AmerImpliedVolWith(cfg, optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte,
			cmd.RiskFreeRate, cmd.DividendYield, cmd.MarketPrice)
	case domain.ModelAmerican76:
		solver = "bisection"
		vol, err = domain.AmerImpliedVol76With(cfg, optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte,
			cmd.RiskFreeRate, cmd.MarketPrice)
	case domain.ModelBlack76:
		solver = "newton"
		vol, err = domain.EuroImpliedVol76With(cfg, optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte,
			cmd.RiskFreeRate, cmd.MarketPrice)
	case domain.ModelBlackScholes, domain.ModelMerton, "":
		solver = "newton"
		vol, err = domain.EuroImpliedVolWith(cfg, optionType, cmd.UnderlyingPrice, cmd.StrikePrice, tte,
			cmd.RiskFreeRate, cmd.DividendYield, cmd.MarketPrice)
	default:
		return nil, &domain.InputError{Field: "pricing_model",
			Detail: fmt.Sprintf("model %q does not support implied volatility", cmd.PricingModel)}
	}
	if err != nil {
		logger.Warn(ctx, "implied volatility solve failed",
			"symbol", cmd.Symbol, "solver", solver, "error", err)
		s.publishError(ctx, cmd.Symbol, domain.PricingModel(cmd.PricingModel), err)
		if s.metrics != nil {
			s.metrics.ValuationErrors.Inc()
		}
		return nil, err
	}

	event := &domain.VolatilityImpliedEvent{
		Symbol:      cmd.Symbol,
		OptionType:  cmd.OptionType,
		MarketPrice: decimal.NewFromFloat(cmd.MarketPrice).String(),
		ImpliedVol:  decimal.NewFromFloat(vol).String(),
		Solver:      solver,
		OccurredOn:  time.Now(),
	}
	if pubErr := s.publisher.Publish(ctx, domain.EventTypeVolatilityImplied, cmd.Symbol, event); pubErr != nil {
		logger.Warn(ctx, "publish implied vol event failed", "symbol", cmd.Symbol, "error", pubErr)
	}

	if s.metrics != nil {
		s.metrics.ImpliedVolSolves.WithLabelValues(solver).Inc()
		s.metrics.ValuationDuration.Observe(time.Since(start).Seconds())
	}
	logger.Info(ctx, "implied volatility solved",
		"symbol", cmd.Symbol, "solver", solver, "implied_vol", vol, "elapsed", time.Since(start))

	return &ImpliedVolResult{
		Symbol:      cmd.Symbol,
		ImpliedVol:  vol,
		MarketPrice: cmd.MarketPrice,
		Solver:      solver,
	}, nil
}

// BatchPriceOptions 并发批量定价。单笔失败不中断整批，
// 完成后发布批量完成事件汇总成功与失败数量。
func (s *PricingCommandService) BatchPriceOptions(ctx context.Context, cmd *BatchPriceOptionsCommand) (*BatchPriceResult, error) {
	start := time.Now()

	out := &BatchPriceResult{
		Total:   len(cmd.Options),
		Results: make([]*PriceOptionResult, len(cmd.Options)),
		Errors:  make([]string, len(cmd.Options)),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i := range cmd.Options {
		g.Go(func() error {
			res, err := s.PriceOption(gCtx, &cmd.Options[i])
			if err != nil {
				out.Errors[i] = err.Error()
				return nil
			}
			out.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(cmd.Options))
	for i := range cmd.Options {
		if out.Results[i] != nil {
			out.Succeeded++
			symbols = append(symbols, cmd.Options[i].Symbol)
		} else {
			out.Failed++
		}
	}
	out.ElapsedMs = time.Since(start).Milliseconds()

	event := &domain.BatchPricingCompletedEvent{
		Total:      out.Total,
		Succeeded:  out.Succeeded,
		Failed:     out.Failed,
		Symbols:    symbols,
		ElapsedMs:  out.ElapsedMs,
		OccurredOn: time.Now(),
	}
	if pubErr := s.publisher.Publish(ctx, domain.EventTypeBatchPricingCompleted, "batch", event); pubErr != nil {
		logger.Warn(ctx, "publish batch event failed", "error", pubErr)
	}

	logger.Info(ctx, "batch pricing completed",
		"total", out.Total, "succeeded", out.Succeeded, "failed", out.Failed, "elapsed", time.Since(start))
	return out, nil
}

func (s *PricingCommandService) publishError(ctx context.Context, symbol string, model domain.PricingModel, cause error) {
	event := &domain.PricingErrorEvent{
		Symbol:       symbol,
		PricingModel: string(model),
		Reason:       cause.Error(),
		OccurredOn:   time.Now(),
	}
	if err := s.publisher.Publish(ctx, domain.EventTypePricingError, symbol, event); err != nil {
		logger.Warn(ctx, "publish pricing error event failed", "symbol", symbol, "error", err)
	}
}
