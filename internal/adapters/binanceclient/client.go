package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"optionPricer/internal/domain"
	"optionPricer/internal/marketdata"
	"optionPricer/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	defaultVolInterval = "1d"
	defaultVolLookback = 90
)

// Client implements the ports.MarketDataProvider interface using the go-binance library.
// Spot is the last traded price, volatility is realized from recent klines.
type Client struct {
	futuresClient  *futures.Client
	logger         ports.Logger
	rate           float64
	dividendYield  float64
	volInterval    string
	volLookback    int
	periodsPerYear float64
	estimator      marketdata.Estimator
	now            func() time.Time
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey        string
	SecretKey     string
	UseTestnet    bool
	BaseURL       string // Overrides the production/testnet URL when set
	Logger        ports.Logger
	Rate          float64              // Risk-free rate attached to every snapshot
	DividendYield float64              // Continuous yield (funding/borrow proxy) attached to every snapshot
	VolInterval   string               // Kline interval for realized volatility (e.g., "1d")
	VolLookback   int                  // Number of returns in the volatility window
	Estimator     marketdata.Estimator // Defaults to close-to-close
}

// New creates a new Binance market data adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Debug(context.Background(), "APIKey or SecretKey is empty, using public market data endpoints only")
	}

	interval := cfg.VolInterval
	if interval == "" {
		interval = defaultVolInterval
	}
	periods, err := marketdata.PeriodsPerYear(interval)
	if err != nil {
		return nil, fmt.Errorf("binance client volatility interval: %w", err)
	}
	lookback := cfg.VolLookback
	if lookback <= 0 {
		lookback = defaultVolLookback
	}
	estimator := cfg.Estimator
	if estimator == nil {
		estimator = marketdata.CloseToClose{}
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance market data client configured", map[string]interface{}{
		"baseURL":     client.BaseURL,
		"volInterval": interval,
		"volLookback": lookback,
		"estimator":   estimator.Name(),
	})

	return &Client{
		futuresClient:  client,
		logger:         cfg.Logger,
		rate:           cfg.Rate,
		dividendYield:  cfg.DividendYield,
		volInterval:    interval,
		volLookback:    lookback,
		periodsPerYear: periods,
		estimator:      estimator,
		now:            time.Now,
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1007, -1021: // Backend timeout, timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Bad signature or API key
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1120, -1121: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "use of closed network connection"),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrMarketDataUnavailable, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// GetTickerPrice retrieves the last ticker price for a given symbol.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetTickerPrice"
	tickers, err := c.futuresClient.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(tickers) == 0 {
		return 0, c.handleError(ctx, fmt.Errorf("no ticker data returned for symbol %s", symbol), op)
	}

	price, err := strconv.ParseFloat(tickers[0].LastPrice, 64)
	if err != nil {
		return 0, c.handleError(ctx, fmt.Errorf("could not parse price '%s': %w", tickers[0].LastPrice, err), op)
	}
	return price, nil
}

// GetKlines retrieves historical klines/candlestick data for the given symbol.
func (c *Client) GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error) {
	op := "GetKlines"
	binanceKlines, err := c.futuresClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	domainKlines := make([]*domain.Kline, 0, len(binanceKlines))
	for _, bk := range binanceKlines {
		dk, err := translateBinanceKline(bk, symbol, interval)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
		}
		domainKlines = append(domainKlines, dk)
	}
	return domainKlines, nil
}

// MarketData assembles a pricing snapshot: last price, realized volatility over the
// configured window, and the configured rate and dividend yield.
func (c *Client) MarketData(ctx context.Context, symbol string) (domain.MarketData, error) {
	asOf := c.now()

	spot, err := c.GetTickerPrice(ctx, symbol)
	if err != nil {
		return domain.MarketData{}, fmt.Errorf("spot for %s: %w", symbol, err)
	}

	// One extra bar for the first return, one for the bar still forming.
	klines, err := c.GetKlines(ctx, symbol, c.volInterval, c.volLookback+2)
	if err != nil {
		return domain.MarketData{}, fmt.Errorf("klines for %s: %w", symbol, err)
	}
	if n := len(klines); n > 0 && klines[n-1].CloseTime.After(asOf) {
		klines = klines[:n-1]
	}

	vol, err := c.estimator.Estimate(klines, c.periodsPerYear)
	if err != nil {
		return domain.MarketData{}, fmt.Errorf("volatility for %s: %w", symbol, err)
	}

	md := domain.MarketData{
		Symbol:        symbol,
		Spot:          spot,
		Volatility:    vol,
		Rate:          c.rate,
		DividendYield: c.dividendYield,
		AsOf:          asOf,
	}
	if err := md.Validate(); err != nil {
		return domain.MarketData{}, fmt.Errorf("%w: %w", ports.ErrMarketDataUnavailable, err)
	}
	c.logger.Debug(ctx, "Market data snapshot", map[string]interface{}{
		"symbol": symbol, "spot": spot, "volatility": vol, "klines": len(klines),
	})
	return md, nil
}

func translateBinanceKline(bk *futures.Kline, symbol, interval string) (*domain.Kline, error) {
	if bk == nil {
		return nil, errors.New("received nil historical kline")
	}
	open, err := strconv.ParseFloat(bk.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price '%s': %w", bk.Open, err)
	}
	high, err := strconv.ParseFloat(bk.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price '%s': %w", bk.High, err)
	}
	low, err := strconv.ParseFloat(bk.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price '%s': %w", bk.Low, err)
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	vol, err := strconv.ParseFloat(bk.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}

	return &domain.Kline{
		OpenTime:  time.UnixMilli(bk.OpenTime),
		CloseTime: time.UnixMilli(bk.CloseTime),
		Symbol:    symbol,
		Interval:  interval,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}
