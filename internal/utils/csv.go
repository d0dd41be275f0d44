package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"optionPricer/internal/domain"
)

var tradeHeader = []string{"symbol", "side", "style", "strike", "expiry", "quantity", "multiplier"}

// WriteKlinesToCSV dumps klines, e.g. the window behind a realized volatility estimate.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, k := range klines {
		if err := writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339),
			k.CloseTime.UTC().Format(time.RFC3339),
			k.Symbol,
			k.Interval,
			formatFloat(k.Open),
			formatFloat(k.High),
			formatFloat(k.Low),
			formatFloat(k.Close),
			formatFloat(k.Volume),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadOptionTradesFromCSV loads trades from a file with the columns
// symbol,side,style,strike,expiry,quantity,multiplier. Expiry is RFC3339 or YYYY-MM-DD (UTC midnight).
// An empty style means American.
func ReadOptionTradesFromCSV(filename string) ([]*domain.OptionTrade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadOptionTrades(file)
}

// ReadOptionTrades parses the trade CSV format from r.
func ReadOptionTrades(r io.Reader) ([]*domain.OptionTrade, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(tradeHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading trade CSV header: %w", err)
	}
	for i, col := range tradeHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("trade CSV column %d is %q, want %q: %w", i+1, header[i], col, domain.ErrInvalidInput)
		}
	}

	var trades []*domain.OptionTrade
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading trade CSV: %w", err)
		}
		trade, err := parseTradeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("trade CSV line %d: %w", line, err)
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func parseTradeRecord(rec []string) (*domain.OptionTrade, error) {
	side, err := domain.ParsePutCall(rec[1])
	if err != nil {
		return nil, err
	}
	style, err := domain.ParseExerciseStyle(rec[2])
	if err != nil {
		return nil, err
	}
	strike, err := parseFloat("strike", rec[3])
	if err != nil {
		return nil, err
	}
	expiry, err := parseExpiry(rec[4])
	if err != nil {
		return nil, err
	}
	quantity, err := parseFloat("quantity", rec[5])
	if err != nil {
		return nil, err
	}
	multiplier, err := parseFloat("multiplier", rec[6])
	if err != nil {
		return nil, err
	}

	trade := &domain.OptionTrade{
		Symbol:     strings.ToUpper(strings.TrimSpace(rec[0])),
		Quantity:   quantity,
		Multiplier: multiplier,
		Strike:     strike,
		ExpiryDate: expiry,
		Side:       side,
		Style:      style,
	}
	if trade.Symbol == "" {
		return nil, fmt.Errorf("empty symbol: %w", domain.ErrInvalidInput)
	}
	// Validate the economic terms as of the expiry itself so past-dated trades still load.
	if _, err := trade.Terms(expiry); err != nil {
		return nil, err
	}
	return trade, nil
}

// WriteValuationsToCSV writes one row per valuation, present value as an exact decimal string.
func WriteValuationsToCSV(valuations []*domain.Valuation, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteValuations(file, valuations)
}

// WriteValuations writes the valuation CSV format to w.
func WriteValuations(w io.Writer, valuations []*domain.Valuation) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"run_id", "trade_id", "symbol", "valued_at", "spot", "volatility", "rate", "dividend_yield",
		"lattice", "tree", "steps", "unit_price", "present_value",
	}); err != nil {
		return err
	}
	for _, v := range valuations {
		if err := writer.Write([]string{
			v.RunID,
			strconv.FormatInt(v.TradeID, 10),
			v.Symbol,
			v.ValuedAt.UTC().Format(time.RFC3339),
			formatFloat(v.Spot),
			formatFloat(v.Volatility),
			formatFloat(v.Rate),
			formatFloat(v.DividendYield),
			v.Lattice,
			v.Tree,
			strconv.Itoa(v.Steps),
			formatFloat(v.UnitPrice),
			v.PresentValue.String(),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseFloat(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, domain.ErrInvalidInput)
	}
	return v, nil
}

func parseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid expiry %q, want RFC3339 or YYYY-MM-DD: %w", s, domain.ErrInvalidInput)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
