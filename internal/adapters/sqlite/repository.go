package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"optionPricer/internal/domain"
	"optionPricer/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.OptionTradeRepository and ports.ValuationRepository interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/option_pricer.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Valuation workers write concurrently; a single connection serialises them.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS option_trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		quantity REAL NOT NULL,
		multiplier REAL NOT NULL,
		strike REAL NOT NULL,
		expiry_date TIMESTAMP NOT NULL,
		side TEXT NOT NULL,
		style TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS valuations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		trade_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		spot REAL NOT NULL,
		volatility REAL NOT NULL,
		rate REAL NOT NULL,
		dividend_yield REAL NOT NULL,
		lattice TEXT NOT NULL,
		tree TEXT NOT NULL,
		steps INTEGER NOT NULL,
		unit_price REAL NOT NULL,
		present_value TEXT NOT NULL, -- decimal string, exact round trip
		valued_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_option_trades_expiry ON option_trades (expiry_date);
	CREATE INDEX IF NOT EXISTS idx_valuations_trade_valued_at ON valuations (trade_id, valued_at);
	CREATE INDEX IF NOT EXISTS idx_valuations_run ON valuations (run_id);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- OptionTradeRepository Implementation ---

// CreateTrade saves a new option trade and returns its assigned ID.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.OptionTrade) (int64, error) {
	const query = `
	INSERT INTO option_trades (symbol, quantity, multiplier, strike, expiry_date, side, style, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now()
	}
	if trade.Style == "" {
		trade.Style = domain.American
	}

	result, err := r.db.ExecContext(ctx, query,
		trade.Symbol, trade.Quantity, trade.Multiplier, trade.Strike, trade.ExpiryDate.UTC(),
		string(trade.Side), string(trade.Style), trade.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert option trade for symbol %s: %w: %w", trade.Symbol, ports.ErrQueryFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for option trade %s: %w", trade.Symbol, err)
	}
	trade.ID = id
	r.logger.Debug(ctx, "Option trade created", map[string]interface{}{"tradeID": id, "symbol": trade.Symbol, "side": trade.Side})
	return id, nil
}

// FindTradeByID retrieves an option trade by its unique ID.
func (r *Repository) FindTradeByID(ctx context.Context, id int64) (*domain.OptionTrade, error) {
	const query = `
	SELECT id, symbol, quantity, multiplier, strike, expiry_date, side, style, created_at
	FROM option_trades
	WHERE id = ?`

	trade, err := scanOptionTrade(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Option trade not found by ID", map[string]interface{}{"tradeID": id})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query option trade by ID %d: %w: %w", id, ports.ErrQueryFailed, err)
	}
	return trade, nil
}

// FindActiveTrades retrieves all trades expiring at or after asOf, ordered by expiry.
func (r *Repository) FindActiveTrades(ctx context.Context, asOf time.Time) ([]*domain.OptionTrade, error) {
	const query = `
	SELECT id, symbol, quantity, multiplier, strike, expiry_date, side, style, created_at
	FROM option_trades
	WHERE expiry_date >= ?
	ORDER BY expiry_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query active option trades: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*domain.OptionTrade, 0)
	for rows.Next() {
		trade, err := scanOptionTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option trade during FindActiveTrades: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating option trade rows: %w", err)
	}
	return trades, nil
}

// --- ValuationRepository Implementation ---

// SaveValuation stores a pricing result and returns its assigned ID.
func (r *Repository) SaveValuation(ctx context.Context, v *domain.Valuation) (int64, error) {
	const query = `
	INSERT INTO valuations (run_id, trade_id, symbol, spot, volatility, rate, dividend_yield,
	                        lattice, tree, steps, unit_price, present_value, valued_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		v.RunID, v.TradeID, v.Symbol, v.Spot, v.Volatility, v.Rate, v.DividendYield,
		v.Lattice, v.Tree, v.Steps, v.UnitPrice, v.PresentValue.String(), v.ValuedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert valuation for trade %d: %w: %w", v.TradeID, ports.ErrQueryFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for valuation of trade %d: %w", v.TradeID, err)
	}
	v.ID = id
	r.logger.Debug(ctx, "Valuation saved", map[string]interface{}{"valuationID": id, "tradeID": v.TradeID, "pv": v.PresentValue.String()})
	return id, nil
}

// FindValuationsByTrade retrieves the most recent valuations for a trade, up to a limit.
func (r *Repository) FindValuationsByTrade(ctx context.Context, tradeID int64, limit int) ([]*domain.Valuation, error) {
	const query = `
	SELECT id, run_id, trade_id, symbol, spot, volatility, rate, dividend_yield,
	       lattice, tree, steps, unit_price, present_value, valued_at
	FROM valuations
	WHERE trade_id = ? ORDER BY valued_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, tradeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations for trade %d: %w: %w", tradeID, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	valuations := make([]*domain.Valuation, 0)
	for rows.Next() {
		v, err := scanValuation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valuation during FindValuationsByTrade: %w", err)
		}
		valuations = append(valuations, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuation rows: %w", err)
	}
	return valuations, nil
}

// LatestValuation retrieves the most recent valuation for a trade, or nil if there is none.
func (r *Repository) LatestValuation(ctx context.Context, tradeID int64) (*domain.Valuation, error) {
	const query = `
	SELECT id, run_id, trade_id, symbol, spot, volatility, rate, dividend_yield,
	       lattice, tree, steps, unit_price, present_value, valued_at
	FROM valuations
	WHERE trade_id = ? ORDER BY valued_at DESC, id DESC LIMIT 1`

	v, err := scanValuation(r.db.QueryRowContext(ctx, query, tradeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest valuation for trade %d: %w: %w", tradeID, ports.ErrQueryFailed, err)
	}
	return v, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOptionTrade(s scanner) (*domain.OptionTrade, error) {
	t := &domain.OptionTrade{}
	var side, style string
	err := s.Scan(
		&t.ID, &t.Symbol, &t.Quantity, &t.Multiplier, &t.Strike,
		&t.ExpiryDate, &side, &style, &t.CreatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	if t.Side, err = domain.ParsePutCall(side); err != nil {
		return nil, fmt.Errorf("trade %d: %w", t.ID, err)
	}
	if t.Style, err = domain.ParseExerciseStyle(style); err != nil {
		return nil, fmt.Errorf("trade %d: %w", t.ID, err)
	}
	return t, nil
}

func scanValuation(s scanner) (*domain.Valuation, error) {
	v := &domain.Valuation{}
	err := s.Scan(
		&v.ID, &v.RunID, &v.TradeID, &v.Symbol, &v.Spot, &v.Volatility, &v.Rate, &v.DividendYield,
		&v.Lattice, &v.Tree, &v.Steps, &v.UnitPrice, &v.PresentValue, &v.ValuedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	return v, nil
}
