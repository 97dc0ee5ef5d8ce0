package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vyasaquant/pkg/core/calc"
)

// StockRecord is the master row for a screened stock.
type StockRecord struct {
	Symbol      string
	CompanyName string
	Sector      string
	SectorPE    float64
}

// StoredRecommendation wraps a recommendation with its run metadata.
type StoredRecommendation struct {
	RunID          string              `json:"run_id"`
	Recommendation calc.Recommendation `json:"recommendation"`
	Narrative      string              `json:"narrative,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Repository is the persistence surface the pipeline writes through.
// Implementations must be safe for concurrent use.
type Repository interface {
	SaveStock(ctx context.Context, rec StockRecord) error
	SaveEarnings(ctx context.Context, symbol string, earnings calc.EarningsSeries) error
	SaveIntrinsicPE(ctx context.Context, symbol string, prices calc.PriceSeries, intrinsics calc.IntrinsicsResult) error
	SaveRecommendation(ctx context.Context, rec StoredRecommendation) error
	GetRecommendation(ctx context.Context, symbol string) (*StoredRecommendation, error)
}

// =============================================================================
// POSTGRES REPOSITORY
// =============================================================================

// PostgresRepository persists to the vq_tbl_* tables via the shared pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository wraps a pgx pool, usually store.GetPool().
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) SaveStock(ctx context.Context, rec StockRecord) error {
	query := `
		INSERT INTO vq_tbl_stock (stock_symbol, stock_name, sector, sector_pe, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (stock_symbol) DO UPDATE
		SET stock_name = EXCLUDED.stock_name,
		    sector = EXCLUDED.sector,
		    sector_pe = EXCLUDED.sector_pe,
		    updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.pool.Exec(ctx, query, rec.Symbol, rec.CompanyName, rec.Sector, rec.SectorPE); err != nil {
		return fmt.Errorf("failed to upsert stock %s: %w", rec.Symbol, err)
	}
	return nil
}

func (r *PostgresRepository) SaveEarnings(ctx context.Context, symbol string, earnings calc.EarningsSeries) error {
	query := `
		INSERT INTO vq_tbl_eps_data (stock_symbol, financial_year, eps, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (stock_symbol, financial_year) DO UPDATE
		SET eps = EXCLUDED.eps, updated_at = CURRENT_TIMESTAMP
	`
	for _, p := range earnings {
		if _, err := r.pool.Exec(ctx, query, symbol, p.FiscalYear, p.EPS); err != nil {
			return fmt.Errorf("failed to upsert EPS for %s FY%d: %w", symbol, p.FiscalYear, err)
		}
	}
	return nil
}

func (r *PostgresRepository) SaveIntrinsicPE(ctx context.Context, symbol string, prices calc.PriceSeries, intrinsics calc.IntrinsicsResult) error {
	query := `
		INSERT INTO vq_tbl_intrinsic_pe_ratio (stock_symbol, financial_year, avg_price, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (stock_symbol, financial_year) DO UPDATE
		SET avg_price = EXCLUDED.avg_price, updated_at = CURRENT_TIMESTAMP
	`
	for _, p := range prices {
		if _, err := r.pool.Exec(ctx, query, symbol, p.FiscalYear, p.AvgPrice); err != nil {
			return fmt.Errorf("failed to upsert price for %s FY%d: %w", symbol, p.FiscalYear, err)
		}
	}

	summary := `
		INSERT INTO vq_tbl_intrinsic_pe_summary (stock_symbol, intrinsic_pe, pe_growth_rate, best_case_pe, used_years, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (stock_symbol) DO UPDATE
		SET intrinsic_pe = EXCLUDED.intrinsic_pe,
		    pe_growth_rate = EXCLUDED.pe_growth_rate,
		    best_case_pe = EXCLUDED.best_case_pe,
		    used_years = EXCLUDED.used_years,
		    updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.pool.Exec(ctx, summary, symbol,
		intrinsics.IntrinsicPE, intrinsics.PEGrowthRate, intrinsics.BestCasePE, intrinsics.UsedYears); err != nil {
		return fmt.Errorf("failed to upsert intrinsic PE summary for %s: %w", symbol, err)
	}
	return nil
}

func (r *PostgresRepository) SaveRecommendation(ctx context.Context, rec StoredRecommendation) error {
	data, err := json.Marshal(rec.Recommendation)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}
	query := `
		INSERT INTO vq_tbl_recommendation (run_id, stock_symbol, decision, data, narrative, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query, rec.RunID, rec.Recommendation.Symbol,
		string(rec.Recommendation.Decision), data, rec.Narrative, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation for %s: %w", rec.Recommendation.Symbol, err)
	}
	return nil
}

func (r *PostgresRepository) GetRecommendation(ctx context.Context, symbol string) (*StoredRecommendation, error) {
	query := `
		SELECT run_id, data, narrative, created_at
		FROM vq_tbl_recommendation
		WHERE stock_symbol = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var out StoredRecommendation
	var data []byte
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&out.RunID, &data, &out.Narrative, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("no stored recommendation for %s: %w", symbol, err)
	}
	if err := json.Unmarshal(data, &out.Recommendation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored recommendation: %w", err)
	}
	return &out, nil
}

// =============================================================================
// IN-MEMORY REPOSITORY
// =============================================================================

// MemoryRepository keeps everything in process. Used by tests and by runs
// without a configured database.
type MemoryRepository struct {
	mu              sync.RWMutex
	stocks          map[string]StockRecord
	earnings        map[string]calc.EarningsSeries
	recommendations map[string]StoredRecommendation
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		stocks:          make(map[string]StockRecord),
		earnings:        make(map[string]calc.EarningsSeries),
		recommendations: make(map[string]StoredRecommendation),
	}
}

func (r *MemoryRepository) SaveStock(_ context.Context, rec StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stocks[rec.Symbol] = rec
	return nil
}

func (r *MemoryRepository) SaveEarnings(_ context.Context, symbol string, earnings calc.EarningsSeries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.earnings[symbol] = append(calc.EarningsSeries(nil), earnings...)
	return nil
}

func (r *MemoryRepository) SaveIntrinsicPE(_ context.Context, _ string, _ calc.PriceSeries, _ calc.IntrinsicsResult) error {
	return nil
}

func (r *MemoryRepository) SaveRecommendation(_ context.Context, rec StoredRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recommendations[rec.Recommendation.Symbol] = rec
	return nil
}

func (r *MemoryRepository) GetRecommendation(_ context.Context, symbol string) (*StoredRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recommendations[symbol]
	if !ok {
		return nil, fmt.Errorf("no stored recommendation for %s", symbol)
	}
	return &rec, nil
}
