package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gotsutoki/car-management-website/internal/dto"
	"github.com/Gotsutoki/car-management-website/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	statisticsCacheKey   = "reports:statistics"
	averagePriceCacheKey = "reports:average_price"
	reportCacheTTL       = 60 * time.Second
)

// defaultExpensiveThreshold is the minimum price of the expensive-cars
// report when the caller does not supply one.
var defaultExpensiveThreshold = decimal.NewFromInt(5_000_000)

type ReportService interface {
	LowStockCars(ctx context.Context) ([]dto.LowStockCar, error)
	ExpensiveCars(ctx context.Context, minPrice *decimal.Decimal) ([]dto.ExpensiveCar, error)
	Statistics(ctx context.Context) (*dto.StatisticsResponse, error)
	AveragePrice(ctx context.Context) (*dto.AveragePriceResponse, error)
}

type reportService struct {
	repo              repository.ReportRepository
	rdb               *redis.Client
	lowStockThreshold int
}

func NewReportService(repo repository.ReportRepository, rdb *redis.Client, lowStockThreshold int) ReportService {
	return &reportService{repo: repo, rdb: rdb, lowStockThreshold: lowStockThreshold}
}

func (s *reportService) LowStockCars(ctx context.Context) ([]dto.LowStockCar, error) {
	rows, err := s.repo.LowStockCars(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockCar, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockCar{
			ID: r.ID, Brand: r.Brand, Model: r.Model,
			Year: r.Year, Price: r.Price, Stock: r.Stock,
		})
	}
	return out, nil
}

func (s *reportService) ExpensiveCars(ctx context.Context, minPrice *decimal.Decimal) ([]dto.ExpensiveCar, error) {
	threshold := defaultExpensiveThreshold
	if minPrice != nil {
		threshold = *minPrice
	}
	rows, err := s.repo.ExpensiveCars(ctx, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpensiveCar, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ExpensiveCar{
			ID: r.ID, Brand: r.Brand, Model: r.Model,
			Year: r.Year, Price: r.Price,
		})
	}
	return out, nil
}

// Statistics serves from a short-TTL redis cache; car writes invalidate the
// key eagerly, the TTL covers anything that slips through.
func (s *reportService) Statistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	var cached dto.StatisticsResponse
	if s.cacheGet(ctx, statisticsCacheKey, &cached) {
		return &cached, nil
	}

	row, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.StatisticsResponse{
		TotalCars:    row.TotalCars,
		AveragePrice: row.AveragePrice.Round(2),
		TotalStock:   row.TotalStock,
		UniqueModels: row.UniqueModels,
	}
	s.cacheSet(ctx, statisticsCacheKey, resp)
	return resp, nil
}

func (s *reportService) AveragePrice(ctx context.Context) (*dto.AveragePriceResponse, error) {
	var cached dto.AveragePriceResponse
	if s.cacheGet(ctx, averagePriceCacheKey, &cached) {
		return &cached, nil
	}

	avg, err := s.repo.AveragePrice(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.AveragePriceResponse{}
	if avg != nil {
		resp.AveragePrice = avg.Round(2)
	}
	s.cacheSet(ctx, averagePriceCacheKey, resp)
	return resp, nil
}

func (s *reportService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *reportService) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, reportCacheTTL).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
