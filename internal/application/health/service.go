package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"charity-fund/internal/domain"
	"charity-fund/internal/middleware"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DBPinger is optional; nil reports the database as disconnected.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// GormPinger pings the pool behind a gorm handle.
type GormPinger struct{ DB *gorm.DB }

func (g GormPinger) Ping(ctx context.Context) error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Funds        *FundsInfo           `json:"funds,omitempty"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

// FundsInfo summarises the two backlogs the allocator works on.
type FundsInfo struct {
	OpenProjects   int64 `json:"openProjects"`
	OpenDonations  int64 `json:"openDonations"`
	ProjectsNeed   int64 `json:"projectsNeed"`
	DonationsIdle  int64 `json:"donationsIdle"`
	ClosedProjects int64 `json:"closedProjects"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// CollectHealth gathers dependency status, Redis traffic counters and, when
// db is a gorm handle, the funding backlog summary.
func CollectHealth(ctx context.Context, rdb *redis.Client, db *gorm.DB) CollectResult {
	var pinger DBPinger
	if db != nil {
		pinger = GormPinger{DB: db}
	}
	result := collect(ctx, rdb, pinger)
	if db != nil && result.Dependencies["database"].Status == "connected" {
		if funds, err := Funds(ctx, db); err == nil {
			result.Funds = funds
		}
	}
	return result
}

func collect(ctx context.Context, rdb *redis.Client, db DBPinger) CollectResult {
	result := CollectResult{Dependencies: make(map[string]DepStatus)}

	dbStatus, dbPing := ping(db != nil, func() error { return db.Ping(ctx) })
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPing}

	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()
	redisStatus, redisPing := ping(rdb != nil, func() error { return rdb.Ping(ctx).Err() })
	if redisStatus == "connected" {
		startTimeMs = readTraffic(ctx, rdb, &stats, startTimeMs)
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPing}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startTimeMs) / 1000
	result.Runtime = RuntimeInfo{
		UptimeSeconds: max(uptime, 0),
		Memory:        MemoryInfo{Alloc: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
	result.Traffic = stats

	if dbStatus == "connected" && redisStatus == "connected" {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}

func ping(configured bool, fn func() error) (string, *int64) {
	if !configured {
		return "disconnected", nil
	}
	start := time.Now()
	if err := fn(); err != nil {
		return "error", nil
	}
	ms := time.Since(start).Milliseconds()
	return "connected", &ms
}

func readTraffic(ctx context.Context, rdb *redis.Client, stats *TrafficInfo, startTimeMs int64) int64 {
	vals, _ := rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	get := func(i int) string {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				return s
			}
		}
		return ""
	}

	if t, err := strconv.ParseInt(get(4), 10, 64); err == nil {
		startTimeMs = t
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(get(0))
	stats.FailedCount, _ = strconv.Atoi(get(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(get(2), 64)
	if count, _ := strconv.Atoi(get(3)); count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if last := get(5); last != "" {
		var lastReq map[string]interface{}
		if json.Unmarshal([]byte(last), &lastReq) == nil {
			stats.LastRequest = lastReq
		}
	}
	return startTimeMs
}

// Funds reads the open backlog sizes and the money waiting on each side.
func Funds(ctx context.Context, db *gorm.DB) (*FundsInfo, error) {
	var out FundsInfo
	type agg struct {
		N   int64
		Sum int64
	}
	var p, d agg
	q := db.WithContext(ctx)
	if err := q.Model(&domain.CharityProject{}).
		Select("COUNT(*) AS n, COALESCE(SUM(full_amount - invested_amount), 0) AS sum").
		Where("fully_invested = ?", false).Scan(&p).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&domain.Donation{}).
		Select("COUNT(*) AS n, COALESCE(SUM(full_amount - invested_amount), 0) AS sum").
		Where("fully_invested = ?", false).Scan(&d).Error; err != nil {
		return nil, err
	}
	if err := q.Model(&domain.CharityProject{}).Where("fully_invested = ?", true).Count(&out.ClosedProjects).Error; err != nil {
		return nil, err
	}
	out.OpenProjects, out.ProjectsNeed = p.N, p.Sum
	out.OpenDonations, out.DonationsIdle = d.N, d.Sum
	return &out, nil
}
