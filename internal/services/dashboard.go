package services

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	"github.com/yungbote/medsupply-backend/internal/domain/inventory"
	"github.com/yungbote/medsupply-backend/internal/platform/dbctx"
	"github.com/yungbote/medsupply-backend/internal/platform/logger"
)

const (
	DefaultDashboardTTL = 30 * time.Second

	cacheKeyRequestStatus    = "dashboard:request_status"
	cacheKeySuppliesOverview = "dashboard:supplies_overview"
	cacheKeyHospitals        = "dashboard:hospitals_overview"
	cacheKeyAlerts           = "dashboard:alerts_overview"
)

type RequestStatusStats struct {
	Total           int64            `json:"total"`
	Emergency       int64            `json:"emergency"`
	PendingApproval int64            `json:"pending_approval"`
	ByStatus        map[string]int64 `json:"by_status"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Label    string `json:"category_display"`
	Count    int    `json:"count"`
	Stock    int    `json:"stock"`
}

type SuppliesOverview struct {
	ByCategory []CategoryCount `json:"by_category"`
	Total      int             `json:"total_supplies"`
	Controlled int             `json:"controlled_supplies"`
	LowStock   int             `json:"low_stock_supplies"`
}

type LevelCount struct {
	Level int    `json:"level"`
	Label string `json:"level_display"`
	Count int    `json:"count"`
}

type HospitalsOverview struct {
	ByLevel       []LevelCount    `json:"by_level"`
	Total         int             `json:"total_hospitals"`
	Active        int             `json:"active_hospitals"`
	TotalCapacity decimal.Decimal `json:"total_capacity"`
	CurrentUsage  decimal.Decimal `json:"current_usage"`
}

type AlertsOverview struct {
	Total      int64            `json:"total_alerts"`
	Unresolved int64            `json:"unresolved_alerts"`
	ByType     map[string]int64 `json:"by_type"`
}

// DashboardService serves aggregate figures for the dashboard. Results are
// cached for a short TTL; Invalidate drops them after bulk writes.
type DashboardService interface {
	RequestStatus(dbc dbctx.Context) (*RequestStatusStats, error)
	SuppliesOverview(dbc dbctx.Context) (*SuppliesOverview, error)
	HospitalsOverview(dbc dbctx.Context) (*HospitalsOverview, error)
	AlertsOverview(dbc dbctx.Context) (*AlertsOverview, error)
	Invalidate()
}

type dashboardService struct {
	log       *logger.Logger
	cache     *cache.Cache
	requests  repos.SupplyRequestRepo
	supplies  repos.SupplyRepo
	batches   repos.BatchRepo
	hospitals repos.HospitalRepo
	alerts    repos.AlertRepo
}

func NewDashboardService(baseLog *logger.Logger, ttl time.Duration, requests repos.SupplyRequestRepo, supplies repos.SupplyRepo, batches repos.BatchRepo, hospitals repos.HospitalRepo, alerts repos.AlertRepo) DashboardService {
	if ttl <= 0 {
		ttl = DefaultDashboardTTL
	}
	return &dashboardService{
		log:       baseLog.With("service", "DashboardService"),
		cache:     cache.New(ttl, 2*ttl),
		requests:  requests,
		supplies:  supplies,
		batches:   batches,
		hospitals: hospitals,
		alerts:    alerts,
	}
}

func (s *dashboardService) Invalidate() {
	s.cache.Flush()
}

func (s *dashboardService) RequestStatus(dbc dbctx.Context) (*RequestStatusStats, error) {
	if v, ok := s.cache.Get(cacheKeyRequestStatus); ok {
		return v.(*RequestStatusStats), nil
	}
	counts, err := s.requests.CountByStatus(dbc)
	if err != nil {
		return nil, repos.MapError(err)
	}
	emergency, err := s.requests.CountEmergency(dbc)
	if err != nil {
		return nil, repos.MapError(err)
	}
	out := &RequestStatusStats{
		Emergency:       emergency,
		PendingApproval: counts[inventory.StatusSubmitted],
		ByStatus:        make(map[string]int64, len(counts)),
	}
	for _, st := range inventory.RequestStatuses() {
		out.ByStatus[st] = counts[st]
		out.Total += counts[st]
	}
	s.cache.SetDefault(cacheKeyRequestStatus, out)
	return out, nil
}

// SuppliesOverview counts a supply as low on stock when its batches across all
// hospitals hold fewer units than its minimum.
func (s *dashboardService) SuppliesOverview(dbc dbctx.Context) (*SuppliesOverview, error) {
	if v, ok := s.cache.Get(cacheKeySuppliesOverview); ok {
		return v.(*SuppliesOverview), nil
	}
	supplies, err := s.supplies.List(dbc, repos.SupplyFilter{})
	if err != nil {
		return nil, repos.MapError(err)
	}
	batches, err := s.batches.List(dbc, repos.BatchFilter{})
	if err != nil {
		return nil, repos.MapError(err)
	}
	stock := map[string]int{}
	for _, b := range batches {
		stock[b.SupplyCode] += b.Quantity
	}

	byCategory := map[string]*CategoryCount{}
	out := &SuppliesOverview{}
	for _, c := range inventory.Categories() {
		cc := &CategoryCount{Category: c, Label: inventory.CategoryLabel(c)}
		byCategory[c] = cc
	}
	for _, sp := range supplies {
		out.Total++
		if sp.IsControlled {
			out.Controlled++
		}
		if stock[sp.Code] < sp.MinStockLevel {
			out.LowStock++
		}
		if cc, ok := byCategory[sp.Category]; ok {
			cc.Count++
			cc.Stock += stock[sp.Code]
		}
	}
	for _, c := range inventory.Categories() {
		out.ByCategory = append(out.ByCategory, *byCategory[c])
	}
	s.cache.SetDefault(cacheKeySuppliesOverview, out)
	return out, nil
}

func (s *dashboardService) HospitalsOverview(dbc dbctx.Context) (*HospitalsOverview, error) {
	if v, ok := s.cache.Get(cacheKeyHospitals); ok {
		return v.(*HospitalsOverview), nil
	}
	hospitals, err := s.hospitals.List(dbc, repos.HospitalFilter{})
	if err != nil {
		return nil, repos.MapError(err)
	}
	counts := map[int]int{}
	out := &HospitalsOverview{TotalCapacity: decimal.Zero, CurrentUsage: decimal.Zero}
	for _, h := range hospitals {
		out.Total++
		if h.IsActive {
			out.Active++
		}
		counts[h.Level]++
		out.TotalCapacity = out.TotalCapacity.Add(h.StorageVolume)
		out.CurrentUsage = out.CurrentUsage.Add(h.CurrentCapacity)
	}
	for level := inventory.LevelThirdA; level >= inventory.LevelOther; level-- {
		out.ByLevel = append(out.ByLevel, LevelCount{Level: level, Label: inventory.LevelLabel(level), Count: counts[level]})
	}
	s.cache.SetDefault(cacheKeyHospitals, out)
	return out, nil
}

func (s *dashboardService) AlertsOverview(dbc dbctx.Context) (*AlertsOverview, error) {
	if v, ok := s.cache.Get(cacheKeyAlerts); ok {
		return v.(*AlertsOverview), nil
	}
	counts, err := s.alerts.Counts(dbc)
	if err != nil {
		return nil, repos.MapError(err)
	}
	out := &AlertsOverview{ByType: map[string]int64{}}
	for _, c := range counts {
		out.Total += c.Count
		if !c.IsResolved {
			out.Unresolved += c.Count
		}
		out.ByType[c.AlertType] += c.Count
	}
	s.cache.SetDefault(cacheKeyAlerts, out)
	return out, nil
}
