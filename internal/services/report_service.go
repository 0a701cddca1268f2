// internal/services/report_service.go
package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zapcatalog/zapcatalog-backend/internal/apperrors"
	"github.com/zapcatalog/zapcatalog-backend/internal/models"
)

type ReportService struct {
	db *gorm.DB
}

// ReportWindow selects the aggregation period for the dashboard report.
type ReportWindow string

const (
	WindowToday  ReportWindow = "today"
	Window7Days  ReportWindow = "7d"
	Window30Days ReportWindow = "30d"
	WindowAll    ReportWindow = "all"
)

// Report is the dashboard summary for one company and window. Revenue
// counts approved orders only; submitted and cancelled totals never land
// in it.
type Report struct {
	Window          ReportWindow    `json:"window"`
	ActiveProducts  int64           `json:"active_products"`
	Categories      int64           `json:"categories"`
	Orders          int64           `json:"orders"`
	PendingOrders   int64           `json:"pending_orders"`
	DistinctClients int64           `json:"distinct_clients"`
	ApprovedRevenue decimal.Decimal `json:"approved_revenue"`
	RevenueByDay    []DailyRevenue  `json:"revenue_by_day"`
}

type DailyRevenue struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// windowStart resolves the window to its inclusive lower bound; the zero
// time means unbounded.
func windowStart(window ReportWindow, now time.Time) time.Time {
	switch window {
	case WindowToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case Window7Days:
		return now.AddDate(0, 0, -7)
	case Window30Days:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// BuildReport computes the summary with read-only queries. Counts of
// products, categories and clients reflect the current state; order and
// pending counts and revenue respect the window.
func (s *ReportService) BuildReport(companyID, callerID uuid.UUID, window ReportWindow) (*Report, error) {
	if err := s.authorizeCompanyOwner(companyID, callerID); err != nil {
		return nil, err
	}

	switch window {
	case WindowToday, Window7Days, Window30Days, WindowAll:
	default:
		return nil, apperrors.Validation("unknown report window %q", window)
	}

	now := time.Now().UTC()
	start := windowStart(window, now)

	report := &Report{
		Window:          window,
		ApprovedRevenue: decimal.Zero,
	}

	if err := s.db.Model(&models.Product{}).
		Where("company_id = ? AND active = ?", companyID, true).
		Count(&report.ActiveProducts).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to count products")
	}

	if err := s.db.Model(&models.Category{}).
		Where("company_id = ?", companyID).
		Count(&report.Categories).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to count categories")
	}

	orderQuery := s.db.Model(&models.Order{}).Where("company_id = ?", companyID)
	if !start.IsZero() {
		orderQuery = orderQuery.Where("created_at >= ?", start)
	}
	if err := orderQuery.Count(&report.Orders).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to count orders")
	}

	pendingQuery := s.db.Model(&models.Order{}).
		Where("company_id = ? AND status NOT IN ?", companyID,
			[]models.OrderStatus{models.OrderStatusApproved, models.OrderStatusCancelled})
	if !start.IsZero() {
		pendingQuery = pendingQuery.Where("created_at >= ?", start)
	}
	if err := pendingQuery.Count(&report.PendingOrders).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to count pending orders")
	}

	if err := s.db.Model(&models.Order{}).
		Where("company_id = ? AND customer_id IS NOT NULL", companyID).
		Distinct("customer_id").
		Count(&report.DistinctClients).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to count clients")
	}

	revenue, err := s.approvedRevenue(companyID, start)
	if err != nil {
		return nil, err
	}
	report.ApprovedRevenue = revenue

	series, err := s.revenueSeries(companyID, window, start, now)
	if err != nil {
		return nil, err
	}
	report.RevenueByDay = series

	return report, nil
}

func (s *ReportService) approvedRevenue(companyID uuid.UUID, start time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.NullDecimal
	}

	query := s.db.Model(&models.Order{}).
		Select("SUM(total) AS total").
		Where("company_id = ? AND status = ?", companyID, models.OrderStatusApproved)
	if !start.IsZero() {
		query = query.Where("created_at >= ?", start)
	}

	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, apperrors.Upstream(err, "failed to sum revenue")
	}
	if !result.Total.Valid {
		return decimal.Zero, nil
	}
	return result.Total.Decimal, nil
}

// revenueSeries groups approved totals per calendar day. The all-time
// window falls back to the trailing 14 days so the chart stays bounded.
func (s *ReportService) revenueSeries(companyID uuid.UUID, window ReportWindow, start, now time.Time) ([]DailyRevenue, error) {
	seriesStart := start
	if window == WindowAll {
		seriesStart = now.AddDate(0, 0, -14)
	}

	rows := []struct {
		Day     string
		Revenue decimal.NullDecimal
	}{}

	if err := s.db.Model(&models.Order{}).
		Select("DATE(created_at) AS day, SUM(total) AS revenue").
		Where("company_id = ? AND status = ? AND created_at >= ?",
			companyID, models.OrderStatusApproved, seriesStart).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Upstream(err, "failed to build revenue series")
	}

	series := make([]DailyRevenue, 0, len(rows))
	for _, row := range rows {
		revenue := decimal.Zero
		if row.Revenue.Valid {
			revenue = row.Revenue.Decimal
		}
		series = append(series, DailyRevenue{Day: row.Day, Revenue: revenue})
	}

	return series, nil
}

func (s *ReportService) authorizeCompanyOwner(companyID, callerID uuid.UUID) error {
	var company models.Company
	if err := s.db.First(&company, companyID).Error; err != nil {
		return apperrors.Upstream(err, "database error")
	}
	if company.OwnerID != callerID {
		return apperrors.Authorization("caller does not own this company")
	}
	return nil
}
