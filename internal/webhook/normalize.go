package webhook

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// DefaultDuration is used when an appointment carries no usable duration.
const DefaultDuration = 30

// maxDuration bounds accepted durations to one day, in minutes.
const maxDuration = 24 * 60

// Placeholder values for appointments that cannot be decoded.
const (
	PlaceholderIDPrefix   = "error"
	PlaceholderClientName = "Unknown"
	PlaceholderPhone      = "(000) 000-0000"
)

// Result is the normalized content of one webhook payload.
type Result struct {
	Appointments  []models.Appointment
	Expenses      []models.Expense
	Insights      *models.AIInsightsSummary
	Skipped       int // unmatched or undecodable elements
	Placeholders  int // appointments replaced by a placeholder
	DateFallbacks int // records whose date fell back to now
}

// Normalizer turns raw payload elements into domain records.
type Normalizer struct {
	Location *time.Location
	Now      func() time.Time
	Log      *zap.Logger
}

type wireAppointment struct {
	ID          json.RawMessage `json:"id"`
	ClientName  string          `json:"clientName"`
	PhoneNumber json.RawMessage `json:"phoneNumber"`
	HaircutType string          `json:"haircutType"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Duration    json.RawMessage `json:"duration"`
	Price       json.RawMessage `json:"price"`
	Status      json.RawMessage `json:"status"`
}

type wireExpense struct {
	Date   json.RawMessage `json:"date"`
	Amount json.RawMessage `json:"amount"`
}

type wireServiceCount struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

type wireInsights struct {
	PerformanceScore json.RawMessage    `json:"performanceScore"`
	KeyInsights      []string           `json:"keyInsights"`
	PeakHours        []string           `json:"peakHours"`
	TopServices      []wireServiceCount `json:"topServices"`
	RevenueThisWeek  json.RawMessage    `json:"revenueThisWeek"`
	Recommendations  []string           `json:"recommendations"`
}

type wireInsightsEnvelope struct {
	AIInsights  wireInsights `json:"aiInsights"`
	LastUpdated string       `json:"lastUpdated"`
	Status      string       `json:"status"`
}

// Normalize classifies and converts every element. It never fails as a
// whole: bad elements are skipped or replaced and counted in the Result.
func (n *Normalizer) Normalize(items []json.RawMessage) *Result {
	res := &Result{
		Appointments: make([]models.Appointment, 0, len(items)),
		Expenses:     make([]models.Expense, 0),
	}

	for i, raw := range items {
		switch kind := Classify(raw); kind {
		case PayloadInsights:
			insights, err := n.insights(raw)
			if err != nil {
				n.logger().Warn("skipping undecodable insights record", zap.Int("index", i), zap.Error(err))
				res.Skipped++
				continue
			}
			res.Insights = insights
		case PayloadAppointment:
			appt, placeholder, dateFallback := n.appointment(raw)
			if placeholder {
				n.logger().Warn("appointment replaced by placeholder", zap.Int("index", i), zap.String("id", appt.ID))
				res.Placeholders++
			}
			if dateFallback {
				res.DateFallbacks++
			}
			res.Appointments = append(res.Appointments, appt)
		case PayloadExpense:
			exp, dateFallback := n.expense(raw)
			if dateFallback {
				res.DateFallbacks++
			}
			res.Expenses = append(res.Expenses, exp)
		default:
			n.logger().Debug("skipping unmatched record", zap.Int("index", i))
			res.Skipped++
		}
	}

	return res
}

// appointment converts one appointment-shaped element.
func (n *Normalizer) appointment(raw json.RawMessage) (appt models.Appointment, placeholder, dateFallback bool) {
	var w wireAppointment
	if err := json.Unmarshal(raw, &w); err != nil {
		return n.placeholder(w), true, false
	}

	date, err := ParseDateTime(w.Date, w.Time, n.Location)
	if err != nil {
		n.logger().Warn("unparseable appointment date, using now",
			zap.String("date", w.Date), zap.String("time", w.Time))
		date = n.now()
		dateFallback = true
	}

	duration := DefaultDuration
	if d, ok := numberFrom(w.Duration); ok && d >= 0.5 && d <= maxDuration {
		duration = int(math.Round(d))
	}

	price, _ := numberFrom(w.Price)
	if price < 0 {
		price = 0
	}

	status := models.StatusScheduled
	if completedFrom(w.Status) {
		status = models.StatusCompleted
	}

	id := stringFrom(w.ID)
	if id == "" {
		id = uuid.NewString()
	}

	return models.Appointment{
		ID:          id,
		ClientName:  w.ClientName,
		PhoneNumber: FormatPhoneNumber(phoneDigits(w.PhoneNumber)),
		HaircutType: w.HaircutType,
		Date:        date,
		Duration:    duration,
		Price:       price,
		Cost:        EstimateCost(w.HaircutType),
		Status:      status,
	}, false, dateFallback
}

// placeholder builds a clearly marked stand-in for an undecodable record.
func (n *Normalizer) placeholder(w wireAppointment) models.Appointment {
	id := stringFrom(w.ID)
	if id == "" {
		id = PlaceholderIDPrefix + "-" + uuid.NewString()
	}
	haircut := w.HaircutType
	if haircut == "" {
		haircut = PlaceholderClientName
	}
	return models.Appointment{
		ID:          id,
		ClientName:  PlaceholderClientName,
		PhoneNumber: PlaceholderPhone,
		HaircutType: haircut,
		Date:        n.now(),
		Duration:    DefaultDuration,
		Price:       0,
		Cost:        DefaultCost,
		Status:      models.StatusScheduled,
	}
}

func (n *Normalizer) expense(raw json.RawMessage) (models.Expense, bool) {
	var w wireExpense
	_ = json.Unmarshal(raw, &w)

	dateFallback := false
	date, err := ParseDate(stringFrom(w.Date), n.Location)
	if err != nil {
		n.logger().Warn("unparseable expense date, using now", zap.ByteString("date", w.Date))
		date = n.now()
		dateFallback = true
	}

	amount, ok := numberFrom(w.Amount)
	if !ok || amount < 0 {
		if !ok {
			n.logger().Warn("unparseable expense amount, using 0", zap.ByteString("amount", w.Amount))
		}
		amount = 0
	}

	return models.Expense{Date: date, Amount: amount}, dateFallback
}

func (n *Normalizer) insights(raw json.RawMessage) (*models.AIInsightsSummary, error) {
	var w wireInsightsEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	score, _ := numberFrom(w.AIInsights.PerformanceScore)
	score = math.Max(0, math.Min(100, math.Round(score)))
	revenue, _ := numberFrom(w.AIInsights.RevenueThisWeek)

	var lastUpdated time.Time
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(w.LastUpdated)); err == nil {
		lastUpdated = t
	}

	top := make([]models.ServiceCount, 0, len(w.AIInsights.TopServices))
	for _, s := range w.AIInsights.TopServices {
		top = append(top, models.ServiceCount{Service: s.Service, Count: s.Count})
	}

	return &models.AIInsightsSummary{
		PerformanceScore: int(score),
		KeyInsights:      nonNil(w.AIInsights.KeyInsights),
		PeakHours:        nonNil(w.AIInsights.PeakHours),
		TopServices:      top,
		RevenueThisWeek:  revenue,
		Recommendations:  nonNil(w.AIInsights.Recommendations),
		LastUpdated:      lastUpdated,
		Status:           w.Status,
	}, nil
}

func (n *Normalizer) now() time.Time {
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}
	if n.Location != nil {
		now = now.In(n.Location)
	}
	return now
}

func (n *Normalizer) logger() *zap.Logger {
	if n.Log == nil {
		return zap.NewNop()
	}
	return n.Log
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
