package domain

import (
	"errors"
	"time"
)

// Series validation errors.
var (
	ErrEmptySeries      = errors.New("candle series is empty")
	ErrNonPositivePrice = errors.New("candle series contains a non-positive close price")
	ErrUnorderedDates   = errors.New("candle series dates are not strictly increasing")
)

// Candle is one daily OHLCV observation.
type Candle struct {
	Date   time.Time // UTC midnight of the trading day
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// CandleSeries is an ordered daily price series for one symbol.
// Immutable once constructed; shared read-only across simulations.
type CandleSeries struct {
	Symbol  string
	Candles []*Candle
}

// NewCandleSeries builds a series and validates its ordering invariants.
func NewCandleSeries(symbol string, candles []*Candle) (*CandleSeries, error) {
	s := &CandleSeries{Symbol: symbol, Candles: candles}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the series invariants: at least one candle, all closes
// positive, dates strictly increasing (which also rules out duplicates).
func (s *CandleSeries) Validate() error {
	if len(s.Candles) == 0 {
		return ErrEmptySeries
	}
	for i, c := range s.Candles {
		if c.Close <= 0 {
			return ErrNonPositivePrice
		}
		if i > 0 && !c.Date.After(s.Candles[i-1].Date) {
			return ErrUnorderedDates
		}
	}
	return nil
}

// Len returns the number of daily observations.
func (s *CandleSeries) Len() int {
	return len(s.Candles)
}

// Closes returns the close prices in date order.
func (s *CandleSeries) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Dates returns the observation dates in order.
func (s *CandleSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Candles))
	for i, c := range s.Candles {
		dates[i] = c.Date
	}
	return dates
}

// Slice returns a sub-series over [from, to] (inclusive by date).
// The returned series shares the underlying candles.
func (s *CandleSeries) Slice(from, to time.Time) *CandleSeries {
	var candles []*Candle
	for _, c := range s.Candles {
		if c.Date.Before(from) || c.Date.After(to) {
			continue
		}
		candles = append(candles, c)
	}
	return &CandleSeries{Symbol: s.Symbol, Candles: candles}
}

// EquityPoint is one daily mark-to-market portfolio valuation.
type EquityPoint struct {
	Date  time.Time
	Value float64
}
