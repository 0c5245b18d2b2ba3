// Package dashboard holds the fixed display data shown around the live
// simulator panels. None of it is computed; the alert is a static label.
package dashboard

import "fmt"

type Band string

const (
	BandGood     Band = "good"
	BandNominal  Band = "nominal"
	BandWarning  Band = "warning"
	BandCritical Band = "critical"
)

type LadleCard struct {
	ID          string `json:"id"`
	Location    string `json:"location"`
	Temperature int    `json:"temperatureC"`
	Health      int    `json:"health"`
	HealthBand  Band   `json:"healthBand"`
}

type TrackerRow struct {
	LadleID     string `json:"ladleId"`
	Location    string `json:"location"`
	Temperature int    `json:"temperatureC"`
}

type PredictiveAlert struct {
	LadleID    string `json:"ladleId"`
	RiskLevel  int    `json:"riskLevel"`
	RiskBand   Band   `json:"riskBand"`
	Location   string `json:"location"`
	Prediction string `json:"prediction"`
}

type Header struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	AlertCount int    `json:"alertCount"`
	Status     string `json:"status"`
}

type Board struct {
	Header  Header            `json:"header"`
	Cards   []LadleCard       `json:"cards"`
	Tracker []TrackerRow      `json:"tracker"`
	Alerts  []PredictiveAlert `json:"alerts"`
}

// HealthBand classifies refractory health: above 80 is good, above 50 a
// warning, anything else critical.
func HealthBand(health int) Band {
	switch {
	case health > 80:
		return BandGood
	case health > 50:
		return BandWarning
	default:
		return BandCritical
	}
}

// RiskBand classifies a 0-100 risk level.
func RiskBand(risk int) Band {
	switch {
	case risk > 75:
		return BandCritical
	case risk > 50:
		return BandWarning
	default:
		return BandNominal
	}
}

func card(id, location string, temp, health int) LadleCard {
	return LadleCard{
		ID:          id,
		Location:    location,
		Temperature: temp,
		Health:      health,
		HealthBand:  HealthBand(health),
	}
}

// Default returns the board the HUD ships with.
func Default() Board {
	tracker := make([]TrackerRow, 5)
	for i := range tracker {
		tracker[i] = TrackerRow{
			LadleID:     fmt.Sprintf("LD-%02d", i+1),
			Location:    fmt.Sprintf("SLBC-%d", i+1),
			Temperature: 1450,
		}
	}

	return Board{
		Header: Header{
			Title:      "Molten Metal HUD",
			Subtitle:   "Steel Plant Command Center",
			AlertCount: 3,
			Status:     "System Nominal",
		},
		Cards: []LadleCard{
			card("SL-124", "SLBC-1", 1450, 92),
			card("SP-124", "SLBC-4", 1380, 78),
		},
		Tracker: tracker,
		Alerts: []PredictiveAlert{
			{
				LadleID:    "LD-12",
				RiskLevel:  78,
				RiskBand:   RiskBand(78),
				Location:   "SLBC-4",
				Prediction: "High risk of refractory failure within next 3 heats. Schedule maintenance.",
			},
		},
	}
}
