package domain

import "time"

// LedgerTimeLayout is the display format used for ledger timestamps.
const LedgerTimeLayout = "2006-01-02 15:04:05"

// EnergySample is one point of the energy-usage graph.
type EnergySample struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// LadleStatus tags what a ladle is currently doing on the plant floor.
type LadleStatus string

const (
	StatusCharging  LadleStatus = "charging"
	StatusTransport LadleStatus = "transport"
	StatusPouring   LadleStatus = "pouring"
)

// Position is a point on the plant map, in percent of width/height.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LadleIdentity is an immutable catalog entry.
type LadleIdentity struct {
	ID       string      `json:"id"`
	Position Position    `json:"position"`
	Status   LadleStatus `json:"status"`
	Route    []Position  `json:"route,omitempty"`
}

// LedgerEntry is a synthetic event record. Hash is a display token only.
type LedgerEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	LadleID   string `json:"ladleId"`
	Operation string `json:"operation"`
	Hash      string `json:"hash"`
	Message   string `json:"message"`
}

// TickRecord describes what one simulator tick produced.
type TickRecord struct {
	Tick   uint64       `json:"tick"`
	At     time.Time    `json:"at"`
	Energy EnergySample `json:"energy"`
	Entry  LedgerEntry  `json:"entry"`
}
