package stats

import "time"

// EndpointHit is one recorded request against a tracked URI.
type EndpointHit struct {
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"-"`
}

// ViewStats is an aggregated hit count for one app/uri pair.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}
