package models

// Status is the diagnostic snapshot served by GET /status.
type Status struct {
	Status       string  `json:"status"`       // always "online"
	Uptime       float64 `json:"uptime"`       // seconds since process start
	LastReading  Reading `json:"lastReading"`  // current reading at call time
	ReadingCount int     `json:"readingCount"` // entries held in history
	MemoryUsed   string  `json:"memoryUsed"`   // e.g. "12 MB"
}
