package api

// Response represents the top-level Al Adhan timings response.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

// Data holds the prayer timings and request metadata.
type Data struct {
	// Timings maps event names ("Fajr", "Sunrise", "Dhuhr", ...) to HH:MM
	// strings. The set of keys is not fixed, so callers pick what they need.
	Timings map[string]string `json:"timings"`
	Meta    Meta              `json:"meta"`
}

// Meta contains request metadata returned by the API.
type Meta struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Method    MethodInfo `json:"method"`
}

// MethodInfo identifies the calculation method used.
type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
