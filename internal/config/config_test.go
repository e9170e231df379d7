package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// tempConfigPath returns a path to a config file inside a temp directory.
func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- Defaults ---

func TestDefaults(t *testing.T) {
	d := Defaults()

	if d.Method == nil {
		t.Fatal("Defaults().Method should not be nil")
	}
	if *d.Method != DefaultMethod {
		t.Errorf("Defaults().Method = %d, want %d", *d.Method, DefaultMethod)
	}
	if d.TimeFormat != "24h" {
		t.Errorf("Defaults().TimeFormat = %q, want %q", d.TimeFormat, "24h")
	}
	if d.ListenAddr != DefaultListenAddr {
		t.Errorf("Defaults().ListenAddr = %q, want %q", d.ListenAddr, DefaultListenAddr)
	}

	// Location is auto-detected when unset.
	if d.City != "" {
		t.Errorf("Defaults().City = %q, want empty", d.City)
	}
	if d.HasCoordinates() {
		lat, lon := d.Coordinates()
		t.Errorf("Defaults() should have no coordinates, got %f,%f", lat, lon)
	}
}

// --- Dir and Path with XDG ---

func TestDir_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	want := filepath.Join("/tmp/xdg-test", "salah-times")
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestDir_FallbackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".config", "salah-times")
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestPath_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	p, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}

	want := filepath.Join("/tmp/xdg-test", "salah-times", "config.json")
	if p != want {
		t.Errorf("Path() = %q, want %q", p, want)
	}
}

// --- LoadFrom ---

func TestLoadFrom_NonExistentFile(t *testing.T) {
	cfg, err := LoadFrom("/no/such/file.json")
	if err != nil {
		t.Fatalf("LoadFrom non-existent should not error, got: %v", err)
	}
	// Should return an empty Config.
	if cfg.City != "" || cfg.HasCoordinates() {
		t.Error("LoadFrom non-existent should return empty config")
	}
	if cfg.Method != nil {
		t.Error("LoadFrom non-existent should have nil Method")
	}
}

func TestLoadFrom_ValidJSON(t *testing.T) {
	path := tempConfigPath(t)
	writeFile(t, path, `{
  "city": "Riyadh",
  "latitude": 24.7136,
  "longitude": 46.6753,
  "method": 4,
  "time_format": "12h",
  "log_level": "debug"
}`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}

	if cfg.City != "Riyadh" {
		t.Errorf("City = %q, want %q", cfg.City, "Riyadh")
	}
	if lat, lon := cfg.Coordinates(); lat != 24.7136 || lon != 46.6753 {
		t.Errorf("coordinates = %f,%f, want 24.7136,46.6753", lat, lon)
	}
	if cfg.Method == nil || *cfg.Method != 4 {
		t.Errorf("Method = %v, want 4", cfg.Method)
	}
	if cfg.TimeFormat != "12h" {
		t.Errorf("TimeFormat = %q, want %q", cfg.TimeFormat, "12h")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := tempConfigPath(t)
	writeFile(t, path, "{bad json")

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom with invalid JSON should error")
	}
}

func TestLoadFrom_InvalidValue(t *testing.T) {
	path := tempConfigPath(t)
	writeFile(t, path, `{"method": 99}`)

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom with out-of-range method should error")
	}
}

func TestLoadFrom_EmptyJSON(t *testing.T) {
	path := tempConfigPath(t)
	writeFile(t, path, "{}")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.City != "" {
		t.Error("LoadFrom empty JSON should return empty config")
	}
	if cfg.Method != nil {
		t.Error("LoadFrom empty JSON should have nil Method")
	}
}

func TestLoadFrom_MethodZero(t *testing.T) {
	// Method 0 (Jafari) is valid. Ensure it round-trips correctly and
	// is distinguishable from "not set" (nil).
	path := tempConfigPath(t)
	writeFile(t, path, `{"method": 0}`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.Method == nil {
		t.Fatal("Method should not be nil for method=0")
	}
	if *cfg.Method != 0 {
		t.Errorf("Method = %d, want 0", *cfg.Method)
	}
}

// --- Environment overrides ---

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := tempConfigPath(t)
	writeFile(t, path, `{"city": "London", "method": 2}`)
	t.Setenv("SALAH_TIMES_METHOD", "3")
	t.Setenv("SALAH_TIMES_LISTEN_ADDR", "0.0.0.0:9000")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.Method == nil || *cfg.Method != 3 {
		t.Errorf("Method = %v, want 3 from environment", cfg.Method)
	}
	if cfg.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("ListenAddr = %q, want env value", cfg.ListenAddr)
	}
	if cfg.City != "London" {
		t.Errorf("City = %q, want file value", cfg.City)
	}
}

func TestLoadFrom_EnvWithoutFile(t *testing.T) {
	t.Setenv("SALAH_TIMES_LATITUDE", "21.4225")

	cfg, err := LoadFrom("/no/such/file.json")
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if lat, _ := cfg.Coordinates(); lat != 21.4225 {
		t.Errorf("Latitude = %f, want 21.4225", lat)
	}
}

func TestLoadFrom_InvalidEnvValue(t *testing.T) {
	t.Setenv("SALAH_TIMES_TIME_FORMAT", "48h")

	if _, err := LoadFrom("/no/such/file.json"); err == nil {
		t.Fatal("invalid environment value should error")
	}
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	path := tempConfigPath(t)
	writeFile(t, path, `{"method": 2}`)
	t.Setenv("SALAH_TIMES_METHOD", "5")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Method == nil || *cfg.Method != 2 {
		t.Errorf("Method = %v, want 2 from file only", cfg.Method)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "SALAH_TIMES_CITY=Medina\n")
	t.Setenv("SALAH_TIMES_CITY", "")
	os.Unsetenv("SALAH_TIMES_CITY")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	if got := os.Getenv("SALAH_TIMES_CITY"); got != "Medina" {
		t.Errorf("SALAH_TIMES_CITY = %q, want Medina", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored, got: %v", err)
	}
}

// --- SaveTo ---

func TestSaveTo_CreatesDirectoryAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	method := 2
	cfg := &Config{
		City:   "London",
		Method: &method,
	}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	// Verify file exists and is valid JSON.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("saved file has invalid JSON: %v", err)
	}
	if loaded.City != "London" {
		t.Errorf("loaded City = %q, want %q", loaded.City, "London")
	}
	if loaded.Method == nil || *loaded.Method != 2 {
		t.Errorf("loaded Method = %v, want 2", loaded.Method)
	}
}

func TestSaveTo_TrailingNewline(t *testing.T) {
	path := tempConfigPath(t)
	cfg := &Config{City: "Test"}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Error("saved file should end with a newline")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := tempConfigPath(t)

	method := 0 // Jafari -- tests zero value round-trip.
	lat, lon := 24.7136, 46.6753
	original := &Config{
		City:        "Riyadh",
		Latitude:    &lat,
		Longitude:   &lon,
		Method:      &method,
		TimeFormat:  "12h",
		CacheFile:   "/tmp/cache.json",
		StateFile:   "/tmp/state.toml",
		ListenAddr:  "127.0.0.1:9000",
		CORSOrigins: "http://localhost:1420",
		LogLevel:    "info",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	for _, key := range ValidKeys {
		want, _ := original.Get(key)
		got, _ := loaded.Get(key)
		if got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

// --- ResetAt ---

func TestResetAt_DeletesFile(t *testing.T) {
	path := tempConfigPath(t)

	// Create a config file first.
	cfg := &Config{City: "London"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	if err := ResetAt(path); err != nil {
		t.Fatalf("ResetAt error: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("ResetAt should have deleted the file")
	}
}

func TestResetAt_NonExistentFile(t *testing.T) {
	// Resetting a non-existent file should not error.
	err := ResetAt("/no/such/file.json")
	if err != nil {
		t.Errorf("ResetAt on non-existent file should not error, got: %v", err)
	}
}

// --- Set ---

func TestSet_Latitude(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    float64
		wantErr bool
	}{
		{"valid positive", "51.5074", 51.5074, false},
		{"valid negative", "-33.8688", -33.8688, false},
		{"zero", "0", 0, false},
		{"boundary 90", "90", 90, false},
		{"boundary -90", "-90", -90, false},
		{"too high", "91", 0, true},
		{"too low", "-91", 0, true},
		{"not a number", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set("latitude", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(latitude, %q) error = %v, wantErr = %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && (cfg.Latitude == nil || *cfg.Latitude != tt.want) {
				t.Errorf("Latitude = %v, want %f", cfg.Latitude, tt.want)
			}
		})
	}
}

func TestSet_Longitude(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    float64
		wantErr bool
	}{
		{"valid positive", "46.6753", 46.6753, false},
		{"valid negative", "-73.5674", -73.5674, false},
		{"boundary 180", "180", 180, false},
		{"boundary -180", "-180", -180, false},
		{"too high", "181", 0, true},
		{"too low", "-181", 0, true},
		{"not a number", "xyz", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set("longitude", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(longitude, %q) error = %v, wantErr = %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && (cfg.Longitude == nil || *cfg.Longitude != tt.want) {
				t.Errorf("Longitude = %v, want %f", cfg.Longitude, tt.want)
			}
		})
	}
}

func TestCoordinates_ZeroIsConfigured(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{}
	if err := cfg.Set("latitude", "0"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("longitude", "0"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if !loaded.HasCoordinates() {
		t.Fatal("0,0 should count as configured coordinates")
	}
	if lat, lon := loaded.Coordinates(); lat != 0 || lon != 0 {
		t.Errorf("Coordinates() = %f,%f, want 0,0", lat, lon)
	}
	if got, _ := loaded.Get("latitude"); got != "0" {
		t.Errorf("Get(latitude) = %q, want %q", got, "0")
	}

	loaded.ClearCoordinates()
	if loaded.HasCoordinates() {
		t.Error("ClearCoordinates should unset both coordinates")
	}
	if got, _ := loaded.Get("longitude"); got != "" {
		t.Errorf("Get(longitude) after clear = %q, want empty", got)
	}
}

func TestSet_Method(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{"valid zero (Jafari)", "0", 0, false},
		{"valid 4", "4", 4, false},
		{"valid 23", "23", 23, false},
		{"too high", "24", 0, true},
		{"negative", "-1", 0, true},
		{"not a number", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set("method", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(method, %q) error = %v, wantErr = %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr {
				if cfg.Method == nil {
					t.Fatal("Method should not be nil")
				}
				if *cfg.Method != tt.want {
					t.Errorf("Method = %d, want %d", *cfg.Method, tt.want)
				}
			}
		})
	}
}

func TestSet_Validation(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"time_format", "12h", false},
		{"time_format", "24h", false},
		{"time_format", "invalid", true},
		{"time_format", "", true},
		{"listen_addr", "127.0.0.1:8765", false},
		{"listen_addr", ":9000", false},
		{"listen_addr", "localhost", true},
		{"cors_origins", "*", false},
		{"cors_origins", "http://a, http://b", false},
		{"cors_origins", "http://a,,http://b", true},
		{"log_level", "debug", false},
		{"log_level", "WARN", false},
		{"log_level", "chatty", true},
		{"unknown_key", "value", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(%s, %q) error = %v, wantErr = %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

// --- Get ---

func TestGet_EmptyConfig(t *testing.T) {
	cfg := &Config{}

	// All values should be empty strings for an empty config.
	for _, key := range ValidKeys {
		got, err := cfg.Get(key)
		if err != nil {
			t.Errorf("Get(%q) error: %v", key, err)
		}
		if got != "" {
			t.Errorf("Get(%q) = %q, want empty for empty config", key, got)
		}
	}
}

func TestGet_UnknownKey(t *testing.T) {
	cfg := &Config{}
	if _, err := cfg.Get("unknown_key"); err == nil {
		t.Fatal("Get with unknown key should error")
	}
}

func TestGet_MethodZero(t *testing.T) {
	method := 0
	cfg := &Config{Method: &method}

	got, err := cfg.Get("method")
	if err != nil {
		t.Fatal(err)
	}
	if got != "0" {
		t.Errorf("Get(method) = %q, want %q", got, "0")
	}
}

// --- Accessors ---

func TestMethodOrDefault(t *testing.T) {
	four, zero := 4, 0
	tests := []struct {
		name   string
		method *int
		want   int
	}{
		{"set", &four, 4},
		{"nil", nil, 2},
		{"zero (Jafari)", &zero, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Method: tt.method}
			if got := cfg.MethodOrDefault(2); got != tt.want {
				t.Errorf("MethodOrDefault = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestListenAddrOrDefault(t *testing.T) {
	if got := (&Config{}).ListenAddrOrDefault(); got != DefaultListenAddr {
		t.Errorf("ListenAddrOrDefault() = %q, want %q", got, DefaultListenAddr)
	}
	if got := (&Config{ListenAddr: ":9000"}).ListenAddrOrDefault(); got != ":9000" {
		t.Errorf("ListenAddrOrDefault() = %q, want :9000", got)
	}
}

func TestOrigins(t *testing.T) {
	if got := (&Config{}).Origins(); len(got) != 1 || got[0] != "*" {
		t.Errorf("Origins() = %v, want [*]", got)
	}
	got := (&Config{CORSOrigins: "http://a, http://b"}).Origins()
	if len(got) != 2 || got[1] != "http://b" {
		t.Errorf("Origins() = %v, want trimmed pair", got)
	}
}

// --- OmitEmpty JSON behavior ---

func TestConfig_OmitEmpty_JSON(t *testing.T) {
	// An empty config should produce minimal JSON.
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "{}" {
		t.Errorf("empty config JSON = %s, want {}", got)
	}
}

func TestConfig_OmitEmpty_MethodZero(t *testing.T) {
	// Method 0 should be included in JSON (not omitted).
	method := 0
	data, err := json.Marshal(&Config{Method: &method})
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["method"]; !ok {
		t.Error("method=0 should be present in JSON, but was omitted")
	}
}

// --- Full integration: Set -> SaveTo -> LoadFrom -> Get ---

func TestSetSaveLoadGet_Integration(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{}
	cfg.Set("city", "London")
	cfg.Set("method", "3")
	cfg.Set("time_format", "12h")

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		key, want string
	}{
		{"city", "London"},
		{"method", "3"},
		{"time_format", "12h"},
	}

	for _, c := range checks {
		got, _ := loaded.Get(c.key)
		if got != c.want {
			t.Errorf("After save/load: Get(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}
