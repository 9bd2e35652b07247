package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the complete application configuration.
type Config struct {
	Telescope TelescopeConfig `json:"telescope"`
	ADSB      ADSBConfig      `json:"adsb"`
	Observer  ObserverConfig  `json:"observer"`
}

// TelescopeConfig contains ASCOM Alpaca telescope settings.
type TelescopeConfig struct {
	// BaseURL is the Alpaca server address (e.g., "http://192.168.1.100:11111")
	BaseURL string `json:"base_url"`

	// DeviceNumber is the Alpaca device number (typically 0)
	DeviceNumber int `json:"device_number"`

	// MountType is either "altaz" or "equatorial"
	MountType string `json:"mount_type"`

	// SlewRate is the slew speed in degrees per second
	SlewRate float64 `json:"slew_rate"`

	// TrackingEnabled determines if telescope tracking should be enabled
	TrackingEnabled bool `json:"tracking_enabled"`

	// Model is the telescope model (e.g., "seestar-s30", "seestar-s50", "generic")
	// Used to determine telescope-specific capabilities
	Model string `json:"model"`

	// ImagingMode determines the operational mode: "astronomical" or "terrestrial"
	// astronomical: Traditional sky viewing with atmospheric refraction limits (15-20° minimum)
	// terrestrial: Earth-based targets (aircraft, birds, landscapes) - can point near/below horizon (0° minimum)
	ImagingMode string `json:"imaging_mode"`

	// SupportsMeridianFlip indicates if the telescope requires meridian flips
	// Seestar fork mounts: false (360° rotation, no flip needed)
	// German Equatorial Mounts: true (flip required to avoid pier collision)
	SupportsMeridianFlip bool `json:"supports_meridian_flip"`

	// MaxAltitude is the maximum safe tracking altitude in degrees
	// Alt-Az mode (Seestar): 80° (field rotation limit)
	// Equatorial mode (Seestar with wedge): 85° (physical/stability limit)
	// Generic telescopes: 85-88°
	MaxAltitude float64 `json:"max_altitude"`

	// MinAltitude is the minimum tracking altitude in degrees
	// Astronomical mode: 15-20° (atmospheric refraction)
	// Terrestrial mode: 0° or negative for below-horizon targets
	// Set to 0 for auto-detection based on imaging_mode
	MinAltitude float64 `json:"min_altitude"`
}

// ADSBConfig contains ADS-B data source configuration.
type ADSBConfig struct {
	// Sources is a list of configured ADS-B data sources.
	// Multiple sources can be configured for redundancy.
	Sources []ADSBSource `json:"sources"`

	// SearchRadiusNM is the default search radius in nautical miles.
	SearchRadiusNM float64 `json:"search_radius_nm"`

	// UpdateIntervalSeconds is how often to refresh aircraft data.
	UpdateIntervalSeconds int `json:"update_interval_seconds"`
}

// ADSBSource represents a single ADS-B data source configuration.
type ADSBSource struct {
	// Name is a friendly name for this source
	Name string `json:"name"`

	// Type is the source type: "airplanes.live", "adsbexchange", "local", etc.
	Type string `json:"type"`

	// Enabled determines if this source should be used
	Enabled bool `json:"enabled"`

	// BaseURL is the API base URL for online sources
	BaseURL string `json:"base_url"`

	// APIKey is the API key for services that require authentication
	APIKey string `json:"api_key,omitempty"`

	// LocalHost is the hostname for local SDR receivers
	LocalHost string `json:"local_host,omitempty"`

	// LocalPort is the port for local SDR receivers
	LocalPort int `json:"local_port,omitempty"`

	// RateLimitSeconds is the minimum time between API calls in seconds
	// 0 = no rate limit, >0 = enforce minimum delay between calls
	// airplanes.live: recommend 3 seconds to avoid 429 errors
	RateLimitSeconds float64 `json:"rate_limit_seconds"`
}

// ObserverConfig contains the observer's geographic location.
// This is critical for accurate coordinate transformations and telescope control.
type ObserverConfig struct {
	// Name is a friendly identifier for this observer location
	Name string `json:"name"`

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude"`

	// Elevation in meters above sea level
	Elevation float64 `json:"elevation"`

	// TimeZone is the IANA timezone name (e.g., "America/New_York")
	TimeZone string `json:"timezone"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	return &cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Telescope: TelescopeConfig{
			BaseURL:              "http://localhost:11111",
			DeviceNumber:         0,
			MountType:            "altaz",       // "altaz" or "equatorial" (when using EQ wedge)
			SlewRate:             1.0,
			TrackingEnabled:      true,
			Model:                "seestar-s50",
			ImagingMode:          "terrestrial", // "astronomical" or "terrestrial"
			SupportsMeridianFlip: false,         // Seestar: false (360° rotation), GEM: true
			MaxAltitude:          0.0,           // 0 = auto-detect based on model+mount_type
			MinAltitude:          0.0,           // 0 = auto-detect based on imaging_mode
		},
		ADSB: ADSBConfig{
			Sources: []ADSBSource{
				{
					Name:             "airplanes.live",
					Type:             "airplanes.live",
					Enabled:          true,
					BaseURL:          "https://api.airplanes.live/v2",
					RateLimitSeconds: 3.0,
				},
			},
			SearchRadiusNM:        50.0,
			UpdateIntervalSeconds: 2,
		},
		Observer: ObserverConfig{
			Name:      "Primary Observer",
			Latitude:  0.0,
			Longitude: 0.0,
			Elevation: 0.0,
			TimeZone:  "UTC",
		},
	}
}

// GetAltitudeLimits returns the appropriate altitude limits based on telescope model, mount type, and imaging mode.
// This automatically adjusts limits for Seestar Alt-Az mode field rotation issues and terrestrial vs astronomical use.
func (cfg *TelescopeConfig) GetAltitudeLimits() (minAlt, maxAlt float64) {
	// If explicit limits are set in config, use those
	if cfg.MaxAltitude > 0 {
		maxAlt = cfg.MaxAltitude
	} else {
		// Auto-detect max altitude based on model and mount type
		if cfg.Model == "seestar-s30" || cfg.Model == "seestar-s50" {
			if cfg.MountType == "altaz" {
				// Alt-Az mode: field rotation limits apply
				maxAlt = 80.0
			} else {
				// Equatorial mode (with wedge): field rotation eliminated
				maxAlt = 85.0
			}
		} else {
			// Generic telescope
			maxAlt = 85.0
		}
	}

	// Determine minimum altitude based on imaging mode
	if cfg.MinAltitude != 0 {
		// Use explicit config value (can be negative for below-horizon)
		minAlt = cfg.MinAltitude
	} else {
		// Auto-detect based on imaging mode
		if cfg.ImagingMode == "terrestrial" {
			// Terrestrial mode: can point at or below horizon
			minAlt = 0.0
		} else {
			// Astronomical mode (default): atmospheric refraction and practical limits
			if cfg.Model == "seestar-s30" || cfg.Model == "seestar-s50" {
				if cfg.MountType == "altaz" {
					minAlt = 20.0 // Alt-Az: practical viewing range
				} else {
					minAlt = 15.0 // Equatorial: atmospheric limit
				}
			} else {
				minAlt = 15.0 // Generic telescope
			}
		}
	}

	return minAlt, maxAlt
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if telescopeURL := os.Getenv("ADS_BSCOPE_TELESCOPE_URL"); telescopeURL != "" {
		c.Telescope.BaseURL = telescopeURL
	}
	if apiKey := os.Getenv("ADS_BSCOPE_ADSB_API_KEY"); apiKey != "" {
		for i := range c.ADSB.Sources {
			c.ADSB.Sources[i].APIKey = apiKey
		}
	}
}
