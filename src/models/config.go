package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	Storage  MStorageConfig `yaml:"storage"`
	Market   MMarketConfig  `yaml:"market"`
	Alpaca   MAlpacaConfig  `yaml:"alpaca"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MMarketConfig struct {
	Timezone            string  `yaml:"timezone"`
	OpenTime            string  `yaml:"open_time"`  // "HH:MM" local
	CloseTime           string  `yaml:"close_time"` // "HH:MM" local
	TickIntervalSeconds float64 `yaml:"tick_interval_seconds"`
	DefaultStartDate    string  `yaml:"default_start_date"` // "YYYY-MM-DD"
	UseExchangeCalendar bool    `yaml:"use_exchange_calendar"`
}

type MAlpacaConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}
