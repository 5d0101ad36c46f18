// Package config loads the controller configuration. Tuning values live in a
// YAML file; secrets (WiFi password, API tokens) come from the environment so
// they never land in the config file or the repo.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML fields written as duration strings
// like "500ms" or "15s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full controller configuration. Fields omitted from the YAML
// file keep the defaults, so partial configs are safe.
type Config struct {
	DeviceID string `yaml:"device_id"`

	WiFi struct {
		SSID            string   `yaml:"ssid"`
		Interface       string   `yaml:"interface"`
		MaxAttempts     int      `yaml:"max_attempts"`
		AttemptInterval Duration `yaml:"attempt_interval"`
	} `yaml:"wifi"`

	Thresholds struct {
		Accel float64 `yaml:"accel"`
		Gyro  float64 `yaml:"gyro"`
		Sound uint16  `yaml:"sound"`
	} `yaml:"thresholds"`

	GPS struct {
		Port    string   `yaml:"port"`
		Timeout Duration `yaml:"timeout"`
	} `yaml:"gps"`

	I2C struct {
		Device  string `yaml:"device"`
		Address byte   `yaml:"address"`
	} `yaml:"i2c"`

	Audio struct {
		Path string `yaml:"path"`
	} `yaml:"audio"`

	Buzzer struct {
		GPIOPath string   `yaml:"gpio_path"`
		Pulse    Duration `yaml:"pulse"`
	} `yaml:"buzzer"`

	Loop struct {
		CycleInterval Duration `yaml:"cycle_interval"`
		Cooldown      Duration `yaml:"cooldown"`
	} `yaml:"loop"`

	Telegram struct {
		ChatID int64 `yaml:"chat_id"`
	} `yaml:"telegram"`

	MQTT struct {
		Broker   string `yaml:"broker"`
		ClientID string `yaml:"client_id"`
		Topic    string `yaml:"topic"`
		QoS      byte   `yaml:"qos"`
	} `yaml:"mqtt"`

	Influx struct {
		URL    string `yaml:"url"`
		Org    string `yaml:"org"`
		Bucket string `yaml:"bucket"`
	} `yaml:"influx"`

	TimeSync struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"timesync"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the canonical defaults for the controller.
func Default() *Config {
	cfg := &Config{DeviceID: "sentinel"}

	cfg.WiFi.Interface = "wlan0"
	cfg.WiFi.MaxAttempts = 20
	cfg.WiFi.AttemptInterval = Duration(500 * time.Millisecond)

	cfg.Thresholds.Accel = 1
	cfg.Thresholds.Gyro = 1
	cfg.Thresholds.Sound = 1000

	cfg.GPS.Port = "/dev/ttyS0"
	cfg.GPS.Timeout = Duration(10 * time.Second)

	cfg.I2C.Device = "/dev/i2c-0"
	cfg.I2C.Address = 0x68

	cfg.Audio.Path = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"

	cfg.Buzzer.GPIOPath = "/sys/class/gpio/gpio15/value"
	cfg.Buzzer.Pulse = Duration(4 * time.Second)

	cfg.Loop.CycleInterval = Duration(2 * time.Second)
	cfg.Loop.Cooldown = Duration(15 * time.Second)

	cfg.MQTT.ClientID = "sentinel"
	cfg.MQTT.Topic = "sentinel/alerts"
	cfg.MQTT.QoS = 1

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"

	return cfg
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that would stall or disable the loop.
func (c *Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device_id must not be empty")
	}
	if c.WiFi.SSID == "" {
		return fmt.Errorf("wifi.ssid is required")
	}
	if c.WiFi.MaxAttempts <= 0 {
		return fmt.Errorf("wifi.max_attempts must be positive, got %d", c.WiFi.MaxAttempts)
	}
	if c.WiFi.AttemptInterval <= 0 {
		return fmt.Errorf("wifi.attempt_interval must be positive")
	}
	if c.Thresholds.Accel <= 0 || c.Thresholds.Gyro <= 0 {
		return fmt.Errorf("thresholds must be positive")
	}
	if c.GPS.Timeout <= 0 {
		return fmt.Errorf("gps.timeout must be positive")
	}
	if c.Buzzer.Pulse <= 0 {
		return fmt.Errorf("buzzer.pulse must be positive")
	}
	if c.Loop.CycleInterval <= 0 || c.Loop.Cooldown <= 0 {
		return fmt.Errorf("loop intervals must be positive")
	}
	return nil
}

// Secrets are credentials sourced from the environment.
type Secrets struct {
	WiFiPassword  string
	TelegramToken string
	InfluxToken   string
	MQTTUsername  string
	MQTTPassword  string
}

// LoadSecrets reads the credential environment variables.
func LoadSecrets() Secrets {
	return Secrets{
		WiFiPassword:  os.Getenv("WIFI_PASSWORD"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		InfluxToken:   os.Getenv("INFLUX_TOKEN"),
		MQTTUsername:  os.Getenv("MQTT_USERNAME"),
		MQTTPassword:  os.Getenv("MQTT_PASSWORD"),
	}
}
