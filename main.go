// Sentinel is a bike-mounted fall detection beacon: it fuses accelerometer,
// gyroscope, and microphone readings each tick and, on a detected fall, sends
// a located and timestamped alert while sounding the local alarm.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ridewatch/sentinel/internal/alert"
	"github.com/ridewatch/sentinel/internal/audio"
	"github.com/ridewatch/sentinel/internal/buzzer"
	"github.com/ridewatch/sentinel/internal/config"
	"github.com/ridewatch/sentinel/internal/controller"
	"github.com/ridewatch/sentinel/internal/fusion"
	"github.com/ridewatch/sentinel/internal/gps"
	"github.com/ridewatch/sentinel/internal/httputil"
	"github.com/ridewatch/sentinel/internal/imu"
	"github.com/ridewatch/sentinel/internal/telemetry"
	"github.com/ridewatch/sentinel/internal/timesync"
	"github.com/ridewatch/sentinel/internal/timeutil"
	"github.com/ridewatch/sentinel/internal/version"
	"github.com/ridewatch/sentinel/internal/wifi"
)

var (
	configPath = flag.String("config", "sentinel.yaml", "Path to the YAML config file")
	devMode    = flag.Bool("dev", false, "Run against mock hardware")
	fixtures   = flag.String("fixtures", "fixtures.nmea", "NMEA fixture file for dev mode")
)

func main() {
	flag.Parse()

	// Secrets may come from a local .env during development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	secrets := config.LoadSecrets()

	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, secrets, logger); err != nil && err != context.Canceled {
		logger.Fatal("controller terminated", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, secrets config.Secrets, logger *zap.Logger) error {
	clock := timeutil.RealClock{}

	hw, err := buildHardware(cfg, logger)
	if err != nil {
		return err
	}
	defer hw.close()

	motion, err := imu.NewMPU6050(hw.bus, cfg.I2C.Address, logger.Named("imu"))
	if err != nil {
		// Degraded sensor reads zeros; the loop keeps cycling.
		logger.Warn("motion sensor unavailable", zap.Error(err))
	}

	receiver := gps.NewReceiver(hw.gpsPort, logger.Named("gps"))
	go func() {
		if err := receiver.Start(ctx); err != nil && err != context.Canceled {
			logger.Warn("gps reader stopped", zap.Error(err))
		}
	}()

	manager := wifi.NewManager(hw.station, cfg.WiFi.SSID, secrets.WiFiPassword, wifi.Options{
		MaxAttempts: cfg.WiFi.MaxAttempts,
		Interval:    cfg.WiFi.AttemptInterval.Std(),
	}, clock, logger.Named("wifi"))

	timeSource := timesync.NewSource(httputil.NewStandardClient(nil), clock, logger.Named("timesync"), cfg.TimeSync.Endpoint)

	var notifiers []alert.Notifier
	if secrets.TelegramToken != "" {
		notifiers = append(notifiers, alert.NewTelegramNotifier("", secrets.TelegramToken, cfg.Telegram.ChatID, logger.Named("telegram")))
	}
	if cfg.MQTT.Broker != "" {
		mq, err := alert.NewMQTTNotifier(alert.MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: secrets.MQTTUsername,
			Password: secrets.MQTTPassword,
			Topic:    cfg.MQTT.Topic,
			QoS:      cfg.MQTT.QoS,
		}, logger.Named("mqtt"))
		if err != nil {
			logger.Warn("MQTT notifier unavailable", zap.Error(err))
		} else {
			defer mq.Close()
			notifiers = append(notifiers, mq)
		}
	}
	if len(notifiers) == 0 {
		logger.Warn("no notifiers configured, alerts will only sound the local alarm")
	}

	var recorder telemetry.Recorder
	if cfg.Influx.URL != "" {
		influx := telemetry.NewInfluxRecorder(cfg.Influx.URL, secrets.InfluxToken, cfg.Influx.Org, cfg.Influx.Bucket, cfg.DeviceID, logger.Named("telemetry"))
		defer influx.Close()
		recorder = influx
	}

	alarm := buzzer.New(hw.pin, cfg.Buzzer.Pulse.Std(), clock, logger.Named("buzzer"))
	dispatcher := alert.NewDispatcher(receiver, timeSource, notifiers, alarm, recorder, cfg.GPS.Timeout.Std(), logger.Named("alert"))

	ctrl := controller.New(
		manager,
		motion,
		hw.audio,
		fusion.NewEngine(fusion.Thresholds{
			Accel: cfg.Thresholds.Accel,
			Gyro:  cfg.Thresholds.Gyro,
			Sound: cfg.Thresholds.Sound,
		}),
		dispatcher,
		timeSource,
		recorder,
		clock,
		logger.Named("controller"),
		controller.Intervals{
			Cycle:    cfg.Loop.CycleInterval.Std(),
			Cooldown: cfg.Loop.Cooldown.Std(),
		},
	)

	logger.Info("sentinel starting",
		zap.String("device_id", cfg.DeviceID),
		zap.String("version", version.Version),
		zap.String("git_sha", version.GitSHA),
		zap.Bool("dev", *devMode),
	)
	return ctrl.Run(ctx)
}

// hardware bundles the platform capabilities: real devices in production,
// mocks in dev mode.
type hardware struct {
	bus     imu.I2CBus
	gpsPort gps.SerialPorter
	station wifi.Station
	pin     buzzer.OutputPin
	audio   audio.LevelReader
}

func (h *hardware) close() {
	h.bus.Close()
	h.gpsPort.Close()
}

func buildHardware(cfg *config.Config, logger *zap.Logger) (*hardware, error) {
	if *devMode {
		data, err := os.ReadFile(*fixtures)
		if err != nil {
			logger.Warn("no GPS fixtures, dev receiver will be silent", zap.Error(err))
		}
		return &hardware{
			bus:     imu.NewMockBus(),
			gpsPort: &gps.MockSerialPort{ReadData: data},
			station: &wifi.MockStation{},
			pin:     &buzzer.MockPin{},
			audio:   &audio.MockReader{},
		}, nil
	}

	bus, err := imu.OpenDevBus(cfg.I2C.Device)
	if err != nil {
		return nil, fmt.Errorf("opening i2c bus: %w", err)
	}

	port, err := gps.OpenPort(cfg.GPS.Port)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("opening gps port: %w", err)
	}

	return &hardware{
		bus:     bus,
		gpsPort: port,
		station: &wifi.NMCLIStation{Interface: cfg.WiFi.Interface},
		pin:     &buzzer.SysfsPin{Path: cfg.Buzzer.GPIOPath},
		audio:   &audio.IIOReader{Path: cfg.Audio.Path},
	}, nil
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	var zapCfg zap.Config
	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	return zapCfg.Build()
}
