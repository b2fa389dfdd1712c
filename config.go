package xboxjoy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	DefaultConfigFile = "xboxjoy.yaml"

	configType = "yaml"

	configKeyDriver           = "driver"
	configKeyDevice           = "device"
	configKeyPollInterval     = "poll_interval"
	configKeyEcho             = "echo"
	configKeyDeadzone         = "stick_deadzone"
	configKeyTriggerThreshold = "trigger_threshold"
	configKeyStickAxes        = "stick_axes"
	configKeyTriggerAxes      = "trigger_axes"
	configKeyFallbackClass    = "default_axis_class"
	configKeyButtonNames      = "button_names"
	configKeyAxisNames        = "axis_names"
	configKeyHatNames         = "hat_names"

	defaultDriver        = "linux"
	defaultDevice        = -1
	defaultFallbackClass = "trigger"

	defaultReloadDelay = 500 * time.Millisecond
)

var knownDrivers = []string{"linux", "sdl", "joystick"}

// Config is the user facing configuration, read from a YAML file with
// defaults for every key.
type Config struct {
	mu sync.RWMutex

	Driver       string
	Device       int // enumeration index, -1 for every device
	PollInterval time.Duration
	Echo         bool
	Diff         DiffConfig
	Names        Names

	logger          *zap.SugaredLogger
	userConfig      *viper.Viper
	reloadConsumers []chan DiffConfig

	reloadDelay time.Duration
	reloadMu    sync.Mutex
	reloadTimer *time.Timer
}

// NewConfig creates a config backed by the YAML file at path. The file is
// not read until Load.
func NewConfig(logger *zap.SugaredLogger, path string) *Config {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger = logger.Named("config")

	userConfig := viper.New()
	userConfig.SetConfigType(configType)
	userConfig.SetConfigFile(path)

	userConfig.SetDefault(configKeyDriver, defaultDriver)
	userConfig.SetDefault(configKeyDevice, defaultDevice)
	userConfig.SetDefault(configKeyPollInterval, DefaultPollInterval)
	userConfig.SetDefault(configKeyEcho, true)
	userConfig.SetDefault(configKeyDeadzone, DefaultDeadzone)
	userConfig.SetDefault(configKeyTriggerThreshold, DefaultTriggerThreshold)
	userConfig.SetDefault(configKeyStickAxes, []int{0, 1, 3, 4})
	userConfig.SetDefault(configKeyTriggerAxes, []int{})
	userConfig.SetDefault(configKeyFallbackClass, defaultFallbackClass)
	userConfig.SetDefault(configKeyButtonNames, map[string]string{})
	userConfig.SetDefault(configKeyAxisNames, map[string]string{})
	userConfig.SetDefault(configKeyHatNames, map[string]string{})

	logger.Debugw("Created config instance", "path", path)

	return &Config{
		logger:      logger,
		userConfig:  userConfig,
		reloadDelay: defaultReloadDelay,
	}
}

// Load reads the config file. A missing file is not an error: every key
// keeps its default.
func (cc *Config) Load() error {
	path := cc.userConfig.ConfigFileUsed()
	cc.logger.Debugw("Loading config", "path", path)

	if err := cc.userConfig.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			cc.logger.Warnw("Viper failed to read config", "error", err)
			return fmt.Errorf("read config: %w", err)
		}
		cc.logger.Infow("Config file not found, using defaults", "path", path)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.populateFromViper()
	cc.logger.Infow("Config values",
		"driver", cc.Driver,
		"device", cc.Device,
		"pollInterval", cc.PollInterval,
		"echo", cc.Echo,
		"deadzone", cc.Diff.Deadzone,
		"triggerThreshold", cc.Diff.TriggerThreshold)

	return nil
}

// DiffConfig returns the current thresholds.
func (cc *Config) DiffConfig() DiffConfig {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.Diff
}

// SubscribeToChanges returns a channel receiving the diff config after every
// successful reload. Only the latest pending value is kept.
func (cc *Config) SubscribeToChanges() <-chan DiffConfig {
	c := make(chan DiffConfig, 1)
	cc.mu.Lock()
	cc.reloadConsumers = append(cc.reloadConsumers, c)
	cc.mu.Unlock()
	return c
}

// WatchConfigFileChanges reloads the config whenever the file is written,
// until stop is closed. The file may be created after the watch starts, but
// its directory must exist.
func (cc *Config) WatchConfigFileChanges(stop <-chan struct{}) {
	if err := cc.watch(); err != nil {
		cc.logger.Warnw("Not watching config file for changes", "error", err)
		return
	}

	<-stop
	cc.logger.Debug("Stopping config file watcher")
	cc.stopWatching()
}

func (cc *Config) watch() error {
	path := cc.userConfig.ConfigFileUsed()
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}

	cc.logger.Debugw("Starting to watch config file for changes", "path", path)
	cc.userConfig.OnConfigChange(cc.onConfigFileEvent)
	cc.userConfig.WatchConfig()
	return nil
}

func (cc *Config) stopWatching() {
	cc.userConfig.OnConfigChange(func(fsnotify.Event) {})

	cc.reloadMu.Lock()
	defer cc.reloadMu.Unlock()
	if cc.reloadTimer != nil {
		cc.reloadTimer.Stop()
	}
}

// onConfigFileEvent schedules a reload once writes have been quiet for
// reloadDelay. Editors and os.WriteFile produce several events per save.
func (cc *Config) onConfigFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	cc.reloadMu.Lock()
	defer cc.reloadMu.Unlock()

	cc.logger.Debugw("Config file modified, scheduling reload", "event", event.String())
	if cc.reloadTimer != nil {
		cc.reloadTimer.Stop()
	}
	cc.reloadTimer = time.AfterFunc(cc.reloadDelay, cc.reload)
}

func (cc *Config) reload() {
	if err := cc.Load(); err != nil {
		cc.logger.Warnw("Failed to reload config file", "error", err)
		return
	}
	cc.logger.Info("Reloaded config successfully")
	cc.onConfigReloaded()
}

func (cc *Config) onConfigReloaded() {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	cc.logger.Debugw("Notifying consumers about config reload", "consumers", len(cc.reloadConsumers))
	for _, consumer := range cc.reloadConsumers {
		// drop a stale pending value so the consumer sees the newest one
		select {
		case <-consumer:
		default:
		}
		select {
		case consumer <- cc.Diff:
		default:
		}
	}
}

func (cc *Config) populateFromViper() {

	cc.Driver = cc.userConfig.GetString(configKeyDriver)
	if !slices.Contains(knownDrivers, cc.Driver) {
		cc.logger.Warnw("Invalid driver specified, using default value",
			"key", configKeyDriver,
			"invalidValue", cc.Driver,
			"defaultValue", defaultDriver)
		cc.Driver = defaultDriver
	}

	cc.Device = cc.userConfig.GetInt(configKeyDevice)
	if cc.Device < -1 {
		cc.logger.Warnw("Invalid device specified, using default value",
			"key", configKeyDevice,
			"invalidValue", cc.Device,
			"defaultValue", defaultDevice)
		cc.Device = defaultDevice
	}

	cc.PollInterval = cc.userConfig.GetDuration(configKeyPollInterval)
	if cc.PollInterval <= 0 {
		cc.logger.Warnw("Invalid poll interval specified, using default value",
			"key", configKeyPollInterval,
			"invalidValue", cc.PollInterval,
			"defaultValue", DefaultPollInterval)
		cc.PollInterval = DefaultPollInterval
	}

	cc.Echo = cc.userConfig.GetBool(configKeyEcho)

	diff := DiffConfig{
		Deadzone:         cc.userConfig.GetFloat64(configKeyDeadzone),
		TriggerThreshold: cc.userConfig.GetFloat64(configKeyTriggerThreshold),
		Classes:          map[int]AxisClass{},
	}

	if diff.Deadzone < 0 || diff.Deadzone >= 1 {
		cc.logger.Warnw("Invalid stick deadzone specified, using default value",
			"key", configKeyDeadzone,
			"invalidValue", diff.Deadzone,
			"defaultValue", DefaultDeadzone)
		diff.Deadzone = DefaultDeadzone
	}

	if diff.TriggerThreshold < -1 || diff.TriggerThreshold >= 1 {
		cc.logger.Warnw("Invalid trigger threshold specified, using default value",
			"key", configKeyTriggerThreshold,
			"invalidValue", diff.TriggerThreshold,
			"defaultValue", DefaultTriggerThreshold)
		diff.TriggerThreshold = DefaultTriggerThreshold
	}

	switch fallback := cc.userConfig.GetString(configKeyFallbackClass); fallback {
	case "stick":
		diff.Fallback = StickAxis
	case "trigger":
		diff.Fallback = TriggerAxis
	default:
		cc.logger.Warnw("Invalid default axis class specified, using default value",
			"key", configKeyFallbackClass,
			"invalidValue", fallback,
			"defaultValue", defaultFallbackClass)
		diff.Fallback = TriggerAxis
	}

	for _, i := range cc.userConfig.GetIntSlice(configKeyStickAxes) {
		diff.Classes[i] = StickAxis
	}
	for _, i := range cc.userConfig.GetIntSlice(configKeyTriggerAxes) {
		diff.Classes[i] = TriggerAxis
	}
	cc.Diff = diff

	cc.Names = XboxNames().Merge(Names{
		Buttons: cc.indexedNames(configKeyButtonNames),
		Axes:    cc.indexedNames(configKeyAxisNames),
		Hats:    cc.indexedNames(configKeyHatNames),
	})

	cc.logger.Debug("Populated config fields from viper")
}

func (cc *Config) indexedNames(key string) map[int]string {
	dest := map[int]string{}
	for k, name := range cc.userConfig.GetStringMapString(key) {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			cc.logger.Warnw("Ignoring name with invalid index", "key", key, "index", k)
			continue
		}
		dest[i] = name
	}
	return dest
}
