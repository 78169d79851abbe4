package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmemorize/jmemorize/internal/learn"
)

type Config struct {
	Lessons  LessonsConfig  `mapstructure:"lessons"`
	Learn    LearnConfig    `mapstructure:"learn"`
	Database DatabaseConfig `mapstructure:"database"`
}

type LessonsConfig struct {
	Directory     string `mapstructure:"directory"`
	DefaultLesson string `mapstructure:"default_lesson"`
}

type LearnConfig struct {
	CardLimit         int            `mapstructure:"card_limit" validate:"omitempty,min=1"`
	TimeLimitMinutes  int            `mapstructure:"time_limit_minutes" validate:"omitempty,min=1"`
	RetestFailedCards bool           `mapstructure:"retest_failed_cards"`
	ShuffleRatio      float64        `mapstructure:"shuffle_ratio" validate:"min=0,max=1"`
	Sides             string         `mapstructure:"sides" validate:"oneof=normal flipped random both"`
	AmountToTestFront int            `mapstructure:"amount_to_test_front" validate:"min=1"`
	AmountToTestBack  int            `mapstructure:"amount_to_test_back" validate:"min=1"`
	GroupByCategory   bool           `mapstructure:"group_by_category"`
	Schedule          ScheduleConfig `mapstructure:"schedule"`
}

type ScheduleConfig struct {
	Preset              string `mapstructure:"preset" validate:"omitempty,oneof=constant linear quadratic exponential"`
	Intervals           []int  `mapstructure:"intervals" validate:"omitempty,dive,min=1"`
	FixedExpirationTime string `mapstructure:"fixed_expiration_time" validate:"omitempty,clocktime"`
}

type DatabaseConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/jmemorize")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("lessons.directory", filepath.Join("lessons"))
	v.SetDefault("learn.retest_failed_cards", true)
	v.SetDefault("learn.shuffle_ratio", 0.0)
	v.SetDefault("learn.sides", string(learn.SidesNormal))
	v.SetDefault("learn.amount_to_test_front", 1)
	v.SetDefault("learn.amount_to_test_back", 1)
	v.SetDefault("learn.schedule.preset", string(learn.PresetLinear))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "jmemorize")
	v.SetDefault("database.username", "user")

	// Bind database password to environment variable only (not from config file)
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// ToSettings converts the learn section into session settings.
func (c LearnConfig) ToSettings() (*learn.Settings, error) {
	settings := learn.NewSettings()
	if c.CardLimit > 0 {
		settings.CardLimitEnabled = true
		settings.CardLimit = c.CardLimit
	}
	if c.TimeLimitMinutes > 0 {
		settings.TimeLimitEnabled = true
		settings.TimeLimit = time.Duration(c.TimeLimitMinutes) * time.Minute
	}
	settings.RetestFailedCards = c.RetestFailedCards
	settings.ShuffleRatio = c.ShuffleRatio
	settings.Sides = learn.SidesMode(c.Sides)
	settings.AmountToTestFront = c.AmountToTestFront
	settings.AmountToTestBack = c.AmountToTestBack
	settings.GroupByCategory = c.GroupByCategory

	schedule, err := c.Schedule.ToSchedule()
	if err != nil {
		return nil, fmt.Errorf("Schedule.ToSchedule() > %w", err)
	}
	settings.Schedule = schedule

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings.Validate() > %w", err)
	}
	return settings, nil
}

// ToSchedule builds the schedule from the configured preset or explicit
// intervals. Explicit intervals win over the preset.
func (c ScheduleConfig) ToSchedule() (*learn.Schedule, error) {
	var schedule *learn.Schedule
	if len(c.Intervals) > 0 {
		var err error
		schedule, err = learn.NewCustomSchedule(c.Intervals)
		if err != nil {
			return nil, fmt.Errorf("learn.NewCustomSchedule() > %w", err)
		}
	} else {
		preset := learn.Preset(c.Preset)
		if preset == "" {
			preset = learn.PresetLinear
		}
		var err error
		schedule, err = learn.NewPresetSchedule(preset)
		if err != nil {
			return nil, fmt.Errorf("learn.NewPresetSchedule() > %w", err)
		}
	}

	if c.FixedExpirationTime != "" {
		fixed, err := learn.ParseFixedTime(c.FixedExpirationTime)
		if err != nil {
			return nil, fmt.Errorf("learn.ParseFixedTime() > %w", err)
		}
		schedule.SetFixedExpirationTime(fixed)
	}
	return schedule, nil
}
