/*
Copyright (C) 2026 Skoglund

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PlayMode selects how the play order behaves once exhausted.
type PlayMode string

const (
	// PlayModeCycle wraps around the shuffled order indefinitely.
	PlayModeCycle PlayMode = "cycle"
	// PlayModeOneShot pops each entry once; late bells go silent.
	PlayModeOneShot PlayMode = "oneshot"
)

// BellTime is one scheduled ring as an hour/minute pair.
type BellTime struct {
	Hour   int `yaml:"hour"`
	Minute int `yaml:"minute"`
}

func (b BellTime) String() string {
	return fmt.Sprintf("%02d:%02d", b.Hour, b.Minute)
}

// DefaultSchedule is the stock school-day bell schedule.
var DefaultSchedule = []BellTime{
	{9, 15}, {10, 12}, {11, 15}, {12, 12}, {13, 42}, {14, 42}, {15, 40},
}

// Config covers process level configuration, read from an optional YAML
// file (BELLHOP_CONFIG) with environment variables taking precedence.
type Config struct {
	Environment string
	MediaRoot   string
	LinksPath   string
	CachePath   string
	HistoryPath string
	ClipLength  time.Duration
	Schedule    []BellTime
	PlayMode    PlayMode
	FFmpegBin   string
	ResolverBin string
	PlayerBin   string
	MetricsBind string
}

// fileConfig mirrors Config for the YAML layer. Absent fields keep their
// defaults.
type fileConfig struct {
	Environment string     `yaml:"environment"`
	MediaRoot   string     `yaml:"media_root"`
	LinksPath   string     `yaml:"links_path"`
	CachePath   string     `yaml:"cache_path"`
	HistoryPath string     `yaml:"history_path"`
	ClipSeconds int        `yaml:"clip_seconds"`
	Schedule    []BellTime `yaml:"schedule"`
	PlayMode    string     `yaml:"play_mode"`
	FFmpegBin   string     `yaml:"ffmpeg_bin"`
	ResolverBin string     `yaml:"resolver_bin"`
	PlayerBin   string     `yaml:"player_bin"`
	MetricsBind string     `yaml:"metrics_bind"`
}

// Load reads the optional YAML file and environment variables, applies
// defaults, and validates the result. Missing or malformed required values
// are fatal.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: "development",
		MediaRoot:   "./media",
		LinksPath:   "./links.txt",
		CachePath:   "./bellhop.cache",
		HistoryPath: "./bellhop.db",
		ClipLength:  time.Minute,
		Schedule:    append([]BellTime(nil), DefaultSchedule...),
		PlayMode:    PlayModeCycle,
		FFmpegBin:   "ffmpeg",
		ResolverBin: "yt-dlp",
		PlayerBin:   "ffplay",
		MetricsBind: "127.0.0.1:9464",
	}

	if path := os.Getenv("BELLHOP_CONFIG"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// The scheduler visits entries strictly in ascending order; sort once
	// here and keep duplicates.
	sort.SliceStable(cfg.Schedule, func(i, j int) bool {
		if cfg.Schedule[i].Hour != cfg.Schedule[j].Hour {
			return cfg.Schedule[i].Hour < cfg.Schedule[j].Hour
		}
		return cfg.Schedule[i].Minute < cfg.Schedule[j].Minute
	})

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if fc.MediaRoot != "" {
		cfg.MediaRoot = fc.MediaRoot
	}
	if fc.LinksPath != "" {
		cfg.LinksPath = fc.LinksPath
	}
	if fc.CachePath != "" {
		cfg.CachePath = fc.CachePath
	}
	if fc.HistoryPath != "" {
		cfg.HistoryPath = fc.HistoryPath
	}
	if fc.ClipSeconds != 0 {
		cfg.ClipLength = time.Duration(fc.ClipSeconds) * time.Second
	}
	if len(fc.Schedule) != 0 {
		cfg.Schedule = fc.Schedule
	}
	if fc.PlayMode != "" {
		cfg.PlayMode = PlayMode(fc.PlayMode)
	}
	if fc.FFmpegBin != "" {
		cfg.FFmpegBin = fc.FFmpegBin
	}
	if fc.ResolverBin != "" {
		cfg.ResolverBin = fc.ResolverBin
	}
	if fc.PlayerBin != "" {
		cfg.PlayerBin = fc.PlayerBin
	}
	if fc.MetricsBind != "" {
		cfg.MetricsBind = fc.MetricsBind
	}

	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Environment = getEnv("BELLHOP_ENV", cfg.Environment)
	cfg.MediaRoot = getEnv("BELLHOP_MEDIA_ROOT", cfg.MediaRoot)
	cfg.LinksPath = getEnv("BELLHOP_LINKS", cfg.LinksPath)
	cfg.CachePath = getEnv("BELLHOP_CACHE", cfg.CachePath)
	cfg.HistoryPath = getEnv("BELLHOP_HISTORY", cfg.HistoryPath)
	cfg.ClipLength = time.Duration(getEnvInt("BELLHOP_CLIP_SECONDS", int(cfg.ClipLength/time.Second))) * time.Second
	cfg.PlayMode = PlayMode(getEnv("BELLHOP_PLAY_MODE", string(cfg.PlayMode)))
	cfg.FFmpegBin = getEnv("BELLHOP_FFMPEG_BIN", cfg.FFmpegBin)
	cfg.ResolverBin = getEnv("BELLHOP_RESOLVER_BIN", cfg.ResolverBin)
	cfg.PlayerBin = getEnv("BELLHOP_PLAYER_BIN", cfg.PlayerBin)
	cfg.MetricsBind = getEnv("BELLHOP_METRICS_BIND", cfg.MetricsBind)

	if raw := os.Getenv("BELLHOP_SCHEDULE"); raw != "" {
		schedule, err := ParseSchedule(raw)
		if err != nil {
			return fmt.Errorf("BELLHOP_SCHEDULE: %w", err)
		}
		cfg.Schedule = schedule
	}

	return nil
}

func (c *Config) validate() error {
	if c.LinksPath == "" {
		return fmt.Errorf("links path must not be empty")
	}
	if c.MediaRoot == "" {
		return fmt.Errorf("media root must not be empty")
	}
	if c.CachePath == "" {
		return fmt.Errorf("cache path must not be empty")
	}
	if c.ClipLength <= 0 {
		return fmt.Errorf("clip length must be positive, got %s", c.ClipLength)
	}
	if len(c.Schedule) == 0 {
		return fmt.Errorf("schedule must contain at least one bell time")
	}
	for _, b := range c.Schedule {
		if b.Hour < 0 || b.Hour > 23 || b.Minute < 0 || b.Minute > 59 {
			return fmt.Errorf("invalid bell time %02d:%02d", b.Hour, b.Minute)
		}
	}
	if c.PlayMode != PlayModeCycle && c.PlayMode != PlayModeOneShot {
		return fmt.Errorf("unsupported play mode %q", c.PlayMode)
	}
	return nil
}

// ParseSchedule parses a comma-separated list of HH:MM pairs.
func ParseSchedule(raw string) ([]BellTime, error) {
	var schedule []BellTime
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		hh, mm, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("malformed bell time %q, want HH:MM", part)
		}
		hour, err := strconv.Atoi(strings.TrimSpace(hh))
		if err != nil {
			return nil, fmt.Errorf("malformed bell hour %q", part)
		}
		minute, err := strconv.Atoi(strings.TrimSpace(mm))
		if err != nil {
			return nil, fmt.Errorf("malformed bell minute %q", part)
		}
		schedule = append(schedule, BellTime{Hour: hour, Minute: minute})
	}
	if len(schedule) == 0 {
		return nil, fmt.Errorf("schedule is empty")
	}
	return schedule, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
