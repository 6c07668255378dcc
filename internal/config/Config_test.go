package config

import (
	"testing"
	"time"
)

func TestFromJSONDefaults(t *testing.T) {
	cfg, err := FromJSON(JsonConfig{})
	if err != nil {
		t.Fatalf("got error when converting empty JsonConfig: %v", err)
	}
	if cfg.DatabaseFile != "clfd.db" {
		t.Errorf("default database file does not match, expected=clfd.db got=%v", cfg.DatabaseFile)
	}
	if cfg.WebAddress != ":8080" {
		t.Errorf("default web address does not match, expected=:8080 got=%v", cfg.WebAddress)
	}
	if cfg.ReadInterval != 1*time.Second {
		t.Errorf("default read interval does not match, expected=1s got=%v", cfg.ReadInterval)
	}
}

func TestFromJSONOverrides(t *testing.T) {
	cfg, err := FromJSON(JsonConfig{
		DatabaseFile:   "other.db",
		WebAddress:     ":9090",
		ReadIntervalMs: 250,
		Globs:          []string{"/var/log/nginx/access.log*"},
	})
	if err != nil {
		t.Fatalf("got error when converting JsonConfig: %v", err)
	}
	if cfg.DatabaseFile != "other.db" {
		t.Errorf("database file does not match, expected=other.db got=%v", cfg.DatabaseFile)
	}
	if cfg.ReadInterval != 250*time.Millisecond {
		t.Errorf("read interval does not match, expected=250ms got=%v", cfg.ReadInterval)
	}
	if len(cfg.Globs) != 1 || cfg.Globs[0] != "/var/log/nginx/access.log*" {
		t.Errorf("globs do not match, got=%v", cfg.Globs)
	}
}

func TestFromJSONNegativeReadInterval(t *testing.T) {
	_, err := FromJSON(JsonConfig{ReadIntervalMs: -1})
	if err == nil {
		t.Error("expected an error for a negative readIntervalMs but got none")
	}
}
