// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// mapbase resolves the anymap home/config directories and bootstraps
// provider access tokens from the environment.
package mapbase

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

const (
	AnymapHomeVarName = "ANYMAP_HOME"
	HomeDirName       = ".anymap"
	ConfigDir         = "config"
	DBDir             = "db"

	MapboxTokenVarName       = "MAPBOX_TOKEN"
	MapboxAccessTokenVarName = "MAPBOX_ACCESS_TOKEN"
	CesiumTokenVarName       = "CESIUM_TOKEN"
	CesiumAccessTokenVarName = "CESIUM_ACCESS_TOKEN"
)

var baseLock = &sync.Mutex{}
var ensureDirCache = map[string]bool{}
var dotenvOnce sync.Once

// LoadDotEnv loads KEY=VALUE pairs from .env in the anymap home dir into the
// process environment (existing vars win).  Safe to call more than once.
func LoadDotEnv() {
	dotenvOnce.Do(func() {
		envFile := filepath.Join(GetAnymapHomeDir(), ".env")
		if _, err := os.Stat(envFile); err != nil {
			return
		}
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("[warning] loading %s: %v\n", envFile, err)
		}
	})
}

func GetAnymapHomeDir() string {
	anymapHome := os.Getenv(AnymapHomeVarName)
	if anymapHome != "" {
		return ExpandHomeDir(anymapHome)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, HomeDirName)
}

func GetConfigDir() string {
	return filepath.Join(GetAnymapHomeDir(), ConfigDir)
}

func GetDBDir() string {
	return filepath.Join(GetAnymapHomeDir(), DBDir)
}

func ExpandHomeDir(pathStr string) string {
	if pathStr != "~" && !startsWithHomePrefix(pathStr) {
		return pathStr
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return pathStr
	}
	if pathStr == "~" {
		return homeDir
	}
	return filepath.Join(homeDir, pathStr[2:])
}

func startsWithHomePrefix(pathStr string) bool {
	return len(pathStr) >= 2 && pathStr[0] == '~' && (pathStr[1] == '/' || pathStr[1] == filepath.Separator)
}

func EnsureDir(dirName string) error {
	baseLock.Lock()
	ok := ensureDirCache[dirName]
	baseLock.Unlock()
	if ok {
		return nil
	}
	err := os.MkdirAll(dirName, 0755)
	if err != nil {
		return fmt.Errorf("cannot make dir %q: %w", dirName, err)
	}
	baseLock.Lock()
	ensureDirCache[dirName] = true
	baseLock.Unlock()
	return nil
}

// GetMapboxToken returns the configured Mapbox access token, checking the
// environment (after .env bootstrap).  Empty when unset; Mapbox maps render
// with a console warning in that case, same as the browser library does.
func GetMapboxToken() string {
	LoadDotEnv()
	token := os.Getenv(MapboxTokenVarName)
	if token == "" {
		token = os.Getenv(MapboxAccessTokenVarName)
	}
	return token
}

func GetCesiumToken() string {
	LoadDotEnv()
	token := os.Getenv(CesiumTokenVarName)
	if token == "" {
		token = os.Getenv(CesiumAccessTokenVarName)
	}
	return token
}
