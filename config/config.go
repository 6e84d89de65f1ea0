/*
 * config.go, part of qcio.
 *
 * Copyright 2024 The qcio authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package config loads the settings of programs embedding qcio from YAML
//files, with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/qcgo/qcio"
)

//Validator is implemented by configurations that can check themselves.
type Validator interface {
	Validate() error
}

//Load reads the YAML file filename into target, expanding ${VAR} and $VAR
//references first. If target is a Validator, it is validated.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", filename, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), target); err != nil {
		return fmt.Errorf("config: parsing %s: %w", filename, err)
	}
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: %s: %w", filename, err)
		}
	}
	return nil
}

//LoadWithDefaults loads filename or, if it doesn't exist, defaultFile.
func LoadWithDefaults[T any](filename, defaultFile string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if defaultFile != "" {
			return Load(defaultFile, target)
		}
		return fmt.Errorf("config: file not found: %s", filename)
	}
	return Load(filename, target)
}

//Config is the configuration of a program reading and writing qcio records.
type Config struct {
	LogLevel    slog.Level  `yaml:"log_level"`
	Persistence Persistence `yaml:"persistence"`
}

func (c *Config) Validate() error {
	return c.Persistence.Validate()
}

//Persistence holds the options used to write records. Unset fields take
//the value in qcio.DefaultSaveOptions.
type Persistence struct {
	ExcludeNone  *bool `yaml:"exclude_none"`
	ExcludeUnset *bool `yaml:"exclude_unset"`
	Indent       *int  `yaml:"indent"`
	XYZPrecision int   `yaml:"xyz_precision"` //0 means qcio.DefaultXYZPrecision.
}

func (c *Persistence) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Indent, validation.Min(0), validation.Max(16)),
		validation.Field(&c.XYZPrecision, validation.Min(0), validation.Max(30)),
	)
}

//SaveOptions returns the qcio options for c.
func (c Persistence) SaveOptions() qcio.SaveOptions {
	ret := qcio.DefaultSaveOptions
	if c.ExcludeNone != nil {
		ret.ExcludeNone = *c.ExcludeNone
	}
	if c.ExcludeUnset != nil {
		ret.ExcludeUnset = *c.ExcludeUnset
	}
	if c.Indent != nil {
		ret.Indent = *c.Indent
	}
	ret.XYZPrecision = c.XYZPrecision
	return ret
}

//NewDefaultConfig returns the configuration used when there is no file.
func NewDefaultConfig() *Config {
	return &Config{LogLevel: slog.LevelInfo}
}

//Store returns a qcio.Store with the persistence options of c, logging in
//text form to w at the configured level. A nil registry means the default.
func (c *Config) Store(R *qcio.Registry, w io.Writer) *qcio.Store {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
	st := qcio.NewStore(R, logger)
	st.Options = c.Persistence.SaveOptions()
	return st
}
