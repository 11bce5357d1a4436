// Copyright (c) 2023 Remlabs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package gorem

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultRequestTimeout = time.Second * 30
)

// Config defines gorem config
type Config struct {
	// Host is the object store host
	Host string `yaml:"host" json:"host" mapstructure:"host"`
	// Port is the object store port
	Port int `yaml:"port" json:"port" mapstructure:"port"`

	// Protocol is http or https
	Protocol string `json:"protocol" yaml:"protocol" mapstructure:"protocol"`
	// MountPath is the path the store's rest api is mounted on, e.g. /parse
	MountPath string `yaml:"mount_path" json:"mount_path" mapstructure:"mount_path"`

	// ApplicationID identifies the application to the store
	ApplicationID string `yaml:"application_id" json:"application_id" mapstructure:"application_id"`
	// APIKey is the client api key sent with normal operations
	APIKey string `yaml:"api_key" json:"api_key" mapstructure:"api_key"`
	// MasterKey is sent instead of the api key when an operation runs with
	// elevated privileges, bypassing the store's ACL enforcement
	MasterKey string `yaml:"master_key" json:"master_key" mapstructure:"master_key"`

	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`

	Logger Logger `yaml:"-" json:"-" mapstructure:"-"`
	// if logger is not nil log level will be ignored
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	OpentracingEnabled bool `json:"opentracing_enabled" yaml:"opentracing_enabled" mapstructure:"opentracing_enabled"`

	// Store overrides the transport entirely. When set the connection settings
	// above are ignored, which is how tests and embedded setups run on MemStore.
	Store Store `yaml:"-" json:"-" mapstructure:"-"`
}

func (c *Config) validate() error {
	if c.Logger == nil {
		c.Logger = GetDefaultLogger()
	}

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}

	if c.Store != nil {
		return nil
	}

	if c.Host == "" {
		return errors.New("hostname not defined")
	}

	if c.Port <= 0 {
		return errors.New("port either not specified or invalid")
	}

	if c.ApplicationID == "" {
		return errors.New("application id not defined")
	}

	return nil
}

// Endpoint builds the base url of the store's rest api
func (c *Config) Endpoint() string {
	protocol := c.Protocol
	if protocol == "" {
		protocol = "http"
	}

	mount := strings.Trim(c.MountPath, "/")
	if mount == "" {
		return fmt.Sprintf("%s://%s:%v", protocol, c.Host, c.Port)
	}

	return fmt.Sprintf("%s://%s:%v/%s", protocol, c.Host, c.Port, mount)
}
