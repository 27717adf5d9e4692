// Copyright 2026 The Caddy Fleet Controller Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"runtime"
	"time"

	"caddy-fleet/pkg/core/config"
	"caddy-fleet/pkg/introspection"
	"caddy-fleet/pkg/registry"
)

// newDebugRegistry publishes the daemon's introspection variables.
//
// Instance records are reduced to a summary; credential material never
// appears on the debug surface.
func newDebugRegistry(cfg *config.Config, store registry.Store) *introspection.Registry {
	startTime := time.Now()

	reg := introspection.NewRegistry()

	reg.Publish("uptime", introspection.Func(func() (interface{}, error) {
		return time.Since(startTime).String(), nil
	}))

	reg.Publish("build", introspection.Func(func() (interface{}, error) {
		return map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		}, nil
	}))

	reg.Publish("config", introspection.Func(func() (interface{}, error) {
		return map[string]interface{}{
			"listen_addr":          cfg.Server.ListenAddr,
			"metrics_addr":         cfg.Server.MetricsAddr,
			"debug_addr":           cfg.Server.DebugAddr,
			"data_dir":             cfg.Registry.DataDir,
			"client_timeout":       cfg.Fleet.GetClientTimeout().String(),
			"probe_interval":       cfg.Fleet.GetProbeInterval().String(),
			"probe_timeout":        cfg.Fleet.GetProbeTimeout().String(),
			"bulk_max_concurrency": cfg.Fleet.BulkMaxConcurrency,
		}, nil
	}))

	reg.Publish("fleet/instances", introspection.Func(func() (interface{}, error) {
		instances, err := store.ListInstances()
		if err != nil {
			return nil, err
		}

		summaries := make([]map[string]interface{}, 0, len(instances))
		for _, instance := range instances {
			summaries = append(summaries, map[string]interface{}{
				"id":        instance.ID,
				"name":      instance.Name,
				"admin_url": instance.AdminURL,
				"auth_type": string(instance.AuthType),
				"status":    string(instance.Status),
				"last_seen": instance.LastSeen,
			})
		}

		return map[string]interface{}{
			"count":     len(summaries),
			"instances": summaries,
		}, nil
	}))

	reg.Publish("fleet/templates", introspection.Func(func() (interface{}, error) {
		templates, err := store.ListTemplates()
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(templates))
		for _, tpl := range templates {
			names = append(names, tpl.Name)
		}

		return map[string]interface{}{
			"count": len(names),
			"names": names,
		}, nil
	}))

	return reg
}
