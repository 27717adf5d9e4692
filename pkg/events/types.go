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

package events

import "time"

// baseEvent carries the shared timestamp for all concrete events.
type baseEvent struct {
	occurredAt time.Time
}

func newBaseEvent() baseEvent {
	return baseEvent{occurredAt: time.Now()}
}

// Timestamp returns when this event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.occurredAt
}

// InstanceRegistered is published when a new instance joins the registry.
type InstanceRegistered struct {
	baseEvent
	InstanceID string
	Name       string
}

// NewInstanceRegistered creates an InstanceRegistered event.
func NewInstanceRegistered(instanceID, name string) *InstanceRegistered {
	return &InstanceRegistered{baseEvent: newBaseEvent(), InstanceID: instanceID, Name: name}
}

// EventType returns the event type identifier.
func (e *InstanceRegistered) EventType() string { return "instance.registered" }

// InstanceUpdated is published when an instance's record changes. Consumers
// holding connection state for the instance must rebuild it.
type InstanceUpdated struct {
	baseEvent
	InstanceID string
}

// NewInstanceUpdated creates an InstanceUpdated event.
func NewInstanceUpdated(instanceID string) *InstanceUpdated {
	return &InstanceUpdated{baseEvent: newBaseEvent(), InstanceID: instanceID}
}

// EventType returns the event type identifier.
func (e *InstanceUpdated) EventType() string { return "instance.updated" }

// InstanceRemoved is published when an instance leaves the registry.
type InstanceRemoved struct {
	baseEvent
	InstanceID string
}

// NewInstanceRemoved creates an InstanceRemoved event.
func NewInstanceRemoved(instanceID string) *InstanceRemoved {
	return &InstanceRemoved{baseEvent: newBaseEvent(), InstanceID: instanceID}
}

// EventType returns the event type identifier.
func (e *InstanceRemoved) EventType() string { return "instance.removed" }

// InstanceProbed is published after every reachability probe.
type InstanceProbed struct {
	baseEvent
	InstanceID string
	Healthy    bool
	Latency    time.Duration
	Message    string
}

// NewInstanceProbed creates an InstanceProbed event.
func NewInstanceProbed(instanceID string, healthy bool, latency time.Duration, message string) *InstanceProbed {
	return &InstanceProbed{
		baseEvent:  newBaseEvent(),
		InstanceID: instanceID,
		Healthy:    healthy,
		Latency:    latency,
		Message:    message,
	}
}

// EventType returns the event type identifier.
func (e *InstanceProbed) EventType() string { return "instance.probed" }

// OperationCompleted is published after one configuration operation against
// one instance, whether it was issued directly or as part of a bulk apply.
type OperationCompleted struct {
	baseEvent
	InstanceID string
	Operation  string
	Success    bool
	ErrorCode  string
	Duration   time.Duration
}

// NewOperationCompleted creates an OperationCompleted event.
func NewOperationCompleted(instanceID, operation string, success bool, errorCode string, duration time.Duration) *OperationCompleted {
	return &OperationCompleted{
		baseEvent:  newBaseEvent(),
		InstanceID: instanceID,
		Operation:  operation,
		Success:    success,
		ErrorCode:  errorCode,
		Duration:   duration,
	}
}

// EventType returns the event type identifier.
func (e *OperationCompleted) EventType() string { return "operation.completed" }

// BulkApplyStarted is published when a bulk fan-out begins.
type BulkApplyStarted struct {
	baseEvent
	Targets int
}

// NewBulkApplyStarted creates a BulkApplyStarted event.
func NewBulkApplyStarted(targets int) *BulkApplyStarted {
	return &BulkApplyStarted{baseEvent: newBaseEvent(), Targets: targets}
}

// EventType returns the event type identifier.
func (e *BulkApplyStarted) EventType() string { return "bulk.started" }

// BulkApplyCompleted is published once every target of a bulk fan-out has
// reported its outcome.
type BulkApplyCompleted struct {
	baseEvent
	Targets      int
	Failed       int
	AllSucceeded bool
	Duration     time.Duration
}

// NewBulkApplyCompleted creates a BulkApplyCompleted event.
func NewBulkApplyCompleted(targets, failed int, allSucceeded bool, duration time.Duration) *BulkApplyCompleted {
	return &BulkApplyCompleted{
		baseEvent:    newBaseEvent(),
		Targets:      targets,
		Failed:       failed,
		AllSucceeded: allSucceeded,
		Duration:     duration,
	}
}

// EventType returns the event type identifier.
func (e *BulkApplyCompleted) EventType() string { return "bulk.completed" }
