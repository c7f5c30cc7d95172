// Copyright 2025 Tessella Labs
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

package engine

import (
	"sync"

	"github.com/tessella/docpipe/core"
)

// Node is one configured stage instance inside a hosted workflow.
type Node struct {
	ID     string
	Name   string
	Type   string
	Config map[string]any
}

// ExecutionContext carries workflow identity and per-node input payloads
// for one workflow execution. It is safe for concurrent use; the host may
// run many documents through the pipeline at once.
type ExecutionContext struct {
	WorkflowID   string
	WorkflowName string
	ExecutionID  string

	mu     sync.RWMutex
	inputs map[string]map[string]any
}

// NewExecutionContext creates an execution context for one workflow run.
func NewExecutionContext(workflowID, workflowName, executionID string) *ExecutionContext {
	return &ExecutionContext{
		WorkflowID:   workflowID,
		WorkflowName: workflowName,
		ExecutionID:  executionID,
		inputs:       make(map[string]map[string]any),
	}
}

// SetInput stores the input payload for a node, typically the output of
// its predecessor.
func (c *ExecutionContext) SetInput(nodeID string, input map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs[nodeID] = input
}

// InputFor retrieves the input payload for a node. Never nil.
func (c *ExecutionContext) InputFor(nodeID string) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if input, ok := c.inputs[nodeID]; ok {
		return input
	}
	return map[string]any{}
}

// WorkflowInfo returns the audit identity of this execution at a node.
func (c *ExecutionContext) WorkflowInfo(nodeID string) core.WorkflowInfo {
	return core.WorkflowInfo{
		WorkflowID:   c.WorkflowID,
		WorkflowName: c.WorkflowName,
		ExecutionID:  c.ExecutionID,
		NodeID:       nodeID,
	}
}
