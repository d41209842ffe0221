// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compile

import (
	"github.com/panjf2000/ants/v2"

	"github.com/matrixorigin/mojoin/pkg/config"
	"github.com/matrixorigin/mojoin/pkg/sql/plan"
	"github.com/matrixorigin/mojoin/pkg/vm"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

const (
	// Normal scope reads one input.
	Normal = iota
	// Merge scope merges the output of several other scopes.
	Merge
)

// Scope is the unit of parallel execution: one operator driven by its own
// process on one goroutine of the pool.
type Scope struct {
	// Magic specifies the type of Scope.
	Magic int
	// Idx is the index of the scope among scopes of the same kind.
	Idx  int
	Op   vm.Operator
	Proc *process.Process
}

// Compile turns a join node into a plan of scopes and runs them.
type Compile struct {
	cfg  config.JoinParameters
	pool *ants.Pool
	spec *plan.JoinSpec
}
