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

package colexec

import (
	"reflect"
	"time"

	"github.com/matrixorigin/mojoin/pkg/container/batch"
	"github.com/matrixorigin/mojoin/pkg/logutil"
	"github.com/matrixorigin/mojoin/pkg/vm/process"
)

// ReceiverOperator reads batches from all merge receivers of a process.
// A receiver is done once it delivers a nil batch or is closed.
type ReceiverOperator struct {
	proc      *process.Process
	aliveCnt  int
	listeners []reflect.SelectCase
	// regIdx maps listeners[i+1] back to its merge receiver.
	regIdx []int
}

func (r *ReceiverOperator) InitReceiver(proc *process.Process) {
	r.proc = proc
	r.aliveCnt = len(proc.Reg.MergeReceivers)
	r.listeners = make([]reflect.SelectCase, r.aliveCnt+1)
	r.regIdx = make([]int, r.aliveCnt)
	r.listeners[0] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(proc.Ctx.Done())}
	for i := 0; i < r.aliveCnt; i++ {
		r.listeners[i+1] = reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(proc.Reg.MergeReceivers[i].Ch),
		}
		r.regIdx[i] = i
	}
}

// ReceiveFromAllRegs waits for the next batch on any receiver. It returns
// the batch and the index of the receiver it came from, or a nil batch and
// the index of a receiver that just finished. end is true once every
// receiver has finished or the process is cancelled.
func (r *ReceiverOperator) ReceiveFromAllRegs(analyze process.Analyze) (bat *batch.Batch, idx int, end bool) {
	for {
		if r.aliveCnt == 0 {
			return nil, -1, true
		}

		start := time.Now()
		chosen, value, ok := reflect.Select(r.listeners)
		analyze.WaitStop(start.UnixNano())

		// chosen == 0 means the info comes from proc context.Done
		if chosen == 0 {
			logutil.Ctx(r.proc.Ctx).Debug("process context done during merge receive")
			return nil, -1, true
		}

		idx = r.regIdx[chosen-1]
		if !ok {
			r.removeChosen(chosen)
			return nil, idx, false
		}
		bat = value.Interface().(*batch.Batch)
		if bat == nil {
			r.removeChosen(chosen)
			return nil, idx, false
		}
		if bat.IsEmpty() {
			continue
		}
		return bat, idx, false
	}
}

// FreeAllReg drains what producers still hold so that none of them stays
// blocked on a send after the receiver gave up.
func (r *ReceiverOperator) FreeAllReg() {
	for _, reg := range r.proc.Reg.MergeReceivers {
		for {
			select {
			case bat, ok := <-reg.Ch:
				if ok && bat != nil {
					continue
				}
			default:
			}
			break
		}
	}
}

func (r *ReceiverOperator) removeChosen(idx int) {
	r.listeners = append(r.listeners[:idx], r.listeners[idx+1:]...)
	r.regIdx = append(r.regIdx[:idx-1], r.regIdx[idx:]...)
	r.aliveCnt--
}
