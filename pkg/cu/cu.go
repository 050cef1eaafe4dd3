// Package cu meters compute units consumed by host syscalls.
package cu

import (
	"errors"

	"go.firedancer.io/nostd/pkg/safemath"
	"k8s.io/klog/v2"
)

// DefaultBudget is the per-instruction budget the runtime grants when none is requested.
const DefaultBudget = 200_000

var ErrComputeExceeded = errors.New("Compute exceeded")

type ComputeMeter struct {
	remaining uint64
	budget    uint64
	exceeded  bool
	unmetered bool
}

func NewComputeMeter(budget uint64) ComputeMeter {
	return ComputeMeter{remaining: budget, budget: budget}
}

func NewComputeMeterDefault() ComputeMeter {
	return NewComputeMeter(DefaultBudget)
}

// Consume deducts cost from the meter. Once the meter runs dry it stays at
// zero and every further call fails, unless metering was disabled.
func (cm *ComputeMeter) Consume(cost uint64) error {
	if cm.remaining < cost {
		cm.exceeded = true
	}
	cm.remaining = safemath.SaturatingSubU64(cm.remaining, cost)

	if cm.exceeded {
		if cm.unmetered {
			klog.V(2).Infof("compute budget of %d exceeded, continuing unmetered", cm.budget)
			return nil
		}
		return ErrComputeExceeded
	}
	return nil
}

func (cm *ComputeMeter) Used() uint64 {
	return cm.budget - cm.remaining
}

func (cm *ComputeMeter) Exceeded() bool {
	return cm.exceeded
}

func (cm *ComputeMeter) Remaining() uint64 {
	return cm.remaining
}

// Disable turns budget violations into log lines.
func (cm *ComputeMeter) Disable() {
	cm.unmetered = true
}
