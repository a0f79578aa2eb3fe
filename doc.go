// Package timingwheel implements a hierarchical timer wheel: a
// structure for scheduling a large number of one-shot delayed
// callbacks with bounded per-operation cost and coarse, configurable
// granularity. Tasks cascade from coarse layers into progressively
// finer ones as the wheel's clock advances. Insertion visits each layer
// up to the first whose span covers the task's expiry, plus one
// delay-queue insertion when the chosen slot is newly scheduled;
// cancellation unlinks the task from its slot in O(1).
package timingwheel
