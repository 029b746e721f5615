package inventory

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"insightgen/internal/insight"
)

// DeviceTypeFTD is the only device type the platform accepts as an impacted resource.
const DeviceTypeFTD = "FTD"

// ErrEmptyPool means no device could be supplied for substitution.
var ErrEmptyPool = errors.New("device pool is empty")

// Device is an impacted resource identity.
type Device struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Record renders the device the way it appears inside impactedResources.
func (d Device) Record() *insight.Record {
	r := insight.NewRecord()
	r.Set("uid", d.UID)
	r.Set("name", d.Name)
	r.Set("type", d.Type)
	return r
}

// Policy selects how devices are handed out.
type Policy string

const (
	PolicyRandom     Policy = "random"
	PolicySequential Policy = "sequential"
)

// ParsePolicy accepts "random" or "sequential", case-insensitively. Empty means random.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyRandom):
		return PolicyRandom, nil
	case string(PolicySequential):
		return PolicySequential, nil
	default:
		return "", fmt.Errorf("unknown device selection policy %q (want random or sequential)", s)
	}
}

// Directory hands out devices from a fixed pool.
type Directory struct {
	mu     sync.Mutex
	pool   []Device
	policy Policy
	rng    *rand.Rand
	cursor uint64
}

// NewDirectory creates a directory over a copy of pool.
func NewDirectory(pool []Device, policy Policy, rng *rand.Rand) (*Directory, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if policy != PolicySequential {
		policy = PolicyRandom
	}
	cp := make([]Device, len(pool))
	copy(cp, pool)
	return &Directory{pool: cp, policy: policy, rng: rng}, nil
}

// Device returns the next device according to the policy.
func (d *Directory) Device() Device {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.policy == PolicySequential {
		dev := d.pool[d.cursor%uint64(len(d.pool))]
		d.cursor++
		return dev
	}
	return d.pool[d.rng.Intn(len(d.pool))]
}

// Count returns the pool size.
func (d *Directory) Count() int {
	return len(d.pool)
}

// Policy returns the selection policy.
func (d *Directory) Policy() Policy {
	return d.policy
}

// Devices returns a copy of the pool.
func (d *Directory) Devices() []Device {
	out := make([]Device, len(d.pool))
	copy(out, d.pool)
	return out
}
