// Package mcc maintains the merchant-category-code lists consulted by the
// high-risk-merchant detector. The blocklist ships with a seeded set of
// categories (gambling, adult content, quasi-cash, premium-rate telecom);
// both lists are mutable at runtime.
package mcc

import (
	"fmt"
	"strconv"
	"sync"
)

// MaxCodes caps each list to keep lookups and audits bounded.
const MaxCodes = 64

// Seeded high-risk categories: wire transfer/money orders, pawn shops,
// inbound telemarketing, quasi-cash, betting, dating/escort services,
// premium-rate telecom.
var defaultBlocklist = []string{
	"4829", "5933", "5967", "6051", "7273", "7995", "9754",
}

// Registry holds the mutable MCC whitelist and blocklist. When whitelist mode
// is enabled, a whitelisted code is never treated as high risk.
type Registry struct {
	mu               sync.RWMutex
	blocklist        map[string]struct{}
	whitelist        map[string]struct{}
	whitelistEnabled bool
}

// NewRegistry creates a registry seeded with the default high-risk blocklist.
func NewRegistry() *Registry {
	r := &Registry{
		blocklist: make(map[string]struct{}),
		whitelist: make(map[string]struct{}),
	}
	for _, code := range defaultBlocklist {
		r.blocklist[code] = struct{}{}
	}
	return r
}

// IsHighRisk reports whether the code is on the blocklist and not exempted by
// an enabled whitelist.
func (r *Registry) IsHighRisk(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.whitelistEnabled {
		if _, ok := r.whitelist[code]; ok {
			return false
		}
	}
	_, ok := r.blocklist[code]
	return ok
}

// AddToBlocklist adds validated codes to the blocklist.
func (r *Registry) AddToBlocklist(codes ...string) error {
	return r.add(codes, func() map[string]struct{} { return r.blocklist })
}

// RemoveFromBlocklist removes codes from the blocklist. Unknown codes are ignored.
func (r *Registry) RemoveFromBlocklist(codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range codes {
		delete(r.blocklist, code)
	}
}

// AddToWhitelist adds validated codes to the whitelist and enables whitelist mode.
func (r *Registry) AddToWhitelist(codes ...string) error {
	if err := r.add(codes, func() map[string]struct{} { return r.whitelist }); err != nil {
		return err
	}
	r.mu.Lock()
	r.whitelistEnabled = len(r.whitelist) > 0
	r.mu.Unlock()
	return nil
}

// RemoveFromWhitelist removes codes from the whitelist, disabling whitelist
// mode when the list empties.
func (r *Registry) RemoveFromWhitelist(codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range codes {
		delete(r.whitelist, code)
	}
	r.whitelistEnabled = len(r.whitelist) > 0
}

// Blocklist returns a snapshot of the current blocklist.
func (r *Registry) Blocklist() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.blocklist))
	for code := range r.blocklist {
		out = append(out, code)
	}
	return out
}

func (r *Registry) add(codes []string, target func() map[string]struct{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := target()
	for _, code := range codes {
		if err := Validate(code); err != nil {
			return err
		}
		if len(list) >= MaxCodes {
			return fmt.Errorf("mcc list full (max %d codes)", MaxCodes)
		}
		list[code] = struct{}{}
	}
	return nil
}

// Validate checks that a code is a 4-digit MCC in the 0001-9999 range.
func Validate(code string) error {
	if len(code) != 4 {
		return fmt.Errorf("invalid mcc code %q: must be 4 digits", code)
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 1 || n > 9999 {
		return fmt.Errorf("invalid mcc code %q: out of range", code)
	}
	return nil
}
