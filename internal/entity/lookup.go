package entity

import (
	"slices"
	"strings"
)

// CategoryMap resolves a cost code to a category.
type CategoryMap map[string]string

// Lookup returns the category mapped to code, ignoring surrounding space and case.
func (m CategoryMap) Lookup(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" || len(m) == 0 {
		return "", false
	}
	if v, ok := m[code]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	for k, v := range m {
		if strings.EqualFold(strings.TrimSpace(k), code) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

type vendorKey struct {
	project  string
	costCode string
}

// VendorMap resolves (project, cost code) to the vendors contracted for it.
type VendorMap struct {
	index map[vendorKey][]string
}

// NewVendorMap indexes entries; entries without a vendor name are ignored.
func NewVendorMap(entries []VendorMapEntry) *VendorMap {
	vm := &VendorMap{index: make(map[vendorKey][]string, len(entries))}
	for _, e := range entries {
		name := strings.TrimSpace(e.VendorName)
		if name == "" {
			continue
		}
		k := vendorKey{project: strings.TrimSpace(e.ProjectID), costCode: strings.ToLower(strings.TrimSpace(e.CostCode))}
		if !slices.Contains(vm.index[k], name) {
			vm.index[k] = append(vm.index[k], name)
		}
	}
	return vm
}

// Lookup returns the vendors for a project cost code. A nil map has no vendors.
func (vm *VendorMap) Lookup(projectID, costCode string) []string {
	if vm == nil || len(vm.index) == 0 {
		return nil
	}
	k := vendorKey{project: strings.TrimSpace(projectID), costCode: strings.ToLower(strings.TrimSpace(costCode))}
	return slices.Clone(vm.index[k])
}

// Len reports the number of indexed keys.
func (vm *VendorMap) Len() int {
	if vm == nil {
		return 0
	}
	return len(vm.index)
}
