package variance

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/variance-drafts/constants"
	"github.com/joseph-ayodele/variance-drafts/internal/calendar"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
)

// AttachDrivers returns copies of items with change-order drivers, evidence
// links and vendors attached. A change order explains an item when the
// project matches, its date falls inside the item's month, and its category
// (own, else via its linked cost code) equals the item's.
func AttachDrivers(items []entity.VarianceItem, orders []entity.ChangeOrderRow, vendors *entity.VendorMap, categories entity.CategoryMap) []entity.VarianceItem {
	out := make([]entity.VarianceItem, len(items))
	for i, item := range items {
		item.Drivers = []string{}
		item.EvidenceLinks = []string{}
		vendorSet := map[string]struct{}{}

		start, end, ok := calendar.MonthRange(item.Period)
		if ok {
			for _, co := range orders {
				if !sameProject(co.ProjectID, item.ProjectID) {
					continue
				}
				if co.Date == nil {
					continue
				}
				d, ok := calendar.ParseDate(*co.Date)
				if !ok || d.Before(start) || !d.Before(end) {
					continue
				}
				if !constants.SameCategory(changeOrderCategory(co, categories), item.Category) {
					continue
				}
				if s := driverText(co); !slices.Contains(item.Drivers, s) {
					item.Drivers = append(item.Drivers, s)
				}
				if link := deref(co.FileLink); link != "" && !slices.Contains(item.EvidenceLinks, link) {
					item.EvidenceLinks = append(item.EvidenceLinks, link)
				}
				if code := deref(co.LinkedCostCode); code != "" {
					for _, v := range vendors.Lookup(item.ProjectID, code) {
						vendorSet[v] = struct{}{}
					}
				}
				if v := deref(co.VendorName); v != "" {
					vendorSet[v] = struct{}{}
				}
			}
		}

		item.Vendors = make([]string, 0, len(vendorSet))
		for v := range vendorSet {
			item.Vendors = append(item.Vendors, v)
		}
		slices.Sort(item.Vendors)
		out[i] = item
	}
	return out
}

func changeOrderCategory(co entity.ChangeOrderRow, categories entity.CategoryMap) string {
	if c := constants.NormalizeCategory(deref(co.Category)); c != "" {
		return c
	}
	if c, ok := categories.Lookup(deref(co.LinkedCostCode)); ok {
		return c
	}
	return ""
}

func driverText(co entity.ChangeOrderRow) string {
	id := deref(co.CoID)
	desc := deref(co.Description)
	switch {
	case id == "" && desc == "":
		return "Change Order"
	case id == "":
		return desc
	case desc == "":
		return id + ": Change Order " + id
	default:
		return id + ": " + desc
	}
}

// sameProject treats a change order without a project as belonging only to
// items without one.
func sameProject(co *string, project string) bool {
	return strings.TrimSpace(deref(co)) == strings.TrimSpace(project)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
