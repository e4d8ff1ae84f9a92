package flash

import (
	"github.com/spiflash/flashcore/flasherr"
	"github.com/spiflash/flashcore/layout"
)

// checkRegionMask enforces §4.5's region-masking policy for a write to
// [addr, addr+length) when the context has a Layout attached: any region
// overlapping the range that is readonly fails unconditionally, and any
// region overlapping the range that is dangerous fails unless the context
// opted in via AllowDangerous. A nil Layout imposes no restriction.
func (c *Context) checkRegionMask(addr, length uint32) error {
	if c.Layout == nil {
		return nil
	}
	for _, r := range c.Layout.Regions {
		if !r.Overlaps(addr, length) {
			continue
		}
		if r.Readonly {
			return &flasherr.RegionReadonly{Name: r.Name}
		}
		if r.Dangerous && !c.AllowDangerous {
			return &flasherr.RegionDangerous{Name: r.Name}
		}
	}
	return nil
}

// ResolveRegion looks up a region by name in the attached layout, failing
// with RegionUnknown if absent or no layout is attached.
func (c *Context) ResolveRegion(name string) (layout.Region, error) {
	if c.Layout == nil {
		return layout.Region{}, &flasherr.RegionUnknown{Name: name}
	}
	r, ok := c.Layout.Find(name)
	if !ok {
		return layout.Region{}, &flasherr.RegionUnknown{Name: name}
	}
	return r, nil
}
