package bindings

import (
	"fastedge.dev/builtin"
	"fastedge.dev/hostapi"
)

// ConfigStore has the same contract as Dictionary, served by the host's config stores.
var ConfigStore = &builtin.Descriptor{
	Name: "ConfigStore",
	Constructor: &builtin.Constructor{
		Args: []builtin.Arg{{Name: "name", Kind: builtin.StringArg, Check: resourceName("")}},
		Fn: func(c *builtin.Call, self *builtin.Slots) error {
			h, err := c.Host().(hostapi.ConfigStoreAPI).OpenConfigStore(c.String(0))
			if err != nil {
				return err
			}
			return self.Set(0, h)
		},
	},
	Methods: []builtin.Method{{
		Name: "get",
		Args: []builtin.Arg{{Name: "key", Kind: builtin.StringArg, Check: lookupKey}},
		Fn: func(c *builtin.Call, self *builtin.Slots) (any, error) {
			return c.Host().(hostapi.ConfigStoreAPI).LookupConfigStore(self.Get(0).(hostapi.Handle), c.String(0))
		},
	}},
	Slots: 1,
	Supports: func(host any) bool {
		_, ok := host.(hostapi.ConfigStoreAPI)
		return ok
	},
}
