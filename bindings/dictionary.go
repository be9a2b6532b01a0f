package bindings

import (
	"fastedge.dev/builtin"
	"fastedge.dev/hostapi"
)

// dictionaryHandleSlot holds the host dictionary handle of a Dictionary instance.
const dictionaryHandleSlot = 0

// Dictionary exposes one read-only host dictionary per instance:
//
//	const colors = new Dictionary("colors")
//	colors.get("sky") // "blue", or null when the key is absent
var Dictionary = &builtin.Descriptor{
	Name: "Dictionary",
	Constructor: &builtin.Constructor{
		Args: []builtin.Arg{{Name: "name", Kind: builtin.StringArg, Check: resourceName("")}},
		Fn:   newDictionary,
	},
	Methods: []builtin.Method{{
		Name: "get",
		Args: []builtin.Arg{{Name: "key", Kind: builtin.StringArg, Check: lookupKey}},
		Fn:   dictionaryGet,
	}},
	Slots: 1,
	Supports: func(host any) bool {
		_, ok := host.(hostapi.DictionaryAPI)
		return ok
	},
}

func newDictionary(c *builtin.Call, self *builtin.Slots) error {
	host := c.Host().(hostapi.DictionaryAPI)

	h, err := host.OpenDictionary(c.String(0))
	if err != nil {
		return err
	}
	return self.Set(dictionaryHandleSlot, h)
}

func dictionaryGet(c *builtin.Call, self *builtin.Slots) (any, error) {
	host := c.Host().(hostapi.DictionaryAPI)
	h := self.Get(dictionaryHandleSlot).(hostapi.Handle)

	return host.LookupDictionary(h, c.String(0))
}
