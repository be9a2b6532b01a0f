package bindings

import (
	"fastedge.dev/builtin"
	"fastedge.dev/hostapi"
)

const (
	loggerHandleSlot = iota
	loggerNameSlot
)

// Logger writes lines to a named host log endpoint.
var Logger = &builtin.Descriptor{
	Name: "Logger",
	Constructor: &builtin.Constructor{
		Args: []builtin.Arg{{Name: "name", Kind: builtin.StringArg, Check: resourceName("-.")}},
		Fn: func(c *builtin.Call, self *builtin.Slots) error {
			name := c.String(0)
			h, err := c.Host().(hostapi.LogAPI).OpenLogEndpoint(name)
			if err != nil {
				return err
			}
			if err := self.Set(loggerHandleSlot, h); err != nil {
				return err
			}
			return self.Set(loggerNameSlot, name)
		},
	},
	Methods: []builtin.Method{{
		Name: "log",
		Args: []builtin.Arg{{Name: "message", Kind: builtin.AnyArg}},
		Fn: func(c *builtin.Call, self *builtin.Slots) (any, error) {
			return nil, c.Host().(hostapi.LogAPI).WriteLog(self.Get(loggerHandleSlot).(hostapi.Handle), []byte(c.String(0)))
		},
	}},
	Properties: []builtin.Property{{
		Name: "endpoint",
		Get: func(c *builtin.Call, self *builtin.Slots) (any, error) {
			return self.Get(loggerNameSlot), nil
		},
	}},
	Slots: 2,
	Supports: func(host any) bool {
		_, ok := host.(hostapi.LogAPI)
		return ok
	},
}
