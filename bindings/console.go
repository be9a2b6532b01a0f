package bindings

import (
	"fastedge.dev/builtin"
	"fastedge.dev/hostapi"
)

func consoleMethod(level string) builtin.Method {
	return builtin.Method{
		Name:     level,
		Variadic: true,
		Fn: func(c *builtin.Call, _ *builtin.Slots) (any, error) {
			c.Host().(hostapi.ConsoleAPI).Console(level, c.Join(" "))
			return nil, nil
		},
	}
}

// Console is the guest's `console` object.
var Console = &builtin.Descriptor{
	Name:      "console",
	Namespace: true,
	Methods: []builtin.Method{
		consoleMethod("log"),
		consoleMethod("info"),
		consoleMethod("warn"),
		consoleMethod("error"),
		consoleMethod("debug"),
	},
	Supports: func(host any) bool {
		_, ok := host.(hostapi.ConsoleAPI)
		return ok
	},
}
