package bindings

import (
	"fastedge.dev/builtin"
	"fastedge.dev/hostapi"
)

func secretHost(host any) bool {
	_, ok := host.(hostapi.SecretStoreAPI)
	return ok
}

// SecretStore opens a host secret store. get returns a SecretStoreEntry, or null when the store
// has no such secret.
var SecretStore = &builtin.Descriptor{
	Name: "SecretStore",
	Constructor: &builtin.Constructor{
		Args: []builtin.Arg{{Name: "name", Kind: builtin.StringArg, Check: resourceName("-.")}},
		Fn: func(c *builtin.Call, self *builtin.Slots) error {
			h, err := c.Host().(hostapi.SecretStoreAPI).OpenSecretStore(c.String(0))
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
			secret, err := c.Host().(hostapi.SecretStoreAPI).LookupSecret(self.Get(0).(hostapi.Handle), c.String(0))
			if err != nil {
				return nil, err
			}
			h, ok := secret.Get()
			if !ok {
				return builtin.Absent, nil
			}
			return c.Construct(SecretStoreEntry.Name, h)
		},
	}},
	Slots:    1,
	Supports: secretHost,
}

// SecretStoreEntry is a secret found in a SecretStore. Guest code can't construct one.
var SecretStoreEntry = &builtin.Descriptor{
	Name: "SecretStoreEntry",
	Methods: []builtin.Method{{
		Name: "plaintext",
		Fn: func(c *builtin.Call, self *builtin.Slots) (any, error) {
			return c.Host().(hostapi.SecretStoreAPI).SecretPlaintext(self.Get(0).(hostapi.Handle))
		},
	}},
	Slots:    1,
	Supports: secretHost,
}
